// Package printing contains the document printing bounded context.
// It defines the document types, paper sizes, and page layout value
// objects used when rendering BOMs, work order travelers, and trace
// certificates to PDF.
package printing
