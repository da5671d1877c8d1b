// Package printing renders HTML shop documents to PDF with headless
// Chrome over the DevTools Protocol.
//
// PDFRenderer is the interface the application layer depends on;
// ChromedpRenderer is the production implementation. A typical render:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{
//	    DefaultTimeout: 30 * time.Second,
//	    Headless:       true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        "<html>...</html>",
//	    PaperSize:   printing.PaperSizeA4,
//	    Orientation: printing.OrientationPortrait,
//	})
//
// result.PDFData holds the finished document.
package printing
