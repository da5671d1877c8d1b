package printing

import (
	"context"
	"time"

	"github.com/fabmate/backend/internal/domain/printing"
)

// RenderRequest describes one HTML-to-PDF conversion. Travellers and
// route cards build the HTML upstream; the renderer only lays it onto
// paper.
type RenderRequest struct {
	HTML        string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	// Margins are in millimeters.
	Margins printing.Margins
	// Title lands in the PDF document metadata.
	Title      string
	HeaderHTML string
	FooterHTML string
	// EnableLocalFileAccess lets the page load file:// images. Only
	// safe for HTML the server generated itself.
	EnableLocalFileAccess bool
	// Timeout overrides the renderer default when set.
	Timeout time.Duration
}

// RenderResult is the finished document plus render stats.
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts HTML to PDF. The chromedp implementation is the
// production one; tests substitute fakes.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError carries a stable code so handlers can map render
// failures onto API error responses.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}
