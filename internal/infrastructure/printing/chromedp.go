package printing

import (
	"bytes"
	"cmp"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/fabmate/backend/internal/domain/printing"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0

	// Header and footer bands need room; Chrome silently clips them when
	// the margin is smaller than the band.
	minHeaderFooterMarginMM = 10
)

// ChromedpConfig configures the headless-Chrome PDF renderer behind
// traveller and route card printing.
type ChromedpConfig struct {
	// DefaultTimeout bounds a single render when the request carries none.
	DefaultTimeout time.Duration

	// RemoteURL points at an already-running Chrome instance. When empty a
	// local browser is launched per allocator.
	RemoteURL string

	// Headless and DisableGPU are forced on regardless of what the caller
	// sets; server containers have no display and no GPU to speak of.
	Headless   bool
	DisableGPU bool

	// NoSandbox is required when the process runs as root, as in most
	// container images.
	NoSandbox bool

	Scale float64

	// PrintBackground keeps table shading and drawing-sheet borders in the
	// output.
	PrintBackground bool

	Logger *zap.Logger
}

// ChromedpRenderer renders HTML documents to PDF over the Chrome DevTools
// protocol.
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer builds a renderer and its browser allocator.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	config.DefaultTimeout = cmp.Or(config.DefaultTimeout, defaultChromeTimeout)
	config.Scale = cmp.Or(config.Scale, defaultScale)
	config.Headless = true
	config.DisableGPU = true

	r := &ChromedpRenderer{
		config: config,
		logger: cmp.Or(config.Logger, zap.NewNop()),
	}
	r.initAllocator()
	return r, nil
}

func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	for _, flag := range []string{
		"no-first-run",
		"disable-default-apps",
		"disable-extensions",
		"disable-dev-shm-usage", // /dev/shm is tiny in containers
		"disable-background-networking",
		"disable-sync",
		"disable-translate",
	} {
		opts = append(opts, chromedp.Flag(flag, true))
	}
	opts = append(opts,
		chromedp.Flag("headless", r.config.Headless),
		chromedp.Flag("disable-gpu", r.config.DisableGPU),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

func checkRenderRequest(req *RenderRequest) error {
	switch {
	case req == nil:
		return NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	case strings.TrimSpace(req.HTML) == "":
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	case !req.PaperSize.IsValid():
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}
	return nil
}

// Render turns the request's HTML into a PDF document.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := checkRenderRequest(req); err != nil {
		return nil, err
	}

	started := time.Now()
	timeout := cmp.Or(req.Timeout, r.config.DefaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pdfData, err := r.printDocument(ctx, r.buildCompleteHTML(req), r.buildPrintParams(req))
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, NewRenderError(ErrCodeRenderTimeout,
			fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	case err != nil:
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed: "+err.Error(), err)
	case len(pdfData) == 0:
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdfData,
		PageCount:      estimatePageCount(pdfData),
		RenderDuration: time.Since(started),
	}
	r.logger.Info("PDF rendered successfully",
		zap.Int("bytes", len(result.PDFData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// printDocument drives a fresh browser tab through load-and-print. The
// document is injected via Page.setDocumentContent so nothing has to be
// served over a URL.
func (r *ChromedpRenderer) printDocument(ctx context.Context, html string, pp *printParams) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer cancel()

	// Tear the tab down when the request deadline passes; chromedp only
	// watches its own context chain.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	params := &page.PrintToPDFParams{
		PrintBackground:     pp.printBackground,
		PaperWidth:          pp.paperWidth,
		PaperHeight:         pp.paperHeight,
		MarginTop:           pp.marginTop,
		MarginRight:         pp.marginRight,
		MarginBottom:        pp.marginBottom,
		MarginLeft:          pp.marginLeft,
		Scale:               pp.scale,
		Landscape:           pp.landscape,
		DisplayHeaderFooter: pp.displayHeaderFooter,
		HeaderTemplate:      pp.headerTemplate,
		FooterTemplate:      pp.footerTemplate,
	}

	var pdfData []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := params.Do(ctx)
			pdfData = data
			return err
		}),
	)
	return pdfData, err
}

// printParams is the resolved Page.printToPDF argument set. Chrome takes
// all lengths in inches.
type printParams struct {
	paperWidth          float64
	paperHeight         float64
	marginTop           float64
	marginRight         float64
	marginBottom        float64
	marginLeft          float64
	scale               float64
	landscape           bool
	printBackground     bool
	displayHeaderFooter bool
	headerTemplate      string
	footerTemplate      string
}

func (r *ChromedpRenderer) buildPrintParams(req *RenderRequest) *printParams {
	width, height := req.PaperSize.Dimensions()
	in := func(mm int) float64 { return mmToInches(float64(mm)) }

	pp := &printParams{
		paperWidth:          in(width),
		paperHeight:         in(height),
		marginTop:           in(req.Margins.Top),
		marginRight:         in(req.Margins.Right),
		marginBottom:        in(req.Margins.Bottom),
		marginLeft:          in(req.Margins.Left),
		scale:               r.config.Scale,
		landscape:           req.Orientation == printing.OrientationLandscape,
		printBackground:     true,
		displayHeaderFooter: req.HeaderHTML != "" || req.FooterHTML != "",
		headerTemplate:      req.HeaderHTML,
		footerTemplate:      req.FooterHTML,
	}
	if pp.headerTemplate != "" {
		pp.marginTop = max(pp.marginTop, in(minHeaderFooterMarginMM))
	}
	if pp.footerTemplate != "" {
		pp.marginBottom = max(pp.marginBottom, in(minHeaderFooterMarginMM))
	}
	return pp
}

// buildCompleteHTML wraps a bare fragment in a document shell. Templates
// that already carry a doctype or <html> element pass through untouched.
func (r *ChromedpRenderer) buildCompleteHTML(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	if req.Title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", req.Title)
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")
	return b.String()
}

// Close tears down the browser allocator.
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 { return mm / 25.4 }

func inchesToMM(inches float64) float64 { return inches * 25.4 }

// estimatePageCount counts "/Type /Page" objects in the raw PDF, net of
// the parent "/Type /Pages" node. Good enough for logging and the document
// record; a traveller is rarely more than a few pages.
func estimatePageCount(pdfData []byte) int {
	pages := bytes.Count(pdfData, []byte("/Type /Page")) -
		bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(pages, 1)
}

// dataURLToBytes decodes the payload of a base64 data URL, e.g.
// "data:application/pdf;base64,...".
func dataURLToBytes(dataURL string) ([]byte, error) {
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, fmt.Errorf("invalid data URL format")
	}
	return base64.StdEncoding.DecodeString(payload)
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
