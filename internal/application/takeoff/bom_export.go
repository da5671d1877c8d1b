package takeoff

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"time"

	"github.com/fabmate/backend/internal/domain/printing"
	"github.com/fabmate/backend/internal/domain/shared"
	infra "github.com/fabmate/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// BOMExportFormat identifies a supported bill-of-materials export format
type BOMExportFormat string

const (
	BOMFormatCSV  BOMExportFormat = "csv"
	BOMFormatXLSX BOMExportFormat = "xlsx"
	BOMFormatPDF  BOMExportFormat = "pdf"
)

// ParseBOMExportFormat validates a format query parameter
func ParseBOMExportFormat(s string) (BOMExportFormat, error) {
	switch BOMExportFormat(s) {
	case BOMFormatCSV, BOMFormatXLSX, BOMFormatPDF:
		return BOMExportFormat(s), nil
	default:
		return "", shared.NewDomainError("INVALID_EXPORT_FORMAT", fmt.Sprintf("Unsupported export format: %s", s))
	}
}

// ContentType returns the MIME type for the format
func (f BOMExportFormat) ContentType() string {
	switch f {
	case BOMFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case BOMFormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension for the format, without the dot
func (f BOMExportFormat) Extension() string {
	return string(f)
}

var bomCSVHeader = []string{"Item Code", "Description", "Unit", "Quantity", "Weight (kg)", "Cost"}

// BOMExporter renders a generated bill of materials to downloadable files
type BOMExporter struct {
	renderer infra.PDFRenderer
	logger   *zap.Logger
}

// NewBOMExporter creates a new BOMExporter. The renderer may be nil, in which
// case PDF export reports an error and the tabular formats still work.
func NewBOMExporter(renderer infra.PDFRenderer, logger *zap.Logger) *BOMExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BOMExporter{
		renderer: renderer,
		logger:   logger,
	}
}

// Export renders the BOM in the requested format
func (e *BOMExporter) Export(ctx context.Context, bom *BOMResponse, format BOMExportFormat) ([]byte, error) {
	switch format {
	case BOMFormatCSV:
		return e.exportCSV(bom)
	case BOMFormatXLSX:
		return e.exportXLSX(bom)
	case BOMFormatPDF:
		return e.exportPDF(ctx, bom)
	default:
		return nil, shared.NewDomainError("INVALID_EXPORT_FORMAT", fmt.Sprintf("Unsupported export format: %s", format))
	}
}

func (e *BOMExporter) exportCSV(bom *BOMResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(bomCSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, line := range bom.Lines {
		record := []string{
			line.ItemCode,
			line.Description,
			line.Unit,
			line.Quantity.String(),
			line.WeightKg.String(),
			line.Cost.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv line: %w", err)
		}
	}
	totals := []string{"", "Total", "", "", bom.TotalWeightKg.String(), bom.TotalCost.String()}
	if err := w.Write(totals); err != nil {
		return nil, fmt.Errorf("write csv totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *BOMExporter) exportXLSX(bom *BOMResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close xlsx builder", zap.Error(err))
		}
	}()

	const sheet = "Bill of Materials"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range bomCSVHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header cell: %w", err)
		}
	}

	for i, line := range bom.Lines {
		row := i + 2
		values := []any{
			line.ItemCode,
			line.Description,
			line.Unit,
			line.Quantity.InexactFloat64(),
			line.WeightKg.InexactFloat64(),
			line.Cost.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	totalsRow := len(bom.Lines) + 2
	totals := map[int]any{
		2: "Total",
		5: bom.TotalWeightKg.InexactFloat64(),
		6: bom.TotalCost.InexactFloat64(),
	}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col, totalsRow)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, fmt.Errorf("write totals cell: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

var bomPDFTemplate = template.Must(template.New("bom").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: sans-serif; font-size: 12px; }
  h1 { font-size: 16px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
  th { background: #eee; }
  td.num, th.num { text-align: right; }
  tr.total td { font-weight: bold; }
</style>
</head>
<body>
<h1>Bill of Materials</h1>
<p>Drawing {{.DrawingID}} &mdash; generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>
<table>
<thead>
<tr><th>Item Code</th><th>Description</th><th>Unit</th><th class="num">Quantity</th><th class="num">Weight (kg)</th><th class="num">Cost</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.ItemCode}}</td><td>{{.Description}}</td><td>{{.Unit}}</td><td class="num">{{.Quantity}}</td><td class="num">{{.WeightKg}}</td><td class="num">{{.Cost}}</td></tr>
{{end}}<tr class="total"><td></td><td>Total</td><td></td><td></td><td class="num">{{.TotalWeightKg}}</td><td class="num">{{.TotalCost}}</td></tr>
</tbody>
</table>
</body>
</html>`))

// bomPrinter localizes the numbers on the printed document. The tabular
// exports keep raw values so spreadsheets can keep calculating with them.
var bomPrinter = message.NewPrinter(language.BritishEnglish)

func formatBOMNumber(d decimal.Decimal, scale int) string {
	return bomPrinter.Sprint(number.Decimal(d.InexactFloat64(),
		number.MinFractionDigits(scale), number.MaxFractionDigits(scale)))
}

type bomPDFLine struct {
	ItemCode    string
	Description string
	Unit        string
	Quantity    string
	WeightKg    string
	Cost        string
}

type bomPDFView struct {
	DrawingID     uuid.UUID
	GeneratedAt   time.Time
	Lines         []bomPDFLine
	TotalWeightKg string
	TotalCost     string
}

func newBOMPDFView(bom *BOMResponse) bomPDFView {
	view := bomPDFView{
		DrawingID:     bom.DrawingID,
		GeneratedAt:   bom.GeneratedAt,
		Lines:         make([]bomPDFLine, len(bom.Lines)),
		TotalWeightKg: formatBOMNumber(bom.TotalWeightKg, 2),
		TotalCost:     formatBOMNumber(bom.TotalCost, 2),
	}
	for i, line := range bom.Lines {
		view.Lines[i] = bomPDFLine{
			ItemCode:    line.ItemCode,
			Description: line.Description,
			Unit:        line.Unit,
			Quantity:    formatBOMNumber(line.Quantity, 2),
			WeightKg:    formatBOMNumber(line.WeightKg, 2),
			Cost:        formatBOMNumber(line.Cost, 2),
		}
	}
	return view
}

func (e *BOMExporter) exportPDF(ctx context.Context, bom *BOMResponse) ([]byte, error) {
	if e.renderer == nil {
		return nil, shared.NewDomainError("PDF_RENDERER_UNAVAILABLE", "PDF export is not configured")
	}

	var html bytes.Buffer
	if err := bomPDFTemplate.Execute(&html, newBOMPDFView(bom)); err != nil {
		return nil, fmt.Errorf("render bom template: %w", err)
	}

	result, err := e.renderer.Render(ctx, &infra.RenderRequest{
		HTML:        html.String(),
		PaperSize:   printing.PaperSizeA4,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       fmt.Sprintf("Bill of Materials %s", bom.DrawingID),
	})
	if err != nil {
		e.logger.Error("BOM PDF render failed",
			zap.String("drawing_id", bom.DrawingID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("render bom pdf: %w", err)
	}
	return result.PDFData, nil
}
