package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 277.0
	pdfPageBottom = 190.0
	pdfRowHeight  = 7.0
)

// PDFExporter renders tables on landscape A4 pages, repeating the header row
// on every page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

func columnWidths(cols []Column) []float64 {
	total := 0.0
	for _, col := range cols {
		if col.Width > 0 {
			total += col.Width
		} else {
			total++
		}
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		w := col.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = pdfPageWidth * w / total
	}
	return widths
}

// Render creates the PDF document.
func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if err := table.check(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	widths := columnWidths(table.Columns)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight+1, col.Title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	if table.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 10, table.Title, "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	header()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for n, row := range table.Rows {
		if pdf.GetY()+pdfRowHeight > pdfPageBottom {
			pdf.AddPage()
			header()
		}
		pdf.SetFillColor(247, 247, 247)
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(cell), "1", 0, "", n%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
