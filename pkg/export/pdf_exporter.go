package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a timetable grid into a landscape PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and the weekly grid.
func (e *PDFExporter) Render(table TimetableTable, title string) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 277.0 / float64(len(table.Headers))
	for _, header := range table.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range table.Rows {
		height := 6.0 * float64(maxLines(row))
		x, y := pdf.GetXY()
		for _, cell := range row {
			pdf.Rect(x, y, colWidth, height, "D")
			pdf.SetXY(x, y)
			pdf.MultiCell(colWidth, 6, cell, "", "L", false)
			x += colWidth
			pdf.SetXY(x, y)
		}
		pdf.SetXY(10, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func maxLines(row []string) int {
	lines := 1
	for _, cell := range row {
		if n := strings.Count(cell, "\n") + 1; n > lines {
			lines = n
		}
	}
	return lines
}
