package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/recordhub/records-system/internal/core/ports"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 7.0
)

// PDFRenderer lays the table out on landscape A4 pages, repeating the
// column header on every page.
type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

func (r PDFRenderer) Render(w io.Writer, t *ports.Table) error {
	pdf := r.build(t)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (PDFRenderer) build(t *ports.Table) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	widths := scaleWidths(t.Columns, pageW-2*pdfMargin)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(224, 224, 224)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(c.Header), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(t.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+t.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-2*pdfMargin {
			pdf.AddPage()
			header()
		}
		for i := range t.Columns {
			var v string
			if i < len(row) {
				v = fit(pdf, tr(row[i]), widths[i]-2)
			}
			pdf.CellFormat(widths[i], pdfRowHeight, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}

// scaleWidths stretches or shrinks the column widths to fill total.
func scaleWidths(cols []ports.Column, total float64) []float64 {
	sum := 0.0
	for _, c := range cols {
		sum += c.Width
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		if sum == 0 {
			out[i] = total / float64(len(cols))
			continue
		}
		out[i] = c.Width / sum * total
	}
	return out
}

// fit truncates s with an ellipsis so it renders within width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
