// Package export writes report tables as CSV and PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Align is a column alignment.
type Align string

const (
	Left  Align = "L"
	Right Align = "R"
)

// Table is a formatted, display-ready report table.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Align    []Align
	Rows     [][]string
	Footer   []string
	Notes    []string
}

// Width returns the number of columns.
func (t Table) Width() int {
	n := len(t.Headers)
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// AlignAt returns the alignment of column col, Left by default.
func (t Table) AlignAt(col int) Align {
	if col < len(t.Align) && t.Align[col] != "" {
		return t.Align[col]
	}
	return Left
}

// WriteCSV writes headers, rows and footer. Title and notes are left out so the
// file loads cleanly into a spreadsheet.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := cw.Write(t.Headers); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}
	for _, r := range t.Rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	if len(t.Footer) > 0 {
		if err := cw.Write(t.Footer); err != nil {
			return fmt.Errorf("csv footer: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders the table on A4 pages, landscape when it has more than
// five columns. Core fonts only cover cp1252, so callers should pass text
// in a Latin script.
func WritePDF(w io.Writer, t Table, generated time.Time) error {
	orientation := "P"
	if t.Width() > 5 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(t.Title, true)
	pdf.SetCreator("erp-reports", true)
	pdf.AliasNbPages("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  -  %s  -  %d/{nb}", t.Title, generated.Format("2006-01-02 15:04"), pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(t.Title), "", 1, "L", false, 0, "")
	if t.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(t.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	cols := t.Width()
	if cols == 0 {
		return pdf.Output(w)
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(pdf, t, tr, pageW-left-right)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(0, 0, 0)
		for i := 0; i < cols; i++ {
			pdf.CellFormat(widths[i], 7, tr(cell(t.Headers, i)), "1", 0, string(t.AlignAt(i)), true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()
	pdf.SetFont("Arial", "", 9)
	_, pageH := pdf.GetPageSize()
	for _, r := range t.Rows {
		if pdf.GetY()+6 > pageH-20 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 9)
		}
		for i := 0; i < cols; i++ {
			pdf.CellFormat(widths[i], 6, tr(cell(r, i)), "1", 0, string(t.AlignAt(i)), false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Footer) > 0 {
		pdf.SetFont("Arial", "B", 9)
		for i := 0; i < cols; i++ {
			pdf.CellFormat(widths[i], 7, tr(cell(t.Footer, i)), "1", 0, string(t.AlignAt(i)), true, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.Notes) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 9)
		for _, n := range t.Notes {
			pdf.MultiCell(0, 5, tr(n), "", "L", false)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// columnWidths sizes columns by their widest content and scales them to fit.
func columnWidths(pdf *gofpdf.Fpdf, t Table, tr func(string) string, avail float64) []float64 {
	cols := t.Width()
	widths := make([]float64, cols)
	measure := func(row []string, style string) {
		pdf.SetFont("Arial", style, 9)
		for i := 0; i < cols; i++ {
			if w := pdf.GetStringWidth(tr(cell(row, i))) + 4; w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Headers, "B")
	for _, r := range t.Rows {
		measure(r, "")
	}
	measure(t.Footer, "B")
	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total == 0 {
		return widths
	}
	scale := avail / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// Filename builds a download name such as "trial-balance_2024-01-01_2024-01-31.csv".
func Filename(report string, parts []string, ext string) string {
	name := report
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			name += "_" + p
		}
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
