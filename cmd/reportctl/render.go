package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/i18n"
	"github.com/diewo77/erp-reports/internal/catalog"
	"github.com/diewo77/erp-reports/internal/export"
	"github.com/diewo77/erp-reports/internal/services"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleSubtitle = lipgloss.NewStyle().Faint(true)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
	styleHeader   = styleCell.Bold(true)
	styleSumRow   = styleCell.Bold(true).Foreground(lipgloss.AdaptiveColor{Dark: "195", Light: "20"})
	styleNote     = lipgloss.NewStyle().Italic(true)
	styleMessage  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
)

func writeCatalog(w io.Writer, reports []catalog.Report, lang string) error {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		params := make([]string, 0, len(r.Params))
		for _, p := range r.Params {
			s := p.Name
			if p.Required {
				s += "*"
			}
			params = append(params, s)
		}
		rows = append(rows, []string{r.Name, i18n.T(lang, "report."+r.Name), string(r.Kind), string(r.DefaultRange), strings.Join(params, " ")})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TITLE", "KIND", "DEFAULT RANGE", "FILTERS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// writeResult prints a loaded report as a terminal table, JSON or CSV. A
// failed or empty load prints the same message the portal shows.
func writeResult(w io.Writer, formatName string, res services.Result, f *format.Formatter, lang string) error {
	switch formatName {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		out := map[string]any{"report": res.Report.Name, "status": res.Status, "empty": res.Empty}
		if res.Message != "" {
			out["message"] = res.Message
		}
		if len(res.Violations) > 0 {
			out["violations"] = res.Violations
		}
		if res.View != nil {
			out["data"] = res.View
		}
		return enc.Encode(out)
	case "csv":
		if res.View == nil {
			return nil
		}
		return export.WriteCSV(w, res.View.Table(f, lang))
	case "table", "":
	default:
		return fmt.Errorf("unknown format %q", formatName)
	}

	for field, code := range res.Violations {
		fmt.Fprintf(w, "%s: %s\n", field, i18n.T(lang, code))
	}
	if res.Message != "" {
		fmt.Fprintln(w, styleMessage.Render(i18n.T(lang, messageCode(res))))
	}
	if res.View == nil || res.Empty {
		return nil
	}
	_, err := fmt.Fprintln(w, renderTable(res.View.Table(f, lang)))
	return err
}

func messageCode(res services.Result) string {
	if res.OK() {
		return "no_data"
	}
	return "failed_to_load"
}

func renderTable(t export.Table) string {
	footer := len(t.Footer) > 0
	rows := t.Rows
	if footer {
		rows = append(rows[:len(rows):len(rows)], t.Footer)
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := styleCell
			switch {
			case row == table.HeaderRow:
				s = styleHeader
			case footer && row == len(rows)-1:
				s = styleSumRow
			}
			if t.AlignAt(col) == export.Right {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	b.WriteString(styleTitle.Render(t.Title))
	b.WriteString("\n")
	if t.Subtitle != "" {
		b.WriteString(styleSubtitle.Render(t.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString(tbl.Render())
	for _, n := range t.Notes {
		b.WriteString("\n")
		b.WriteString(styleNote.Render(n))
	}
	return b.String()
}
