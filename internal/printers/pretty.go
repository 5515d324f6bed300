// Package printers renders chart model state for terminals.
package printers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	dto "github.com/prometheus/client_model/go"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/parser"
)

// PrettyPrint writes tables of chart state to Out.
type PrettyPrint struct {
	Out io.Writer
	// MaxRows caps the number of data rows printed; 0 prints all.
	MaxRows int
}

// New returns a PrettyPrint writing to color.Output.
func New() *PrettyPrint {
	return &PrettyPrint{Out: color.Output}
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Chart prints the column menu, ranges and data of a snapshot.
func (pp *PrettyPrint) Chart(s *rangechart.Snapshot) {
	faint := color.New(color.Faint)
	pp.Title(fmt.Sprintf("Chart %s", s.ChartID))
	_, _ = faint.Fprintf(pp.out(), "%s %dx%d, category %s\n\n", s.ChartType, s.Width, s.Height, s.Category)

	pp.Title("Dimensions")
	pp.ColStates(s.Dimensions)
	pp.Title("Values")
	pp.ColStates(s.Values)
	pp.Title("Ranges")
	pp.Ranges(s.Ranges)
	pp.Title("Data")
	pp.Data(s.Data, s.Fields)
}

// ColStates prints one row per column with a check mark for selected ones.
func (pp *PrettyPrint) ColStates(states []models.ColState) {
	if len(states) == 0 {
		pp.none()
		return
	}
	check := color.New(color.FgGreen, color.Bold)
	id := color.New(color.FgHiYellow, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, cs := range states {
		mark := " "
		if cs.Selected {
			mark = check.Sprint("✓")
		}
		tbl.AddRow(mark, id.Sprint(cs.ColID), cs.DisplayName)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}

// Columns prints the chart roles of table columns.
func (pp *PrettyPrint) Columns(cols []models.Column) {
	if len(cols) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	id := color.New(color.FgHiYellow, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Role"), bold.Sprint("Agg"), "")
	for _, c := range cols {
		role := "-"
		switch {
		case c.IsDimension():
			role = "dimension"
		case c.IsValue():
			role = "value"
		}
		hidden := ""
		if c.Hidden {
			hidden = faint.Sprint("hidden")
		}
		tbl.AddRow(id.Sprint(c.ID), c.Label(), role, string(c.AggFunc), hidden)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}

// Names prints defined names and the areas they refer to, sorted by name.
func (pp *PrettyPrint) Names(names map[string][]parser.Reference) {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, k := range keys {
		for _, ref := range names[k] {
			tbl.AddRow(k, ref.Sheet, ref.Area.String())
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}

// Ranges prints the ranges in set order.
func (pp *PrettyPrint) Ranges(ranges []models.CellRange) {
	if len(ranges) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Mode"), bold.Sprint("Rows"), bold.Sprint("Columns"))
	for _, r := range ranges {
		tbl.AddRow(y.Sprint(r.ID), string(r.Mode), rowSpan(r), strings.Join(r.Columns, ", "))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}

func rowSpan(r models.CellRange) string {
	pos := func(p models.RowPosition) string {
		if p.Pinned != "" {
			return p.Pinned
		}
		return fmt.Sprint(p.Index)
	}
	return pos(r.StartRow) + "-" + pos(r.EndRow)
}

// Data prints chart rows with the category first, then one column per field.
func (pp *PrettyPrint) Data(data *models.ChartData, fields []models.Field) {
	if data.Len() == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)

	header := []any{bold.Sprint(data.CategoryKey)}
	for _, f := range fields {
		header = append(header, bold.Sprint(f.DisplayName))
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(header...)

	rows := data.Rows
	if pp.MaxRows > 0 && len(rows) > pp.MaxRows {
		rows = rows[:pp.MaxRows]
	}
	for _, row := range rows {
		cells := []any{row[data.CategoryKey]}
		for _, f := range fields {
			cells = append(cells, formatValue(row[f.ColID]))
		}
		tbl.AddRow(cells...)
	}
	for i := 1; i <= len(fields); i++ {
		tbl.RightAlign(i)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	if len(rows) < len(data.Rows) {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintf(pp.out(), " ... %d more rows\n", len(data.Rows)-len(rows))
	}
	_, _ = fmt.Fprintln(pp.out())
}

func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "-"
	case float64:
		return fmt.Sprintf("%g", n)
	default:
		return fmt.Sprint(n)
	}
}

// Metrics prints counter and gauge samples, sorted by name.
func (pp *PrettyPrint) Metrics(families []*dto.MetricFamily) {
	if len(families) == 0 {
		pp.none()
		return
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			tbl.AddRow(mf.GetName(), strings.Join(labels, ","), fmt.Sprintf("%g", v))
		}
	}
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}
