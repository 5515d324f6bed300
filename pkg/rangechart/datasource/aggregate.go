package datasource

import (
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// accumulator folds the values of one field within one category.
type accumulator struct {
	fn    models.AggFunc
	sum   float64
	min   float64
	max   float64
	first any
	n     int
}

func (a *accumulator) add(v any) {
	f, ok := v.(float64)
	if !ok {
		return
	}
	if a.n == 0 {
		a.min, a.max, a.first = f, f, f
	}
	a.sum += f
	a.min = min(a.min, f)
	a.max = max(a.max, f)
	a.n++
}

func (a *accumulator) value() any {
	if a.fn == models.AggCount {
		return float64(a.n)
	}
	if a.n == 0 {
		return nil
	}
	switch a.fn {
	case models.AggAvg:
		return a.sum / float64(a.n)
	case models.AggMin:
		return a.min
	case models.AggMax:
		return a.max
	case models.AggFirst:
		return a.first
	default:
		return a.sum
	}
}

// grouper groups rows by category label, keeping first-seen order.
type grouper struct {
	funcs  map[string]models.AggFunc
	order  []string
	groups map[string]map[string]*accumulator
}

func newGrouper(funcs map[string]models.AggFunc) *grouper {
	return &grouper{funcs: funcs, groups: make(map[string]map[string]*accumulator)}
}

func (g *grouper) add(label string, row models.CellRow, fields []string) {
	accs, ok := g.groups[label]
	if !ok {
		accs = make(map[string]*accumulator, len(fields))
		for _, f := range fields {
			accs[f] = &accumulator{fn: g.funcs[f]}
		}
		g.groups[label] = accs
		g.order = append(g.order, label)
	}
	for _, f := range fields {
		accs[f].add(numeric(row.Value(f)))
	}
}

func (g *grouper) rows(categoryKey string, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(g.order))
	for _, label := range g.order {
		row := map[string]any{categoryKey: label}
		for _, f := range fields {
			row[f] = g.groups[label][f].value()
		}
		out = append(out, row)
	}
	return out
}
