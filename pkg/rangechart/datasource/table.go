// Package datasource turns sheet tables into chart data.
package datasource

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// TableSource serves chart queries from an in-memory table.
type TableSource struct {
	mu    sync.RWMutex
	table *models.Table
}

// NewTableSource creates a datasource over t. The source takes ownership of t.
func NewTableSource(t *models.Table) *TableSource {
	return &TableSource{table: t}
}

// Fetch returns one row per data row in the query's row interval, or one row
// per distinct category value when the query aggregates.
func (s *TableSource) Fetch(ctx context.Context, q models.Query) (*models.ChartData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	categoryKey := models.RowNumberKey
	if id, ok := q.Category.ColumnID(); ok {
		categoryKey = id
	}
	data := &models.ChartData{CategoryKey: categoryKey, Fields: append([]string(nil), q.Fields...)}
	if len(q.Fields) == 0 || len(s.table.Rows) == 0 {
		return data, nil
	}

	start, end := q.StartRow, q.EndRow
	if start > end {
		start, end = end, start
	}
	start = max(start, 0)
	end = min(end, len(s.table.Rows)-1)

	var groups *grouper
	if q.Aggregate {
		groups = newGrouper(s.aggFuncs(q.Fields))
	}
	for i := start; i <= end; i++ {
		row := s.table.Rows[i]
		label := s.categoryLabel(q.Category, i, row)
		if groups != nil {
			groups.add(label, row, q.Fields)
			continue
		}
		out := map[string]any{categoryKey: label}
		for _, f := range q.Fields {
			out[f] = numeric(row.Value(f))
		}
		data.Rows = append(data.Rows, out)
	}
	if groups != nil {
		data.Rows = groups.rows(categoryKey, q.Fields)
	}
	return data, nil
}

// SetCell replaces the value of one cell. row is a 0-based data row index.
func (s *TableSource) SetCell(row int, colID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(s.table.Rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	if _, ok := s.table.Column(colID); !ok {
		return fmt.Errorf("unknown column %q", colID)
	}
	if s.table.Rows[row].C == nil {
		s.table.Rows[row].C = make(map[string]any)
	}
	s.table.Rows[row].C[colID] = value
	return nil
}

// RowIndex resolves a row position to a data row index. Pinned positions map
// to the first or last data row.
func (s *TableSource) RowIndex(pos models.RowPosition) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch pos.Pinned {
	case "top":
		return 0
	case "bottom":
		return len(s.table.Rows) - 1
	}
	return pos.Index
}

// RowCount returns the number of data rows.
func (s *TableSource) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table.Rows)
}

func (s *TableSource) categoryLabel(c models.Category, idx int, row models.CellRow) string {
	id, ok := c.ColumnID()
	if !ok {
		return strconv.Itoa(idx + 1)
	}
	v := row.Value(id)
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (s *TableSource) aggFuncs(fields []string) map[string]models.AggFunc {
	out := make(map[string]models.AggFunc, len(fields))
	for _, f := range fields {
		col, _ := s.table.Column(f)
		out[f] = col.AggFunc
	}
	return out
}

// numeric converts a cell value to float64, or nil when it is not a number.
func numeric(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return nil
}
