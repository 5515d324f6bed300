package models

import "slices"

// Mode is the role a range plays in the chart.
type Mode string

const (
	// ModeCategory tags the range holding the active dimension column.
	ModeCategory Mode = "category"
	// ModeValue tags ranges holding value series columns.
	ModeValue Mode = "value"
)

// RowPosition identifies a grid row. Pinned rows are resolved by the grid.
type RowPosition struct {
	// Index is the 0-based row index within the row model (or pinned block).
	Index int `json:"index"`
	// Pinned is "top" or "bottom" for pinned rows, empty otherwise.
	Pinned string `json:"pinned,omitempty"`
}

// CellRange is a rectangular selection of rows by an ordered list of columns.
type CellRange struct {
	// ID identifies the range within its range set.
	ID string `json:"id"`
	// StartRow is the first row of the selection.
	StartRow RowPosition `json:"start_row"`
	// EndRow is the last row of the selection (inclusive).
	EndRow RowPosition `json:"end_row"`
	// Columns holds column ids in display order.
	Columns []string `json:"columns"`
	// StartColumn is the column the selection was started from.
	StartColumn string `json:"start_column"`
	// Mode is the chart role of the range.
	Mode Mode `json:"chart_mode"`
}

// Contains reports whether the range includes the given column id.
func (r CellRange) Contains(colID string) bool {
	return slices.Contains(r.Columns, colID)
}

// First returns the first column id of the range.
func (r CellRange) First() string {
	if len(r.Columns) == 0 {
		return ""
	}
	return r.Columns[0]
}

// Last returns the last column id of the range.
func (r CellRange) Last() string {
	if len(r.Columns) == 0 {
		return ""
	}
	return r.Columns[len(r.Columns)-1]
}

// Clone returns a copy that shares no column storage with r.
func (r CellRange) Clone() CellRange {
	r.Columns = slices.Clone(r.Columns)
	return r
}

// withColumns returns a copy of r spanning cols, keeping the row bounds and mode.
func (r CellRange) withColumns(id string, cols []string) CellRange {
	out := CellRange{
		ID:          id,
		StartRow:    r.StartRow,
		EndRow:      r.EndRow,
		Columns:     slices.Clone(cols),
		StartColumn: r.StartColumn,
		Mode:        r.Mode,
	}
	if !slices.Contains(out.Columns, out.StartColumn) {
		out.StartColumn = out.First()
	}
	return out
}

// Equal reports whether two ranges describe the same selection, ignoring ids.
func (r CellRange) Equal(o CellRange) bool {
	return r.StartRow == o.StartRow &&
		r.EndRow == o.EndRow &&
		r.StartColumn == o.StartColumn &&
		r.Mode == o.Mode &&
		slices.Equal(r.Columns, o.Columns)
}
