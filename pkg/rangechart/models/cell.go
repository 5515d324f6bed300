// Package models defines the data structures shared by the chart range engine.
package models

// CellRow represents a single data row of a sheet table.
type CellRow struct {
	// R is the sheet row index (1-based).
	R int `json:"r"`
	// C maps column id to cell value.
	C map[string]any `json:"c"`
}

// Value returns the cell value for the given column id, or nil.
func (r CellRow) Value(colID string) any {
	if r.C == nil {
		return nil
	}
	return r.C[colID]
}

// Table is a rectangular block of sheet data with one header row.
type Table struct {
	// Sheet is the sheet name owning the table.
	Sheet string `json:"sheet"`
	// HeaderRow is the sheet row holding column names (1-based).
	HeaderRow int `json:"header_row"`
	// Columns lists the table columns in display order.
	Columns []Column `json:"columns"`
	// Rows contains the data rows below the header, in sheet order.
	Rows []CellRow `json:"rows"`
}

// Column returns the column with the given id.
func (t *Table) Column(colID string) (Column, bool) {
	for _, c := range t.Columns {
		if c.ID == colID {
			return c, true
		}
	}
	return Column{}, false
}

// DataRowIndex converts a sheet row (1-based) to a 0-based data row index.
func (t *Table) DataRowIndex(sheetRow int) int {
	return sheetRow - t.HeaderRow - 1
}
