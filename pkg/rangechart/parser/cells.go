package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// ReadSheetTable reads the largest table detected on a sheet.
func ReadSheetTable(f *excelize.File, sheetName string) (*models.Table, error) {
	areas, err := DetectTables(f, sheetName, DefaultTableParams())
	if err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheetName)
	}
	return ReadTable(f, sheetName, areas[0])
}

// ReadTable reads the table occupying area. The first row of the area holds
// the column headers. Columns are identified by their letter.
func ReadTable(f *excelize.File, sheetName string, area Area) (*models.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	t := &models.Table{Sheet: sheetName, HeaderRow: area.R1}
	header := rowAt(rows, area.R1)
	for c := area.C1; c <= area.C2; c++ {
		id, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return nil, err
		}
		visible, err := f.GetColVisible(sheetName, id)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, models.Column{
			ID:          id,
			DisplayName: strings.TrimSpace(cellAt(header, c)),
			Hidden:      !visible,
		})
	}

	for r := area.R1 + 1; r <= area.R2; r++ {
		row := rowAt(rows, r)
		cells := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if v := cellAt(row, area.C1+i); v != "" {
				cells[col.ID] = parseValue(v)
			}
		}
		t.Rows = append(t.Rows, models.CellRow{R: r, C: cells})
	}

	classifyColumns(t)
	return t, nil
}

// classifyColumns marks columns holding any text as groupable and purely
// numeric columns as values. Empty columns get neither role.
func classifyColumns(t *models.Table) {
	for i := range t.Columns {
		col := &t.Columns[i]
		var text, numbers bool
		for _, row := range t.Rows {
			switch row.Value(col.ID).(type) {
			case nil:
			case string:
				text = true
			default:
				numbers = true
			}
		}
		switch {
		case text:
			col.EnableRowGroup = true
		case numbers:
			col.EnableValue = true
			col.AggFunc = models.AggSum
		}
	}
}

func rowAt(rows [][]string, sheetRow int) []string {
	if sheetRow < 1 || sheetRow > len(rows) {
		return nil
	}
	return rows[sheetRow-1]
}

func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
