package parser

import (
	"github.com/xuri/excelize/v2"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
	// MinColumns is the minimum table width, header included.
	MinColumns int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
		MinColumns:       1,
	}
}

// DetectTables returns the blocks of sheet that look like a table with a
// header row. Blocks are separated by fully empty rows; the largest block
// comes first.
func DetectTables(f *excelize.File, sheetName string, params TableDetectionParams) ([]Area, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	var areas []Area
	for _, block := range splitBlocks(rows) {
		b, ok := dataBounds(rows, block)
		if !ok {
			continue
		}
		filled := countNonEmptyCells(rows, b)
		if filled < params.MinNonemptyCells || b.C2-b.C1+1 < params.MinColumns {
			continue
		}
		if float64(filled)/float64(b.cells()) < params.DensityMin {
			continue
		}
		areas = append(areas, b)
	}

	// Stable insertion sort by size, largest first.
	for i := 1; i < len(areas); i++ {
		for j := i; j > 0 && areas[j].cells() > areas[j-1].cells(); j-- {
			areas[j], areas[j-1] = areas[j-1], areas[j]
		}
	}
	return areas, nil
}

// splitBlocks returns [first, last] 0-based row spans separated by empty rows.
func splitBlocks(rows [][]string) [][2]int {
	var blocks [][2]int
	start := -1
	for i, row := range rows {
		empty := isEmptyRow(row)
		switch {
		case !empty && start < 0:
			start = i
		case empty && start >= 0:
			blocks = append(blocks, [2]int{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		blocks = append(blocks, [2]int{start, len(rows) - 1})
	}
	return blocks
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// dataBounds finds the bounding box of non-empty cells of a row span.
func dataBounds(rows [][]string, span [2]int) (Area, bool) {
	minCol, maxCol := -1, -1
	for rowIdx := span[0]; rowIdx <= span[1]; rowIdx++ {
		for colIdx, cell := range rows[rowIdx] {
			if cell == "" {
				continue
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}
	if minCol < 0 {
		return Area{}, false
	}
	return Area{C1: minCol + 1, R1: span[0] + 1, C2: maxCol + 1, R2: span[1] + 1}, true
}

// countNonEmptyCells counts non-empty cells within a.
func countNonEmptyCells(rows [][]string, a Area) int {
	count := 0
	for rowIdx := a.R1 - 1; rowIdx <= a.R2-1 && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := a.C1 - 1; colIdx <= a.C2-1 && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
