package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Area is a rectangular block of cells with 1-based inclusive bounds.
type Area struct {
	C1, R1, C2, R2 int
}

func (a Area) cells() int {
	return (a.R2 - a.R1 + 1) * (a.C2 - a.C1 + 1)
}

// String returns the area in A1 notation, e.g. "A1:D10".
func (a Area) String() string {
	start, _ := excelize.CoordinatesToCellName(a.C1, a.R1)
	end, _ := excelize.CoordinatesToCellName(a.C2, a.R2)
	return start + ":" + end
}

// Reference is a parsed A1 reference, optionally qualified by a sheet.
type Reference struct {
	Sheet string
	Area  Area
}

// ParseReference parses references such as 'My Sheet'!$A$1:$D$10,
// Sheet1!B2:B9, A1:D10 or a single cell.
func ParseReference(ref string) (Reference, error) {
	ref = strings.TrimSpace(ref)
	var out Reference
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		out.Sheet = strings.ReplaceAll(strings.Trim(ref[:idx], "'"), "''", "'")
		ref = ref[idx+1:]
	}

	ref = strings.ReplaceAll(ref, "$", "")
	start, end, found := strings.Cut(ref, ":")
	if !found {
		end = start
	}
	c1, r1, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return Reference{}, fmt.Errorf("%w %q: %v", ErrInvalidReference, ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return Reference{}, fmt.Errorf("%w %q: %v", ErrInvalidReference, ref, err)
	}
	out.Area = Area{C1: min(c1, c2), R1: min(r1, r2), C2: max(c1, c2), R2: max(r1, r2)}
	return out, nil
}

// ParseReferences parses a comma-separated list of references, as used by
// defined names.
func ParseReferences(refs string) ([]Reference, error) {
	var out []Reference
	for _, part := range strings.Split(refs, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ref, err := ParseReference(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// DefinedRanges returns the workbook's defined names that refer to cell
// ranges, including print areas.
func DefinedRanges(f *excelize.File) map[string][]Reference {
	result := make(map[string][]Reference)
	for _, dn := range f.GetDefinedName() {
		refs, err := ParseReferences(strings.TrimPrefix(dn.RefersTo, "="))
		if err != nil || len(refs) == 0 {
			continue
		}
		result[dn.Name] = append(result[dn.Name], refs...)
	}
	return result
}

// RangeFromReference converts ref into a cell range over t. Columns outside
// the table are dropped and rows are clipped to the table's data rows.
func RangeFromReference(t *models.Table, ref Reference) (models.CellRange, error) {
	if ref.Sheet != "" && ref.Sheet != t.Sheet {
		return models.CellRange{}, fmt.Errorf("%w: %s is on sheet %q, table is on %q", ErrInvalidReference, ref.Area, ref.Sheet, t.Sheet)
	}

	var cols []string
	for c := ref.Area.C1; c <= ref.Area.C2; c++ {
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return models.CellRange{}, err
		}
		if _, ok := t.Column(name); ok {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		return models.CellRange{}, fmt.Errorf("%w: %s has no table columns", ErrInvalidReference, ref.Area)
	}

	last := len(t.Rows) - 1
	start := max(t.DataRowIndex(ref.Area.R1), 0)
	end := min(t.DataRowIndex(ref.Area.R2), last)
	if end < 0 || start > last {
		return models.CellRange{}, fmt.Errorf("%w: %s has no data rows", ErrInvalidReference, ref.Area)
	}

	return models.CellRange{
		StartRow:    models.RowPosition{Index: start},
		EndRow:      models.RowPosition{Index: end},
		Columns:     cols,
		StartColumn: cols[0],
		Mode:        models.ModeValue,
	}, nil
}
