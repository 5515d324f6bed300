package rangechart

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/datasource"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/grid"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/parser"
)

// LoadOptions controls how LoadWorkbook reads a workbook.
type LoadOptions struct {
	// Sheet is the sheet to chart. Defaults to the first sheet.
	Sheet string
	// Area is the A1 area of the table, header row included. Detected when
	// empty.
	Area string
}

// Workbook is a sheet table loaded from an xlsx file together with the
// collaborators a chart model needs.
type Workbook struct {
	Path      string
	Sheet     string
	Table     *models.Table
	Directory *grid.Directory
	Source    *datasource.TableSource
	// Charts lists the charts already drawn on the sheet.
	Charts []models.ChartSpec
	// Names holds the workbook's defined names that refer to ranges.
	Names map[string][]parser.Reference
}

// LoadWorkbook reads one sheet of an xlsx file as a chartable table.
func LoadWorkbook(path string, opts LoadOptions) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets", filepath.Base(path))
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, filepath.Base(path))
	}

	var table *models.Table
	if opts.Area != "" {
		ref, err := parser.ParseReference(opts.Area)
		if err != nil {
			return nil, err
		}
		table, err = parser.ReadTable(f, sheet, ref.Area)
		if err != nil {
			return nil, fmt.Errorf("reading %s!%s: %w", sheet, ref.Area, err)
		}
	} else {
		table, err = parser.ReadSheetTable(f, sheet)
		if err != nil {
			return nil, err
		}
	}

	charts, err := parser.ExtractChartSpecs(path)
	if err != nil {
		return nil, fmt.Errorf("reading charts: %w", err)
	}

	return &Workbook{
		Path:      path,
		Sheet:     sheet,
		Table:     table,
		Directory: grid.NewDirectory(table.Columns...),
		Source:    datasource.NewTableSource(table),
		Charts:    charts[sheet],
		Names:     parser.DefinedRanges(f),
	}, nil
}

// Ranges converts A1 references or defined names into ranges over the table.
func (w *Workbook) Ranges(refs ...string) ([]models.CellRange, error) {
	var out []models.CellRange
	for _, ref := range refs {
		parsed, ok := w.Names[ref]
		if !ok {
			r, err := parser.ParseReference(ref)
			if err != nil {
				return nil, err
			}
			parsed = []parser.Reference{r}
		}
		for _, r := range parsed {
			cr, err := parser.RangeFromReference(w.Table, r)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRange, ref, err)
			}
			out = append(out, cr)
		}
	}
	return out, nil
}

// ChartRanges returns the ranges an existing chart of the sheet is drawn
// from: its category range followed by one range per series.
func (w *Workbook) ChartRanges(index int) ([]models.CellRange, error) {
	if index < 0 || index >= len(w.Charts) {
		return nil, fmt.Errorf("%w: sheet %q has %d charts, no chart %d", ErrInvalidRange, w.Sheet, len(w.Charts), index)
	}

	var refs []string
	for _, s := range w.Charts[index].Series {
		if s.CategoryRange != "" {
			refs = append(refs, s.CategoryRange)
			break
		}
	}
	for _, s := range w.Charts[index].Series {
		if s.ValueRange != "" {
			refs = append(refs, s.ValueRange)
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: chart %d has no series", ErrInvalidRange, index)
	}
	return w.Ranges(refs...)
}

// DefaultRanges returns a single range spanning the whole table.
func (w *Workbook) DefaultRanges() ([]models.CellRange, error) {
	if len(w.Table.Rows) == 0 || len(w.Table.Columns) == 0 {
		return nil, fmt.Errorf("%w: table on %q has no data", ErrInvalidRange, w.Sheet)
	}
	cols := make([]string, len(w.Table.Columns))
	for i, c := range w.Table.Columns {
		cols[i] = c.ID
	}
	return []models.CellRange{{
		StartRow:    models.RowPosition{Index: 0},
		EndRow:      models.RowPosition{Index: len(w.Table.Rows) - 1},
		Columns:     cols,
		StartColumn: cols[0],
		Mode:        models.ModeValue,
	}}, nil
}

// NewModel creates a chart model over the workbook table.
func (w *Workbook) NewModel(ranges []models.CellRange, opts ...Option) (*Model, error) {
	opts = append([]Option{WithRowResolver(w.Source.RowIndex)}, opts...)
	return New(w.Directory, w.Source, ranges, opts...)
}
