// Package export writes chart data and a native chart to xlsx files.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// DataSheet is the name of the sheet holding the chart data.
const DataSheet = "Chart Data"

var chartTypes = map[models.ChartType]excelize.ChartType{
	models.GroupedColumn:    excelize.Col,
	models.StackedColumn:    excelize.ColStacked,
	models.NormalizedColumn: excelize.ColPercentStacked,
	models.GroupedBar:       excelize.Bar,
	models.StackedBar:       excelize.BarStacked,
	models.NormalizedBar:    excelize.BarPercentStacked,
	models.Line:             excelize.Line,
	models.Area:             excelize.Area,
	models.Pie:              excelize.Pie,
	models.Doughnut:         excelize.Doughnut,
	models.Scatter:          excelize.Scatter,
}

// ErrNoData is returned when the snapshot has no chart data to write.
var ErrNoData = errors.New("chart has no data")

// Build lays out the snapshot's chart data on a sheet and draws a chart of
// the snapshot's type and size next to it.
func Build(s *rangechart.Snapshot, title string) (*excelize.File, error) {
	if s.Data == nil || len(s.Fields) == 0 {
		return nil, ErrNoData
	}
	kind, ok := chartTypes[s.ChartType]
	if !ok {
		return nil, fmt.Errorf("unsupported chart type %q", s.ChartType)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []any{categoryLabel(s)}
	for _, field := range s.Fields {
		header = append(header, field.DisplayName)
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	for i, row := range s.Data.Rows {
		values := []any{row[s.Data.CategoryKey]}
		for _, field := range s.Fields {
			values = append(values, row[field.ColID])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(DataSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	last := s.Data.Len() + 1
	sheetRef := "'" + strings.ReplaceAll(DataSheet, "'", "''") + "'!"
	categories := fmt.Sprintf("%s$A$2:$A$%d", sheetRef, last)
	var series []excelize.ChartSeries
	for i := range s.Fields {
		col, _ := excelize.ColumnNumberToName(i + 2)
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s$%s$1", sheetRef, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s$%s$2:$%s$%d", sheetRef, col, col, last),
		})
	}

	anchor, _ := excelize.CoordinatesToCellName(len(s.Fields)+3, 2)
	chart := &excelize.Chart{
		Type:   kind,
		Series: series,
		Dimension: excelize.ChartDimension{
			Width:  uint(s.Width),
			Height: uint(s.Height),
		},
	}
	if title != "" {
		chart.Title = []excelize.RichTextRun{{Text: title}}
	}
	if err := f.AddChart(DataSheet, anchor, chart); err != nil {
		f.Close()
		return nil, fmt.Errorf("adding chart: %w", err)
	}
	return f, nil
}

// WriteFile saves the snapshot's chart to path.
func WriteFile(path string, s *rangechart.Snapshot, title string) error {
	f, err := Build(s, title)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func categoryLabel(s *rangechart.Snapshot) string {
	id, ok := s.Category.ColumnID()
	if !ok {
		return "#"
	}
	for _, d := range s.Dimensions {
		if d.ColID == id {
			return d.DisplayName
		}
	}
	return id
}
