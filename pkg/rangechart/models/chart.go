package models

import "fmt"

// ChartType is the kind of chart drawn from the data.
type ChartType string

const (
	GroupedColumn    ChartType = "groupedColumn"
	StackedColumn    ChartType = "stackedColumn"
	NormalizedColumn ChartType = "normalizedColumn"
	GroupedBar       ChartType = "groupedBar"
	StackedBar       ChartType = "stackedBar"
	NormalizedBar    ChartType = "normalizedBar"
	Line             ChartType = "line"
	Pie              ChartType = "pie"
	Doughnut         ChartType = "doughnut"
	Area             ChartType = "area"
	Scatter          ChartType = "scatter"
)

// ChartTypes lists every supported chart type.
var ChartTypes = []ChartType{
	GroupedColumn, StackedColumn, NormalizedColumn,
	GroupedBar, StackedBar, NormalizedBar,
	Line, Pie, Doughnut, Area, Scatter,
}

// ParseChartType validates a chart type name.
func ParseChartType(s string) (ChartType, error) {
	for _, t := range ChartTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Origin records why chart data was recomputed.
type Origin string

const (
	// OriginUserMenuEdit is an edit made through the chart's own menus.
	OriginUserMenuEdit Origin = "user_menu_edit"
	// OriginGridSelectionChange is a range edit relayed from the grid.
	OriginGridSelectionChange Origin = "grid_selection_change"
	// OriginExternalModelUpdate covers grid model, cell and visibility changes.
	OriginExternalModelUpdate Origin = "external_model_update"
)

// FromGrid reports whether the grid's selection UI triggered the change.
func (o Origin) FromGrid() bool {
	return o == OriginGridSelectionChange
}

// Query is the request handed to a chart datasource.
type Query struct {
	// Category is the grouping column, or none.
	Category Category `json:"category"`
	// Fields lists the value column ids in display order.
	Fields []string `json:"fields"`
	// StartRow is the first data row index (inclusive).
	StartRow int `json:"start_row"`
	// EndRow is the last data row index (inclusive).
	EndRow int `json:"end_row"`
	// Aggregate folds rows sharing a category value together.
	Aggregate bool `json:"aggregate"`
}

// RowNumberKey is the category key used when the chart has no category.
const RowNumberKey = "_row"

// ChartData is the tabular data a chart is drawn from.
type ChartData struct {
	// CategoryKey is the row key holding the category label.
	CategoryKey string `json:"category_key"`
	// Fields lists the value keys present in each row.
	Fields []string `json:"fields"`
	// Rows holds one entry per category value.
	Rows []map[string]any `json:"rows"`
}

// Len returns the number of rows.
func (d *ChartData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// SeriesRef references the cells of one series of a workbook chart.
type SeriesRef struct {
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference for the series name.
	NameRange string `json:"name_range,omitempty"`
	// CategoryRange is the range reference for category labels.
	CategoryRange string `json:"category_range,omitempty"`
	// ValueRange is the range reference for series values.
	ValueRange string `json:"value_range,omitempty"`
}

// ChartSpec describes a chart found in a workbook.
type ChartSpec struct {
	// Name is the drawing object name (e.g. "Chart 1").
	Name string `json:"name"`
	// Width is the frame width in pixels, 0 when unknown.
	Width int `json:"width,omitempty"`
	// Height is the frame height in pixels, 0 when unknown.
	Height int `json:"height,omitempty"`
	// ChartType is the chart type, empty when it has no equivalent.
	ChartType ChartType `json:"chart_type,omitempty"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// Series is the list of series included in the chart.
	Series []SeriesRef `json:"series"`
}
