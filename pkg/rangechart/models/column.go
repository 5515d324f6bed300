package models

// AggFunc names the function used to fold values of one category together.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggAvg   AggFunc = "avg"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
	AggCount AggFunc = "count"
	AggFirst AggFunc = "first"
)

// Column is a displayable grid column and its chart capabilities.
type Column struct {
	// ID is the stable column identifier.
	ID string `json:"col_id"`
	// DisplayName is the header text shown to users.
	DisplayName string `json:"display_name"`
	// EnableRowGroup marks the column as groupable.
	EnableRowGroup bool `json:"enable_row_group,omitempty"`
	// EnablePivot marks the column as pivotable.
	EnablePivot bool `json:"enable_pivot,omitempty"`
	// EnableValue marks the column as holding aggregatable values.
	EnableValue bool `json:"enable_value,omitempty"`
	// AggFunc is the aggregation applied when chart data is aggregated (default sum).
	AggFunc AggFunc `json:"agg_func,omitempty"`
	// Hidden reports whether the column starts out hidden.
	Hidden bool `json:"hidden,omitempty"`
}

// IsDimension reports whether the column can act as the chart category.
func (c Column) IsDimension() bool {
	return c.EnableRowGroup || c.EnablePivot
}

// IsValue reports whether the column can supply a value series.
// Columns that are also dimensions are classified as dimensions.
func (c Column) IsValue() bool {
	return c.EnableValue && !c.IsDimension()
}

// Label returns the display name, falling back to the id.
func (c Column) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ID
}
