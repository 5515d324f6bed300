package rangechart

import (
	"fmt"
	"slices"

	"github.com/tiendc/go-deepcopy"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Snapshot is a point-in-time copy of a model's observable state.
type Snapshot struct {
	ChartID    string             `json:"chart_id"`
	ChartType  models.ChartType   `json:"chart_type"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Category   models.Category    `json:"category"`
	Dimensions []models.ColState  `json:"dimensions"`
	Values     []models.ColState  `json:"values"`
	Fields     []models.Field     `json:"fields"`
	Ranges     []models.CellRange `json:"ranges"`
	Data       *models.ChartData  `json:"data"`
	Seq        uint64             `json:"seq"`
}

// Snapshot returns a deep copy of the model's state that shares no memory
// with the model.
func (m *Model) Snapshot() (*Snapshot, error) {
	m.mu.Lock()
	src := Snapshot{
		ChartID:    m.id,
		ChartType:  m.opts.ChartType,
		Width:      m.opts.Width,
		Height:     m.opts.Height,
		Category:   m.state.Category,
		Dimensions: m.allDimensions(),
		Values:     m.state.Values,
		Fields:     m.state.SelectedFields(),
		Ranges:     m.ranges.All(),
		Data:       m.data,
		Seq:        m.seq,
	}
	m.mu.Unlock()

	var out Snapshot
	if err := deepcopy.Copy(&out, &src); err != nil {
		return nil, fmt.Errorf("copying chart state: %w", err)
	}
	return &out, nil
}

func (m *Model) allDimensions() []models.ColState {
	return append([]models.ColState{m.state.Placeholder()}, m.state.Dimensions...)
}

// ID returns the chart id.
func (m *Model) ID() string {
	return m.id
}

// Dimensions returns the displayed dimension columns without the "(None)"
// entry.
func (m *Model) Dimensions() []models.ColState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Dimensions)
}

// AllDimensions returns the "(None)" entry followed by the displayed dimension
// columns.
func (m *Model) AllDimensions() []models.ColState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allDimensions()
}

// Values returns the displayed value columns.
func (m *Model) Values() []models.ColState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.state.Values)
}

// ColState returns the column state of a displayed dimension or value
// column. The "(None)" entry has an empty id.
func (m *Model) ColState(colID string) (models.ColState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, states := range [][]models.ColState{m.allDimensions(), m.state.Values} {
		for _, cs := range states {
			if cs.ColID == colID {
				return cs, nil
			}
		}
	}
	return models.ColState{}, fmt.Errorf("%w: %q", ErrUnknownColumn, colID)
}

// SelectedCategory returns the charted category.
func (m *Model) SelectedCategory() models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Category
}

// SelectedFields returns the charted value columns in display order.
func (m *Model) SelectedFields() []models.Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.SelectedFields()
}

// Ranges returns a copy of the current ranges.
func (m *Model) Ranges() []models.CellRange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ranges.All()
}

// Data returns the last computed chart data, or nil when nothing could be
// charted. Callers must not modify it.
func (m *Model) Data() *models.ChartData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Options returns the chart presentation options.
func (m *Model) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// ChartType returns the current chart type.
func (m *Model) ChartType() models.ChartType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.ChartType
}

// Width returns the chart width.
func (m *Model) Width() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.Width
}

// Height returns the chart height.
func (m *Model) Height() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.Height
}

// ShowTooltips reports whether tooltips are enabled.
func (m *Model) ShowTooltips() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.ShowTooltips
}

// InsideDialog reports whether the chart is hosted in a dialog.
func (m *Model) InsideDialog() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.InsideDialog
}

// Aggregate reports whether rows are grouped by category.
func (m *Model) Aggregate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts.Aggregate
}
