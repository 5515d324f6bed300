// Package rangechart keeps a chart in sync with the cell ranges it is drawn
// from: it derives category and value columns from the ranges, turns column
// menu edits back into range edits, and recomputes chart data on every change.
package rangechart

import (
	"fmt"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Options holds the presentation attributes of a chart.
type Options struct {
	// ChartType is the kind of chart drawn.
	ChartType models.ChartType
	// Width is the chart width in pixels.
	Width int
	// Height is the chart height in pixels.
	Height int
	// ShowTooltips enables series tooltips.
	ShowTooltips bool
	// InsideDialog reports whether the chart is embedded in a dialog.
	InsideDialog bool
	// Aggregate folds rows sharing a category value. Fixed for the chart's lifetime.
	Aggregate bool
}

// DefaultOptions returns default chart options.
func DefaultOptions() Options {
	return Options{
		ChartType:    models.GroupedColumn,
		Width:        800,
		Height:       400,
		ShowTooltips: true,
	}
}

// Validate checks the chart type and size.
func (o Options) Validate() error {
	if _, err := models.ParseChartType(string(o.ChartType)); err != nil {
		return err
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", o.Width, o.Height)
	}
	return nil
}

// SetChartType changes the chart type. Listeners are notified with a user
// menu origin; chart data is not recomputed.
func (m *Model) SetChartType(t models.ChartType) error {
	if _, err := models.ParseChartType(string(t)); err != nil {
		return err
	}
	return m.apply(func() *events.ChartModelUpdated {
		m.opts.ChartType = t
		return m.updated(models.OriginUserMenuEdit)
	})
}

// SetWidth changes the chart width without notifying listeners.
func (m *Model) SetWidth(w int) error {
	return m.resize(w, 0)
}

// SetHeight changes the chart height without notifying listeners.
func (m *Model) SetHeight(h int) error {
	return m.resize(0, h)
}

func (m *Model) resize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("invalid chart size %dx%d", w, h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed.Load() {
		return ErrDestroyed
	}
	if w > 0 {
		m.opts.Width = w
	}
	if h > 0 {
		m.opts.Height = h
	}
	return nil
}
