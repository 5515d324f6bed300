// Package events carries grid notifications to chart models and chart
// updates back to their consumers.
package events

import (
	"context"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Event topic constants
const (
	TopicRangeSelectionChanged   = "grid.range_selection.changed"
	TopicModelUpdated            = "grid.model.updated"
	TopicCellValueChanged        = "grid.cell.value_changed"
	TopicColumnVisibilityChanged = "grid.column.visibility_changed"

	TopicChartModelUpdated = "chart.model.updated"
)

// Grid events

type RangeSelectionChanged struct {
	Ranges []models.CellRange `json:"ranges"`
}

type ModelUpdated struct{}

type CellValueChanged struct {
	ColID string `json:"col_id"`
	Row   int    `json:"row"`
	Value any    `json:"value"`
}

type ColumnVisibilityChanged struct {
	ColIDs  []string `json:"col_ids"`
	Visible bool     `json:"visible"`
}

// ChartModelUpdated is emitted after a chart model recomputed its data or
// changed its chart type.
type ChartModelUpdated struct {
	ChartID string             `json:"chart_id"`
	Origin  models.Origin      `json:"origin"`
	Ranges  []models.CellRange `json:"ranges"`
}

// FromGrid reports whether the grid's own range selection caused the update.
func (e ChartModelUpdated) FromGrid() bool {
	return e.Origin.FromGrid()
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher is a Publisher that does nothing.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
