package rangechart

import (
	"context"
	"log/slog"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Hooks are optional callbacks for model observability. They run after the
// model lock is released, once the transition that triggered them has been
// committed, so they may call back into the Model.
type Hooks struct {
	OnRecompute   func(origin models.Origin, q models.Query)
	OnStaleResult func(seq uint64)
	OnRangeEdit   func(edit models.Edit)
	OnUpdated     func(ev events.ChartModelUpdated)
}

// Option defines a functional option for configuring a Model.
type Option func(*Model)

// WithOptions sets the chart presentation options.
func WithOptions(opts Options) Option {
	return func(m *Model) {
		m.opts = opts
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithBus subscribes the model to grid events on bus and publishes chart
// updates on it. Subscriptions end with Destroy.
func WithBus(bus *events.Bus) Option {
	return func(m *Model) {
		m.bus = bus
		m.pub = bus
	}
}

// WithPublisher sets where chart updates are published without subscribing
// to grid events.
func WithPublisher(pub events.Publisher) Option {
	return func(m *Model) {
		m.pub = pub
	}
}

// WithRowResolver sets how range row positions map to data row indexes.
func WithRowResolver(fn RowResolver) Option {
	return func(m *Model) {
		m.rowIndex = fn
	}
}

// WithHooks configures lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Model) {
		m.hooks = h
	}
}

// WithAsyncFetch runs datasource queries on their own goroutine. Only the
// result of the latest query is applied.
func WithAsyncFetch(async bool) Option {
	return func(m *Model) {
		m.async = async
	}
}

// WithIDFunc sets the generator for range ids.
func WithIDFunc(fn models.IDFunc) Option {
	return func(m *Model) {
		m.newID = fn
	}
}

// WithChartID sets the chart id reported in update events.
func WithChartID(id string) Option {
	return func(m *Model) {
		m.id = id
	}
}

// WithContext sets the parent context of datasource queries.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.parent = ctx
	}
}

// WithHistoryLimit caps the number of undoable edits (default 50).
func WithHistoryLimit(n int) Option {
	return func(m *Model) {
		m.history.limit = n
	}
}
