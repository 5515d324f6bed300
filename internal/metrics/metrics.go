// Package metrics records chart model activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Collector holds the chart model metrics.
type Collector struct {
	recomputes     *prometheus.CounterVec
	updates        *prometheus.CounterVec
	rangeEdits     *prometheus.CounterVec
	staleResults   prometheus.Counter
	selectedFields prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangechart_recomputes_total",
			Help: "Total number of datasource queries issued, by origin",
		}, []string{"origin"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangechart_updates_total",
			Help: "Total number of chart update events emitted, by origin",
		}, []string{"origin"}),
		rangeEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rangechart_range_edits_total",
			Help: "Total number of range edits applied from the column menu, by kind",
		}, []string{"kind"}),
		staleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rangechart_stale_results_total",
			Help: "Number of datasource results discarded because a newer query was issued",
		}),
		selectedFields: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rangechart_selected_fields",
			Help: "Number of value columns in the latest datasource query",
		}),
	}
	for _, col := range []prometheus.Collector{c.recomputes, c.updates, c.rangeEdits, c.staleResults, c.selectedFields} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns model hooks that feed the collector. next, when set, is
// called after each metric is recorded.
func (c *Collector) Hooks(next rangechart.Hooks) rangechart.Hooks {
	return rangechart.Hooks{
		OnRecompute: func(origin models.Origin, q models.Query) {
			c.recomputes.WithLabelValues(string(origin)).Inc()
			c.selectedFields.Set(float64(len(q.Fields)))
			if next.OnRecompute != nil {
				next.OnRecompute(origin, q)
			}
		},
		OnStaleResult: func(seq uint64) {
			c.staleResults.Inc()
			if next.OnStaleResult != nil {
				next.OnStaleResult(seq)
			}
		},
		OnRangeEdit: func(e models.Edit) {
			c.rangeEdits.WithLabelValues(string(e.Kind)).Inc()
			if next.OnRangeEdit != nil {
				next.OnRangeEdit(e)
			}
		},
		OnUpdated: func(ev events.ChartModelUpdated) {
			c.updates.WithLabelValues(string(ev.Origin)).Inc()
			if next.OnUpdated != nil {
				next.OnUpdated(ev)
			}
		},
	}
}
