package rangechart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ukaji3/rangechart-go/internal/idgen"
	"github.com/ukaji3/rangechart-go/internal/logging"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// ColumnDirectory lists the displayed grid columns and their neighbours.
type ColumnDirectory interface {
	DisplayedColumns() []models.Column
	models.Adjacency
}

// Datasource produces chart data for a query.
type Datasource interface {
	Fetch(ctx context.Context, q models.Query) (*models.ChartData, error)
}

// RowResolver maps a range row position to a data row index.
type RowResolver func(models.RowPosition) int

// Model owns the ranges a chart is drawn from and the column selection
// derived from them. All state transitions are serialized; update events are
// delivered after the transition has been committed.
type Model struct {
	mu sync.Mutex

	id       string
	dir      ColumnDirectory
	ds       Datasource
	bus      *events.Bus
	pub      events.Publisher
	rowIndex RowResolver
	newID    models.IDFunc
	logger   *slog.Logger
	hooks    Hooks
	opts     Options
	async    bool
	parent   context.Context

	ctx    context.Context
	cancel context.CancelFunc

	// reference supplies row bounds for ranges created from the column menu.
	reference models.CellRange
	ranges    models.RangeSet
	// choice is the category picked from the menu; nil until the user picks one.
	choice  *models.Category
	state   models.ColumnState
	data    *models.ChartData
	seq     uint64
	history history
	// pending holds hook calls queued under the lock.
	pending []func()

	listeners   []*listener
	unsubscribe []func()
	inflight    sync.WaitGroup
	destroyed   atomic.Bool
}

type listener struct {
	fn     func(events.ChartModelUpdated)
	active atomic.Bool
}

// New creates a chart model over the given ranges. Every range starts out as
// a value range; the first one supplies row bounds for ranges added later.
func New(dir ColumnDirectory, ds Datasource, ranges []models.CellRange, opts ...Option) (*Model, error) {
	if dir == nil {
		return nil, errors.New("column directory is required")
	}
	if ds == nil {
		return nil, errors.New("datasource is required")
	}

	m := &Model{
		dir:      dir,
		ds:       ds,
		rowIndex: func(p models.RowPosition) int { return p.Index },
		newID:    idgen.MustGenerate,
		logger:   logging.NewNop(),
		pub:      &events.NoopPublisher{},
		opts:     DefaultOptions(),
		parent:   context.Background(),
		history:  history{limit: defaultHistoryLimit},
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.opts.Validate(); err != nil {
		return nil, err
	}
	if m.id == "" {
		m.id = idgen.NewChartID()
	}

	initial := make([]models.CellRange, 0, len(ranges))
	for _, r := range m.normalize(ranges) {
		r.Mode = models.ModeValue
		initial = append(initial, r)
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: at least one range with columns is required", ErrInvalidRange)
	}
	m.reference = initial[0].Clone()
	m.ranges = models.NewRangeSet(initial...)
	m.ctx, m.cancel = context.WithCancel(m.parent)

	m.mu.Lock()
	m.refresh(models.OriginExternalModelUpdate)
	pending := m.drain()
	m.mu.Unlock()
	runAll(pending)

	m.subscribe()
	return m, nil
}

func (m *Model) subscribe() {
	if m.bus == nil {
		return
	}
	m.unsubscribe = append(m.unsubscribe,
		m.bus.Subscribe(events.TopicRangeSelectionChanged, func(ctx context.Context, event any) {
			switch e := event.(type) {
			case events.RangeSelectionChanged:
				_ = m.OnRangeSelectionChanged(e.Ranges)
			case *events.RangeSelectionChanged:
				_ = m.OnRangeSelectionChanged(e.Ranges)
			}
		}),
		m.bus.Subscribe(events.TopicModelUpdated, func(context.Context, any) {
			_ = m.OnModelUpdated()
		}),
		m.bus.Subscribe(events.TopicCellValueChanged, func(context.Context, any) {
			_ = m.OnCellValueChanged()
		}),
		m.bus.Subscribe(events.TopicColumnVisibilityChanged, func(context.Context, any) {
			_ = m.OnColumnVisibilityChanged()
		}),
	)
}

// Subscribe registers fn for chart update events. The returned cancel
// function is idempotent.
func (m *Model) Subscribe(fn func(events.ChartModelUpdated)) (cancel func()) {
	l := &listener{fn: fn}
	l.active.Store(true)
	m.mu.Lock()
	if !m.destroyed.Load() {
		m.listeners = append(m.listeners, l)
	}
	m.mu.Unlock()
	return func() {
		l.active.Store(false)
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listeners = slices.DeleteFunc(m.listeners, func(o *listener) bool { return o == l })
	}
}

// Update applies a column menu toggle. Columns that are neither a displayed
// dimension nor a displayed value column are ignored.
func (m *Model) Update(cs models.ColState) error {
	var err error
	if applyErr := m.apply(func() *events.ChartModelUpdated {
		var ev *events.ChartModelUpdated
		ev, err = m.update(cs)
		return ev
	}); applyErr != nil {
		return applyErr
	}
	return err
}

func (m *Model) update(cs models.ColState) (*events.ChartModelUpdated, error) {
	switch {
	case cs.Placeholder:
		// Picking "(None)" drops the current dimension.
		current, ok := m.state.Category.ColumnID()
		if !cs.Selected || !ok {
			return nil, nil
		}
		return m.updateDimension(models.ColState{ColID: current})
	case m.state.HasDimension(cs.ColID):
		return m.updateDimension(cs)
	case m.state.HasValue(cs.ColID):
		return m.updateValue(cs)
	}
	m.logger.Debug("ignoring update for column without column state", "chart_id", m.id, "col_id", cs.ColID)
	return nil, nil
}

func (m *Model) updateDimension(cs models.ColState) (*events.ChartModelUpdated, error) {
	current, ok := m.state.Category.ColumnID()
	isCurrent := ok && current == cs.ColID
	if cs.Selected == isCurrent {
		return nil, nil
	}

	if !cs.Selected {
		next, edits, err := m.removeColumn(cs.ColID)
		if err != nil {
			return nil, err
		}
		none := models.NoCategory()
		return m.commit(next, &none, edits), nil
	}

	next, edits := m.ranges.RemoveDimensionRanges(m.state.HasDimension)
	next, edit := next.InsertColumn(cs.ColID, true, m.dir, m.reference, m.newID)
	choice := models.RealColumn(cs.ColID)
	return m.commit(next, &choice, append(edits, edit)), nil
}

func (m *Model) updateValue(cs models.ColState) (*events.ChartModelUpdated, error) {
	selected := false
	for _, v := range m.state.Values {
		if v.ColID == cs.ColID {
			selected = v.Selected
		}
	}
	if cs.Selected == selected {
		return nil, nil
	}

	if cs.Selected {
		next, edit := m.ranges.InsertColumn(cs.ColID, false, m.dir, m.reference, m.newID)
		return m.commit(next, m.choice, []models.Edit{edit}), nil
	}
	next, edits, err := m.removeColumn(cs.ColID)
	if err != nil {
		return nil, err
	}
	return m.commit(next, m.choice, edits), nil
}

// removeColumn takes colID out of the ranges holding it. A displayed column
// with no range means column state and ranges have drifted apart.
func (m *Model) removeColumn(colID string) (models.RangeSet, []models.Edit, error) {
	next, edits, err := m.ranges.RemoveColumn(colID, m.newID)
	if err != nil {
		m.logger.Error("deselected column has no range", "chart_id", m.id, "col_id", colID)
		return m.ranges, nil, NewRangeEditError(colID, "deselect", fmt.Errorf("%w: %w", ErrRangeDesync, err))
	}
	return next, edits, nil
}

// commit records the current ranges for undo and installs next.
func (m *Model) commit(next models.RangeSet, choice *models.Category, edits []models.Edit) *events.ChartModelUpdated {
	m.history.push(checkpoint{ranges: m.ranges, choice: m.choice})
	m.ranges = next
	m.choice = choice
	for _, e := range edits {
		m.logger.Debug("range edit", "chart_id", m.id, "kind", e.Kind, "col_id", e.ColID, "range_id", e.RangeID)
		if m.hooks.OnRangeEdit != nil {
			m.later(func() { m.hooks.OnRangeEdit(e) })
		}
	}
	return m.refresh(models.OriginUserMenuEdit)
}

// OnRangeSelectionChanged replaces the ranges with the grid's selection. The
// category is derived from the new ranges again, dropping any menu choice.
func (m *Model) OnRangeSelectionChanged(ranges []models.CellRange) error {
	return m.apply(func() *events.ChartModelUpdated {
		m.ranges = models.NewRangeSet(m.normalize(ranges)...)
		m.choice = nil
		m.history.reset()
		return m.refresh(models.OriginGridSelectionChange)
	})
}

// OnModelUpdated re-derives column state after the grid rebuilt its rows.
func (m *Model) OnModelUpdated() error {
	return m.apply(func() *events.ChartModelUpdated {
		return m.refresh(models.OriginExternalModelUpdate)
	})
}

// OnColumnVisibilityChanged re-derives column state. Ranges are left as they
// are; hidden columns simply drop out of the chart.
func (m *Model) OnColumnVisibilityChanged() error {
	return m.apply(func() *events.ChartModelUpdated {
		return m.refresh(models.OriginExternalModelUpdate)
	})
}

// OnCellValueChanged recomputes chart data.
func (m *Model) OnCellValueChanged() error {
	return m.apply(func() *events.ChartModelUpdated {
		return m.recompute(models.OriginExternalModelUpdate)
	})
}

// apply runs fn under the model lock and emits its event afterwards.
func (m *Model) apply(fn func() *events.ChartModelUpdated) error {
	m.mu.Lock()
	if m.destroyed.Load() {
		m.mu.Unlock()
		return ErrDestroyed
	}
	ev := fn()
	pending := m.drain()
	m.mu.Unlock()
	runAll(pending)
	m.emit(ev)
	return nil
}

// later queues a hook call until the model lock is released. Callers hold
// the lock.
func (m *Model) later(fn func()) {
	m.pending = append(m.pending, fn)
}

func (m *Model) drain() []func() {
	pending := m.pending
	m.pending = nil
	return pending
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func (m *Model) normalize(ranges []models.CellRange) []models.CellRange {
	out := make([]models.CellRange, 0, len(ranges))
	for _, r := range ranges {
		if len(r.Columns) == 0 {
			continue
		}
		r = r.Clone()
		if r.ID == "" {
			r.ID = m.newID()
		}
		if r.Mode == "" {
			r.Mode = models.ModeValue
		}
		if !r.Contains(r.StartColumn) {
			r.StartColumn = r.First()
		}
		out = append(out, r)
	}
	return out
}

func (m *Model) refresh(origin models.Origin) *events.ChartModelUpdated {
	m.derive()
	return m.recompute(origin)
}

func (m *Model) derive() {
	displayed := m.dir.DisplayedColumns()
	m.state = models.DeriveColumnState(displayed, m.ranges, m.choice)
	if len(m.state.Values) == 0 {
		m.logger.Warn("charts require at least one visible value column", "chart_id", m.id, "error", ErrNoValueColumns)
	}

	shown := make(map[string]bool, len(displayed))
	for _, c := range displayed {
		shown[c.ID] = true
	}
	for _, id := range m.ranges.Columns() {
		if !shown[id] {
			m.logger.Debug("range column not displayed", "chart_id", m.id, "col_id", id)
		}
	}
}

func (m *Model) recompute(origin models.Origin) *events.ChartModelUpdated {
	m.seq++
	if len(m.state.Values) == 0 {
		m.data = nil
		return m.updated(origin)
	}

	q := m.query()
	if m.hooks.OnRecompute != nil {
		m.later(func() { m.hooks.OnRecompute(origin, q) })
	}
	if m.async {
		m.fetchAsync(m.seq, origin, q)
		return nil
	}
	data, err := m.ds.Fetch(m.ctx, q)
	m.store(data, err)
	return m.updated(origin)
}

// query builds the datasource request. Rows come from the latest range.
func (m *Model) query() models.Query {
	bounds := m.reference
	if latest, ok := m.ranges.Latest(); ok {
		bounds = latest
	}
	start, end := m.rowIndex(bounds.StartRow), m.rowIndex(bounds.EndRow)
	if start > end {
		start, end = end, start
	}

	fields := m.state.SelectedFields()
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ColID
	}
	return models.Query{
		Category:  m.state.Category,
		Fields:    ids,
		StartRow:  start,
		EndRow:    end,
		Aggregate: m.opts.Aggregate,
	}
}

func (m *Model) fetchAsync(seq uint64, origin models.Origin, q models.Query) {
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		data, err := m.ds.Fetch(m.ctx, q)

		m.mu.Lock()
		if m.destroyed.Load() {
			m.mu.Unlock()
			return
		}
		if seq != m.seq {
			m.mu.Unlock()
			m.logger.Debug("discarding superseded chart data", "chart_id", m.id, "seq", seq)
			if m.hooks.OnStaleResult != nil {
				m.hooks.OnStaleResult(seq)
			}
			return
		}
		m.store(data, err)
		ev := m.updated(origin)
		m.mu.Unlock()
		m.emit(ev)
	}()
}

func (m *Model) store(data *models.ChartData, err error) {
	if err != nil {
		m.logger.Error("chart data query failed", "chart_id", m.id, "error", err)
		m.data = nil
		return
	}
	m.data = data
}

func (m *Model) updated(origin models.Origin) *events.ChartModelUpdated {
	return &events.ChartModelUpdated{
		ChartID: m.id,
		Origin:  origin,
		Ranges:  m.ranges.All(),
	}
}

func (m *Model) emit(ev *events.ChartModelUpdated) {
	if ev == nil || m.destroyed.Load() {
		return
	}
	m.mu.Lock()
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	if m.hooks.OnUpdated != nil {
		m.hooks.OnUpdated(*ev)
	}
	for _, l := range listeners {
		if m.destroyed.Load() {
			return
		}
		if l.active.Load() {
			l.fn(*ev)
		}
	}
	if !m.destroyed.Load() {
		if err := m.pub.Publish(m.ctx, events.TopicChartModelUpdated, *ev); err != nil {
			m.logger.Debug("chart update not published", "chart_id", m.id, "error", err)
		}
	}
}

// Wait blocks until in-flight datasource queries have finished.
func (m *Model) Wait() {
	m.inflight.Wait()
}

// Destroy unsubscribes the model from the grid, drops its listeners and
// cancels pending queries. A datasource implementing io.Closer is closed.
func (m *Model) Destroy() error {
	m.mu.Lock()
	if m.destroyed.Swap(true) {
		m.mu.Unlock()
		return nil
	}
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	for _, l := range m.listeners {
		l.active.Store(false)
	}
	m.listeners = nil
	m.cancel()
	m.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	if c, ok := m.ds.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("closing datasource: %w", err)
		}
	}
	return nil
}
