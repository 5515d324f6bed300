package rangechart

import (
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

const defaultHistoryLimit = 50

type checkpoint struct {
	ranges models.RangeSet
	choice *models.Category
}

// history holds menu edits for undo and redo. Grid selection changes reset it.
type history struct {
	undo  []checkpoint
	redo  []checkpoint
	limit int
}

func (h *history) push(c checkpoint) {
	if h.limit <= 0 {
		return
	}
	h.undo = append(h.undo, c)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

func pop(stack *[]checkpoint) (checkpoint, bool) {
	s := *stack
	if len(s) == 0 {
		return checkpoint{}, false
	}
	c := s[len(s)-1]
	*stack = s[:len(s)-1]
	return c, true
}

// Undo reverts the last column menu edit.
func (m *Model) Undo() error {
	return m.travel(&m.history.undo, &m.history.redo, ErrNothingToUndo)
}

// Redo reapplies the last undone edit.
func (m *Model) Redo() error {
	return m.travel(&m.history.redo, &m.history.undo, ErrNothingToRedo)
}

func (m *Model) travel(from, to *[]checkpoint, empty error) error {
	var err error
	if applyErr := m.apply(func() *events.ChartModelUpdated {
		c, ok := pop(from)
		if !ok {
			err = empty
			return nil
		}
		*to = append(*to, checkpoint{ranges: m.ranges, choice: m.choice})
		m.ranges, m.choice = c.ranges, c.choice
		return m.refresh(models.OriginUserMenuEdit)
	}); applyErr != nil {
		return applyErr
	}
	return err
}

// CanUndo reports whether there is an edit to undo.
func (m *Model) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history.undo) > 0
}

// CanRedo reports whether there is an edit to redo.
func (m *Model) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history.redo) > 0
}
