// Package grid provides an in-memory column directory for chart models.
package grid

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Directory is the authoritative list of grid columns, in display order, with
// their visibility.
type Directory struct {
	mu      sync.RWMutex
	columns []models.Column
	hidden  map[string]bool
}

// NewDirectory creates a directory. Columns flagged Hidden start out hidden.
func NewDirectory(cols ...models.Column) *Directory {
	d := &Directory{
		columns: slices.Clone(cols),
		hidden:  make(map[string]bool),
	}
	for _, c := range cols {
		if c.Hidden {
			d.hidden[c.ID] = true
		}
	}
	return d
}

// DisplayedColumns returns the visible columns in display order.
func (d *Directory) DisplayedColumns() []models.Column {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.displayed()
}

func (d *Directory) displayed() []models.Column {
	out := make([]models.Column, 0, len(d.columns))
	for _, c := range d.columns {
		if !d.hidden[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the column with the given id, visible or not.
func (d *Directory) Column(colID string) (models.Column, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.columns {
		if c.ID == colID {
			return c, true
		}
	}
	return models.Column{}, false
}

// Lookup finds a column by id or, failing that, by case-insensitive display name.
func (d *Directory) Lookup(key string) (models.Column, bool) {
	if c, ok := d.Column(key); ok {
		return c, true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.columns {
		if strings.EqualFold(c.DisplayName, key) {
			return c, true
		}
	}
	return models.Column{}, false
}

// ColumnBefore returns the displayed column immediately before colID.
func (d *Directory) ColumnBefore(colID string) (string, bool) {
	return d.neighbour(colID, -1)
}

// ColumnAfter returns the displayed column immediately after colID.
func (d *Directory) ColumnAfter(colID string) (string, bool) {
	return d.neighbour(colID, 1)
}

func (d *Directory) neighbour(colID string, step int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	shown := d.displayed()
	i := slices.IndexFunc(shown, func(c models.Column) bool { return c.ID == colID })
	if i < 0 {
		return "", false
	}
	j := i + step
	if j < 0 || j >= len(shown) {
		return "", false
	}
	return shown[j].ID, true
}

// SetVisible shows or hides columns. It reports whether anything changed.
func (d *Directory) SetVisible(colIDs []string, visible bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	changed := false
	for _, id := range colIDs {
		if !slices.ContainsFunc(d.columns, func(c models.Column) bool { return c.ID == id }) {
			return changed, fmt.Errorf("unknown column %q", id)
		}
		if d.hidden[id] == !visible {
			continue
		}
		changed = true
		if visible {
			delete(d.hidden, id)
		} else {
			d.hidden[id] = true
		}
	}
	return changed, nil
}

// Move places colID at index toIndex of the full column order.
func (d *Directory) Move(colID string, toIndex int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(d.columns, func(c models.Column) bool { return c.ID == colID })
	if i < 0 {
		return fmt.Errorf("unknown column %q", colID)
	}
	if toIndex < 0 || toIndex >= len(d.columns) {
		return fmt.Errorf("index %d out of range", toIndex)
	}
	col := d.columns[i]
	d.columns = slices.Delete(d.columns, i, i+1)
	d.columns = slices.Insert(d.columns, toIndex, col)
	return nil
}
