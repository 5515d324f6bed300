package models

import (
	"errors"
	"fmt"
	"slices"
)

// ErrRangeNotFound indicates no range holds the column being removed.
var ErrRangeNotFound = errors.New("no range contains column")

// Adjacency answers display-order neighbour queries for columns.
type Adjacency interface {
	// ColumnBefore returns the id of the displayed column immediately before colID.
	ColumnBefore(colID string) (string, bool)
	// ColumnAfter returns the id of the displayed column immediately after colID.
	ColumnAfter(colID string) (string, bool)
}

// IDFunc produces ids for newly created ranges.
type IDFunc func() string

// EditKind names one transition of a RangeSet.
type EditKind string

const (
	EditInsertAtStart EditKind = "insert_at_start"
	EditInsertAtEnd   EditKind = "insert_at_end"
	EditMergeStart    EditKind = "merge_start"
	EditMergeEnd      EditKind = "merge_end"
	EditRemoveRange   EditKind = "remove_range"
	EditShrink        EditKind = "shrink"
	EditSplit         EditKind = "split"
)

// Edit describes how a RangeSet transition changed the ranges.
type Edit struct {
	// Kind is the transition applied.
	Kind EditKind `json:"kind"`
	// ColID is the column that was inserted or removed.
	ColID string `json:"col_id"`
	// RangeID is the range that was created, extended, shrunk or removed.
	RangeID string `json:"range_id"`
	// Produced lists ranges created by a split.
	Produced []string `json:"produced,omitempty"`
}

// RangeSet is an ordered collection of cell ranges. Every edit returns a new
// RangeSet; the receiver is never modified.
type RangeSet struct {
	ranges []CellRange
}

// NewRangeSet builds a RangeSet from ranges, dropping ranges without columns.
func NewRangeSet(ranges ...CellRange) RangeSet {
	out := make([]CellRange, 0, len(ranges))
	for _, r := range ranges {
		if len(r.Columns) == 0 {
			continue
		}
		out = append(out, r.Clone())
	}
	return RangeSet{ranges: out}
}

// Len returns the number of ranges.
func (s RangeSet) Len() int {
	return len(s.ranges)
}

// At returns a copy of the i-th range.
func (s RangeSet) At(i int) CellRange {
	return s.ranges[i].Clone()
}

// All returns copies of every range in order.
func (s RangeSet) All() []CellRange {
	out := make([]CellRange, len(s.ranges))
	for i, r := range s.ranges {
		out[i] = r.Clone()
	}
	return out
}

// Latest returns the most recently added range.
func (s RangeSet) Latest() (CellRange, bool) {
	if len(s.ranges) == 0 {
		return CellRange{}, false
	}
	return s.ranges[len(s.ranges)-1].Clone(), true
}

// Columns returns the union of all range columns, in range order.
func (s RangeSet) Columns() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range s.ranges {
		for _, c := range r.Columns {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// InValueRange reports whether colID appears in a value-tagged range.
func (s RangeSet) InValueRange(colID string) bool {
	for _, r := range s.ranges {
		if r.Mode == ModeValue && r.Contains(colID) {
			return true
		}
	}
	return false
}

// Equal reports whether both sets hold equal ranges in the same order.
// Range ids are ignored.
func (s RangeSet) Equal(o RangeSet) bool {
	return slices.EqualFunc(s.ranges, o.ranges, CellRange.Equal)
}

// InsertColumn adds colID to the set.
//
// Dimension columns (atStart) always get a standalone category range placed
// first. Value columns merge into the first value range, in set order, whose
// first column is displayed right after colID or whose last column is
// displayed right before it. Without such a range a standalone value range is
// appended. Standalone ranges copy the row bounds of ref.
func (s RangeSet) InsertColumn(colID string, atStart bool, adj Adjacency, ref CellRange, newID IDFunc) (RangeSet, Edit) {
	if !atStart && adj != nil {
		for i, r := range s.ranges {
			if r.Mode != ModeValue {
				continue
			}
			if before, ok := adj.ColumnBefore(r.First()); ok && before == colID {
				merged := r.withColumns(r.ID, append([]string{colID}, r.Columns...))
				merged.StartColumn = colID
				return s.replace(i, merged), Edit{Kind: EditMergeStart, ColID: colID, RangeID: r.ID}
			}
			if after, ok := adj.ColumnAfter(r.Last()); ok && after == colID {
				merged := r.withColumns(r.ID, append(slices.Clone(r.Columns), colID))
				return s.replace(i, merged), Edit{Kind: EditMergeEnd, ColID: colID, RangeID: r.ID}
			}
		}
	}

	mode := ModeValue
	if atStart {
		mode = ModeCategory
	}
	nr := CellRange{
		ID:          newID(),
		StartRow:    ref.StartRow,
		EndRow:      ref.EndRow,
		Columns:     []string{colID},
		StartColumn: colID,
		Mode:        mode,
	}
	if atStart {
		return RangeSet{ranges: append([]CellRange{nr}, s.ranges...)}, Edit{Kind: EditInsertAtStart, ColID: colID, RangeID: nr.ID}
	}
	return RangeSet{ranges: append(slices.Clone(s.ranges), nr)}, Edit{Kind: EditInsertAtEnd, ColID: colID, RangeID: nr.ID}
}

// RemoveColumn takes colID out of every range holding it.
//
// A single-column range is dropped. A two-column range keeps its other
// column. Removing an interior column of a wider range splits it in two,
// both halves keeping the original row bounds and mode, in the original's
// position. Removing an edge column shrinks the range in place.
func (s RangeSet) RemoveColumn(colID string, newID IDFunc) (RangeSet, []Edit, error) {
	var edits []Edit
	out := make([]CellRange, 0, len(s.ranges)+1)
	for _, r := range s.ranges {
		idx := slices.Index(r.Columns, colID)
		if idx < 0 {
			out = append(out, r)
			continue
		}
		n := len(r.Columns)
		switch {
		case n == 1:
			edits = append(edits, Edit{Kind: EditRemoveRange, ColID: colID, RangeID: r.ID})
		case n > 2 && idx > 0 && idx < n-1:
			head := r.withColumns(newID(), r.Columns[:idx])
			tail := r.withColumns(newID(), r.Columns[idx+1:])
			out = append(out, head, tail)
			edits = append(edits, Edit{Kind: EditSplit, ColID: colID, RangeID: r.ID, Produced: []string{head.ID, tail.ID}})
		default:
			cols := slices.Delete(slices.Clone(r.Columns), idx, idx+1)
			out = append(out, r.withColumns(r.ID, cols))
			edits = append(edits, Edit{Kind: EditShrink, ColID: colID, RangeID: r.ID})
		}
	}
	if len(edits) == 0 {
		return s, nil, fmt.Errorf("%w %q", ErrRangeNotFound, colID)
	}
	return RangeSet{ranges: out}, edits, nil
}

// RemoveDimensionRanges drops the category range and any range made up only
// of dimension columns.
func (s RangeSet) RemoveDimensionRanges(isDimension func(colID string) bool) (RangeSet, []Edit) {
	var edits []Edit
	out := make([]CellRange, 0, len(s.ranges))
	for _, r := range s.ranges {
		if r.Mode == ModeCategory || allOf(r.Columns, isDimension) {
			edits = append(edits, Edit{Kind: EditRemoveRange, ColID: r.First(), RangeID: r.ID})
			continue
		}
		out = append(out, r)
	}
	return RangeSet{ranges: out}, edits
}

func (s RangeSet) replace(i int, r CellRange) RangeSet {
	out := slices.Clone(s.ranges)
	out[i] = r
	return RangeSet{ranges: out}
}

func allOf(ids []string, pred func(string) bool) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !pred(id) {
			return false
		}
	}
	return true
}
