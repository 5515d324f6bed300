package models

// NoCategoryLabel is the display name of the "no category" dimension entry.
const NoCategoryLabel = "(None)"

// CategoryKind distinguishes a real category column from no category.
type CategoryKind string

const (
	CategoryNone   CategoryKind = "none"
	CategoryColumn CategoryKind = "column"
)

// Category is the chart's grouping axis: either a real column or none.
type Category struct {
	Kind  CategoryKind `json:"kind"`
	ColID string       `json:"col_id,omitempty"`
}

// NoCategory returns the category used when no dimension is charted.
func NoCategory() Category {
	return Category{Kind: CategoryNone}
}

// RealColumn returns a category backed by the given column.
func RealColumn(colID string) Category {
	if colID == "" {
		return NoCategory()
	}
	return Category{Kind: CategoryColumn, ColID: colID}
}

// ColumnID returns the backing column id, if any.
func (c Category) ColumnID() (string, bool) {
	if c.Kind != CategoryColumn {
		return "", false
	}
	return c.ColID, true
}

// IsNone reports whether no category column is selected.
func (c Category) IsNone() bool {
	return c.Kind != CategoryColumn
}

func (c Category) String() string {
	if c.IsNone() {
		return NoCategoryLabel
	}
	return c.ColID
}

// ColState is the per-column selection state offered to the column menu.
type ColState struct {
	ColID       string `json:"col_id"`
	DisplayName string `json:"display_name"`
	Selected    bool   `json:"selected"`
	// Placeholder marks the synthetic "(None)" dimension entry.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Field is a selected value column as handed to chart consumers.
type Field struct {
	ColID       string `json:"col_id"`
	DisplayName string `json:"display_name"`
}

// ColumnState is the derived selection state of every chartable column.
type ColumnState struct {
	// Dimensions holds one entry per displayed dimension column.
	Dimensions []ColState `json:"dimensions"`
	// Values holds one entry per displayed value column.
	Values []ColState `json:"values"`
	// Category is the single selected dimension.
	Category Category `json:"category"`
}

// Placeholder returns the synthetic "(None)" entry for the current category.
func (s ColumnState) Placeholder() ColState {
	return ColState{
		DisplayName: NoCategoryLabel,
		Selected:    s.Category.IsNone(),
		Placeholder: true,
	}
}

// HasDimension reports whether colID is a displayed dimension column.
func (s ColumnState) HasDimension(colID string) bool {
	return indexOf(s.Dimensions, colID) >= 0
}

// HasValue reports whether colID is a displayed value column.
func (s ColumnState) HasValue(colID string) bool {
	return indexOf(s.Values, colID) >= 0
}

// SelectedFields returns the selected value columns in display order.
func (s ColumnState) SelectedFields() []Field {
	var out []Field
	for _, cs := range s.Values {
		if cs.Selected {
			out = append(out, Field{ColID: cs.ColID, DisplayName: cs.DisplayName})
		}
	}
	return out
}

// DeriveColumnState classifies the displayed columns and computes which are
// selected for the given ranges.
//
// A value column is selected when it appears in a value range. The category is
// choice when it is set and still displayed as a dimension (or is none);
// otherwise it is the first displayed dimension column found in range order,
// falling back to no category.
func DeriveColumnState(displayed []Column, ranges RangeSet, choice *Category) ColumnState {
	var st ColumnState
	for _, col := range displayed {
		switch {
		case col.IsDimension():
			st.Dimensions = append(st.Dimensions, ColState{ColID: col.ID, DisplayName: col.Label()})
		case col.IsValue():
			st.Values = append(st.Values, ColState{
				ColID:       col.ID,
				DisplayName: col.Label(),
				Selected:    ranges.InValueRange(col.ID),
			})
		}
	}

	st.Category = NoCategory()
	switch {
	case choice != nil && choice.IsNone():
	case choice != nil && st.HasDimension(choice.ColID):
		st.Category = *choice
	default:
		for _, id := range ranges.Columns() {
			if st.HasDimension(id) {
				st.Category = RealColumn(id)
				break
			}
		}
	}
	if id, ok := st.Category.ColumnID(); ok {
		st.Dimensions[indexOf(st.Dimensions, id)].Selected = true
	}
	return st
}

func indexOf(states []ColState, colID string) int {
	for i, cs := range states {
		if cs.ColID == colID {
			return i
		}
	}
	return -1
}
