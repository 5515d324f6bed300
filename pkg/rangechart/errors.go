package rangechart

import (
	"errors"
	"fmt"
)

// ErrNoValueColumns indicates no value-eligible column is displayed.
var ErrNoValueColumns = errors.New("no visible value column")

// ErrRangeDesync indicates column state and ranges disagree about a column.
var ErrRangeDesync = errors.New("column state and ranges out of sync")

// ErrDestroyed is returned by a model after Destroy.
var ErrDestroyed = errors.New("chart model destroyed")

// ErrInvalidRange indicates a range that cannot seed a chart.
var ErrInvalidRange = errors.New("invalid range")

// ErrUnknownColumn indicates a column id absent from the directory.
var ErrUnknownColumn = errors.New("unknown column")

// ErrNothingToUndo is returned by Undo with an empty history.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned by Redo after the latest edit.
var ErrNothingToRedo = errors.New("nothing to redo")

// RangeEditError represents a failed column menu edit.
type RangeEditError struct {
	ColID string
	Edit  string // "select", "deselect"
	Err   error
}

func (e *RangeEditError) Error() string {
	return fmt.Sprintf("%s column %q: %v", e.Edit, e.ColID, e.Err)
}

func (e *RangeEditError) Unwrap() error {
	return e.Err
}

// NewRangeEditError creates a new RangeEditError.
func NewRangeEditError(colID, edit string, err error) *RangeEditError {
	return &RangeEditError{
		ColID: colID,
		Edit:  edit,
		Err:   err,
	}
}
