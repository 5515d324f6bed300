// Package scenario replays scripted column menu and grid events against a
// chart model.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// Actions understood by Run.
const (
	ActionSelect   = "select"
	ActionDeselect = "deselect"
	ActionHide     = "hide"
	ActionShow     = "show"
	ActionSetType  = "set-type"
	ActionSetSize  = "set-size"
	ActionRange    = "range"
	ActionEditCell = "edit-cell"
	ActionUndo     = "undo"
	ActionRedo     = "redo"
)

// Script is a named list of steps.
type Script struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one scripted event. Columns are named by id or display name.
type Step struct {
	Action  string   `yaml:"action" json:"action"`
	Column  string   `yaml:"column,omitempty" json:"column,omitempty"`
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	Type    string   `yaml:"type,omitempty" json:"type,omitempty"`
	Width   int      `yaml:"width,omitempty" json:"width,omitempty"`
	Height  int      `yaml:"height,omitempty" json:"height,omitempty"`
	// Ranges holds A1 references or defined names for the range action.
	Ranges []string `yaml:"ranges,omitempty" json:"ranges,omitempty"`
	// Row is the sheet row of the edited cell.
	Row   int `yaml:"row,omitempty" json:"row,omitempty"`
	Value any `yaml:"value,omitempty" json:"value,omitempty"`
}

func (s Step) String() string {
	switch s.Action {
	case ActionSelect, ActionDeselect:
		return s.Action + " " + s.Column
	case ActionHide, ActionShow:
		return s.Action + " " + strings.Join(s.Columns, ",")
	case ActionSetType:
		return s.Action + " " + s.Type
	case ActionSetSize:
		return fmt.Sprintf("%s %dx%d", s.Action, s.Width, s.Height)
	case ActionRange:
		return s.Action + " " + strings.Join(s.Ranges, ",")
	case ActionEditCell:
		return fmt.Sprintf("%s %s%d=%v", s.Action, s.Column, s.Row, s.Value)
	}
	return s.Action
}

// Load reads a script file. Files ending in .json are read as JSON, anything
// else as YAML.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var s Script
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step carries the arguments its action needs.
func (s *Script) Validate() error {
	for i, step := range s.Steps {
		var missing string
		switch step.Action {
		case ActionSelect, ActionDeselect:
			if step.Column == "" {
				missing = "column"
			}
		case ActionHide, ActionShow:
			if len(step.Columns) == 0 {
				missing = "columns"
			}
		case ActionSetType:
			if _, err := models.ParseChartType(step.Type); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case ActionSetSize:
			if step.Width <= 0 && step.Height <= 0 {
				missing = "width or height"
			}
		case ActionRange:
			if len(step.Ranges) == 0 {
				missing = "ranges"
			}
		case ActionEditCell:
			if step.Column == "" || step.Row <= 0 {
				missing = "column and row"
			}
		case ActionUndo, ActionRedo:
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
		if missing != "" {
			return fmt.Errorf("step %d (%s): %s required", i+1, step.Action, missing)
		}
	}
	return nil
}

// Env is what a script runs against.
type Env struct {
	Workbook *rangechart.Workbook
	Model    *rangechart.Model
	// Bus, when set, carries grid events to the model. The model must be
	// subscribed to it.
	Bus *events.Bus
}

// StepFunc observes the model after a step has been applied.
type StepFunc func(i int, step Step, snap *rangechart.Snapshot) error

// Run applies the script's steps in order. after, if not nil, is called once
// pending queries of each step have finished.
func Run(ctx context.Context, s *Script, env Env, after StepFunc) error {
	m := env.Model
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := env.apply(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
		m.Wait()
		if after == nil {
			continue
		}
		snap, err := m.Snapshot()
		if err != nil {
			return err
		}
		if err := after(i, step, snap); err != nil {
			return err
		}
	}
	return nil
}

// notify delivers a grid event on the bus, or calls the model directly when
// there is no bus.
func (env Env) notify(ctx context.Context, topic string, event any, direct func() error) error {
	if env.Bus == nil {
		return direct()
	}
	return env.Bus.Publish(ctx, topic, event)
}

func (env Env) apply(ctx context.Context, step Step) error {
	wb, m := env.Workbook, env.Model
	switch step.Action {
	case ActionSelect, ActionDeselect:
		cs := models.ColState{Selected: step.Action == ActionSelect}
		if strings.EqualFold(step.Column, models.NoCategoryLabel) {
			cs.Placeholder = true
		} else {
			id, err := columnID(wb, step.Column)
			if err != nil {
				return err
			}
			cs.ColID = id
		}
		return m.Update(cs)

	case ActionHide, ActionShow:
		ids := make([]string, 0, len(step.Columns))
		for _, name := range step.Columns {
			id, err := columnID(wb, name)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		visible := step.Action == ActionShow
		changed, err := wb.Directory.SetVisible(ids, visible)
		if err != nil || !changed {
			return err
		}
		return env.notify(ctx, events.TopicColumnVisibilityChanged,
			events.ColumnVisibilityChanged{ColIDs: ids, Visible: visible},
			m.OnColumnVisibilityChanged)

	case ActionSetType:
		return m.SetChartType(models.ChartType(step.Type))

	case ActionSetSize:
		if err := m.SetWidth(step.Width); err != nil {
			return err
		}
		return m.SetHeight(step.Height)

	case ActionRange:
		ranges, err := wb.Ranges(step.Ranges...)
		if err != nil {
			return err
		}
		return env.notify(ctx, events.TopicRangeSelectionChanged,
			events.RangeSelectionChanged{Ranges: ranges},
			func() error { return m.OnRangeSelectionChanged(ranges) })

	case ActionEditCell:
		id, err := columnID(wb, step.Column)
		if err != nil {
			return err
		}
		row := wb.Table.DataRowIndex(step.Row)
		if err := wb.Source.SetCell(row, id, step.Value); err != nil {
			return err
		}
		return env.notify(ctx, events.TopicCellValueChanged,
			events.CellValueChanged{ColID: id, Row: row, Value: step.Value},
			m.OnCellValueChanged)

	case ActionUndo:
		return m.Undo()

	case ActionRedo:
		return m.Redo()
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

func columnID(wb *rangechart.Workbook, name string) (string, error) {
	col, ok := wb.Directory.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", rangechart.ErrUnknownColumn, name)
	}
	return col.ID, nil
}
