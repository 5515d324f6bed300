package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

const medalsScript = `
name: medals
steps:
  - action: deselect
    column: Silver
  - action: hide
    columns: [Gold]
  - action: show
    columns: [B]
  - action: set-type
    type: line
  - action: set-size
    width: 640
  - action: edit-cell
    column: Gold
    row: 2
    value: 20
  - action: undo
  - action: redo
  - action: range
    ranges: ["A1:B3"]
  - action: select
    column: (None)
  - action: undo
`

func loadMedals(t *testing.T, opts ...rangechart.Option) (*rangechart.Workbook, *rangechart.Model) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range [][]any{
		{"Country", "Gold", "Silver", "Bronze"},
		{"Norway", 16, 8, 13},
		{"Germany", 12, 10, 5},
		{"Canada", 11, 8, 10},
	} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "medals.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := rangechart.LoadWorkbook(path, rangechart.LoadOptions{})
	require.NoError(t, err)
	ranges, err := wb.DefaultRanges()
	require.NoError(t, err)
	m, err := wb.NewModel(ranges, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Destroy() })
	return wb, m
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fieldIDs(fields []models.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.ColID
	}
	return out
}

func rangeColumns(ranges []models.CellRange) [][]string {
	out := make([][]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.Columns
	}
	return out
}

func TestRun(t *testing.T) {
	script, err := Load(writeScript(t, "medals.yaml", medalsScript))
	require.NoError(t, err)
	require.Len(t, script.Steps, 11)

	wb, m := loadMedals(t)
	var snaps []*rangechart.Snapshot
	err = Run(context.Background(), script, Env{Workbook: wb, Model: m}, func(i int, step Step, snap *rangechart.Snapshot) error {
		assert.Len(t, snaps, i)
		snaps = append(snaps, snap)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, snaps, 11)

	// deselect Silver
	assert.Equal(t, [][]string{{"A", "B"}, {"D"}}, rangeColumns(snaps[0].Ranges))
	assert.Equal(t, []string{"B", "D"}, fieldIDs(snaps[0].Fields))
	// hide Gold, show it again
	assert.Equal(t, []string{"D"}, fieldIDs(snaps[1].Fields))
	assert.Equal(t, []string{"B", "D"}, fieldIDs(snaps[2].Fields))
	// set-type, set-size
	assert.Equal(t, models.Line, snaps[3].ChartType)
	assert.Equal(t, 640, snaps[4].Width)
	assert.Equal(t, 400, snaps[4].Height)
	// edit-cell
	assert.Equal(t, 20.0, snaps[5].Data.Rows[0]["B"])
	// undo, redo
	assert.Equal(t, [][]string{{"A", "B", "C", "D"}}, rangeColumns(snaps[6].Ranges))
	assert.Equal(t, [][]string{{"A", "B"}, {"D"}}, rangeColumns(snaps[7].Ranges))
	// range
	assert.Equal(t, [][]string{{"A", "B"}}, rangeColumns(snaps[8].Ranges))
	assert.Equal(t, 2, snaps[8].Data.Len())
	// select (None), undo
	assert.True(t, snaps[9].Category.IsNone())
	assert.Equal(t, [][]string{{"B"}}, rangeColumns(snaps[9].Ranges))
	assert.Equal(t, models.RowNumberKey, snaps[9].Data.CategoryKey)
	assert.Equal(t, models.RealColumn("A"), snaps[10].Category)
	assert.Equal(t, [][]string{{"A", "B"}}, rangeColumns(snaps[10].Ranges))
}

func TestRunDeliversGridEventsOnBus(t *testing.T) {
	bus := events.NewBus()
	wb, m := loadMedals(t, rangechart.WithBus(bus))

	var origins []models.Origin
	bus.Subscribe(events.TopicChartModelUpdated, func(_ context.Context, event any) {
		origins = append(origins, event.(events.ChartModelUpdated).Origin)
	})

	script := &Script{Steps: []Step{
		{Action: ActionHide, Columns: []string{"Gold"}},
		{Action: ActionRange, Ranges: []string{"A1:C3"}},
		{Action: ActionEditCell, Column: "Silver", Row: 3, Value: 4},
	}}
	var last *rangechart.Snapshot
	err := Run(context.Background(), script, Env{Workbook: wb, Model: m, Bus: bus}, func(_ int, _ Step, snap *rangechart.Snapshot) error {
		last = snap
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []models.Origin{
		models.OriginExternalModelUpdate,
		models.OriginGridSelectionChange,
		models.OriginExternalModelUpdate,
	}, origins)
	assert.Equal(t, []string{"C"}, fieldIDs(last.Fields))
	assert.Equal(t, 4.0, last.Data.Rows[1]["C"])
}

func TestRunStopsAtFailingStep(t *testing.T) {
	wb, m := loadMedals(t)
	script := &Script{Steps: []Step{
		{Action: ActionUndo},
	}}
	err := Run(context.Background(), script, Env{Workbook: wb, Model: m}, nil)
	assert.ErrorIs(t, err, rangechart.ErrNothingToUndo)

	script = &Script{Steps: []Step{
		{Action: ActionSelect, Column: "Medals"},
	}}
	err = Run(context.Background(), script, Env{Workbook: wb, Model: m}, nil)
	assert.ErrorIs(t, err, rangechart.ErrUnknownColumn)
}

func TestRunHonoursContext(t *testing.T) {
	wb, m := loadMedals(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, &Script{Steps: []Step{{Action: ActionUndo}}}, Env{Workbook: wb, Model: m}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadJSON(t *testing.T) {
	script, err := Load(writeScript(t, "steps.json", `{"name":"json","steps":[{"action":"set-type","type":"pie"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "json", script.Name)
	assert.Equal(t, "set-type pie", script.Steps[0].String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"unknown action", Step{Action: "explode"}},
		{"select without column", Step{Action: ActionSelect}},
		{"hide without columns", Step{Action: ActionHide}},
		{"bad chart type", Step{Action: ActionSetType, Type: "radar"}},
		{"empty size", Step{Action: ActionSetSize}},
		{"range without refs", Step{Action: ActionRange}},
		{"edit without row", Step{Action: ActionEditCell, Column: "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Script{Steps: []Step{tt.step}}
			assert.Error(t, s.Validate())
		})
	}

	ok := &Script{Steps: []Step{{Action: ActionUndo}, {Action: ActionSetSize, Height: 10}}}
	assert.NoError(t, ok.Validate())
}
