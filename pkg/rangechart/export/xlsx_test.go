package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/parser"
)

func medalSnapshot() *rangechart.Snapshot {
	return &rangechart.Snapshot{
		ChartID:   "chart-1",
		ChartType: models.StackedBar,
		Width:     640,
		Height:    320,
		Category:  models.RealColumn("A"),
		Dimensions: []models.ColState{
			{DisplayName: models.NoCategoryLabel, Placeholder: true},
			{ColID: "A", DisplayName: "Country", Selected: true},
		},
		Fields: []models.Field{
			{ColID: "B", DisplayName: "Gold"},
			{ColID: "C", DisplayName: "Silver"},
		},
		Data: &models.ChartData{
			CategoryKey: "A",
			Fields:      []string{"B", "C"},
			Rows: []map[string]any{
				{"A": "Norway", "B": 16.0, "C": 8.0},
				{"A": "Germany", "B": 12.0, "C": 10.0},
			},
		},
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.xlsx")
	require.NoError(t, WriteFile(path, medalSnapshot(), "Medals"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DataSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Country", "Gold", "Silver"},
		{"Norway", "16", "8"},
		{"Germany", "12", "10"},
	}, rows)

	specs, err := parser.ExtractChartSpecs(path)
	require.NoError(t, err)
	charts := specs[DataSheet]
	require.Len(t, charts, 1)
	assert.Equal(t, models.StackedBar, charts[0].ChartType)
	assert.Equal(t, "Medals", charts[0].Title)
	require.Len(t, charts[0].Series, 2)
	assert.Equal(t, "'Chart Data'!$C$2:$C$3", charts[0].Series[1].ValueRange)
}

func TestBuildWithoutCategory(t *testing.T) {
	s := medalSnapshot()
	s.Category = models.NoCategory()
	s.Data.CategoryKey = models.RowNumberKey
	for i, row := range s.Data.Rows {
		row[models.RowNumberKey] = []string{"1", "2"}[i]
	}

	f, err := Build(s, "")
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(DataSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "#", v)
	v, err = f.GetCellValue(DataSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestBuildRejectsEmptyChart(t *testing.T) {
	s := medalSnapshot()
	s.Data = nil
	_, err := Build(s, "")
	assert.ErrorIs(t, err, ErrNoData)

	s = medalSnapshot()
	s.ChartType = "radar"
	_, err = Build(s, "")
	assert.Error(t, err)
}
