package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RANGECHART_CONFIG_PATH", t.TempDir())
	chdir(t, t.TempDir())

	c, err := Load()
	require.NoError(t, err)

	assert.Empty(t, c.File)
	assert.Equal(t, "groupedColumn", c.ChartType)
	assert.Equal(t, 800, c.Width)
	assert.Equal(t, 400, c.Height)
	assert.True(t, c.Tooltips)
	assert.Equal(t, "warn", c.LogLevel)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, models.GroupedColumn, opts.ChartType)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "chart_type: line\nwidth: 640\naggregate: true\nlog_format: json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".rangechart.yaml"), []byte(yaml), 0o644))
	t.Setenv("RANGECHART_CONFIG_PATH", dir)
	t.Setenv("RANGECHART_HEIGHT", "240")
	chdir(t, t.TempDir())

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ".rangechart.yaml"), c.File)
	assert.Equal(t, "line", c.ChartType)
	assert.Equal(t, 640, c.Width)
	assert.Equal(t, 240, c.Height)
	assert.True(t, c.Aggregate)
	assert.Equal(t, "json", c.LogFormat)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, models.Line, opts.ChartType)
	assert.True(t, opts.Aggregate)
}

func TestOptionsRejectsUnknownChartType(t *testing.T) {
	c := &Config{ChartType: "radar", Width: 1, Height: 1}

	_, err := c.Options()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
