// Package config loads rangechart defaults from .rangechart.yaml and
// RANGECHART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
)

// EnvPrefix is the prefix of environment overrides, e.g. RANGECHART_WIDTH.
const EnvPrefix = "RANGECHART"

// Config holds command defaults.
type Config struct {
	ChartType string `mapstructure:"chart_type"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Tooltips  bool   `mapstructure:"tooltips"`
	Aggregate bool   `mapstructure:"aggregate"`
	Async     bool   `mapstructure:"async"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// Load reads the config file from $RANGECHART_CONFIG_PATH or the working
// directory. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	def := rangechart.DefaultOptions()
	v.SetDefault("chart_type", string(def.ChartType))
	v.SetDefault("width", def.Width)
	v.SetDefault("height", def.Height)
	v.SetDefault("tooltips", def.ShowTooltips)
	v.SetDefault("aggregate", def.Aggregate)
	v.SetDefault("async", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	v.SetConfigName(".rangechart") // .yaml is implicit
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if override := os.Getenv(EnvPrefix + "_CONFIG_PATH"); override != "" {
		path, err := homedir.Expand(override)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		v.AddConfigPath(path)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	return c, nil
}

// Options converts the config into chart options.
func (c *Config) Options() (rangechart.Options, error) {
	t, err := models.ParseChartType(c.ChartType)
	if err != nil {
		return rangechart.Options{}, err
	}
	opts := rangechart.Options{
		ChartType:    t,
		Width:        c.Width,
		Height:       c.Height,
		ShowTooltips: c.Tooltips,
		Aggregate:    c.Aggregate,
	}
	if err := opts.Validate(); err != nil {
		return rangechart.Options{}, err
	}
	return opts, nil
}
