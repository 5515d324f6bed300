// Package main provides the CLI entry point for rangechart.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ukaji3/rangechart-go/internal/config"
	"github.com/ukaji3/rangechart-go/internal/logging"
	"github.com/ukaji3/rangechart-go/internal/metrics"
	"github.com/ukaji3/rangechart-go/internal/printers"
	"github.com/ukaji3/rangechart-go/internal/scenario"
	"github.com/ukaji3/rangechart-go/pkg/rangechart"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/events"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/export"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/models"
	"github.com/ukaji3/rangechart-go/pkg/rangechart/output"
)

var (
	sheet       string
	area        string
	rangeRefs   []string
	fromChart   int
	chartType   string
	width       int
	height      int
	aggregate   bool
	async       bool
	format      string
	pretty      bool
	maxRows     int
	outputPath  string
	exportPath  string
	showMetrics bool
	logLevel    string
	logFormat   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rangechart",
		Short: "Chart cell ranges of Excel sheets",
		Long: `rangechart charts cell ranges of an Excel sheet: it derives the category
and value columns from the selected ranges, keeps them in sync with column
menu edits and renders the resulting chart data.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "", "Sheet to chart (default: first sheet)")
	rootCmd.PersistentFlags().StringVar(&area, "area", "", "Table area including the header row, e.g. A1:F20 (default: detected)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")

	showCmd := &cobra.Command{
		Use:   "show [input.xlsx]",
		Short: "Print the chart built from the selected ranges",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	addChartFlags(showCmd)
	showCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	showCmd.Flags().StringVar(&exportPath, "export", "", "Write the chart data and a native chart to this xlsx file")

	replayCmd := &cobra.Command{
		Use:   "replay [input.xlsx] [script.yaml]",
		Short: "Replay scripted column menu and grid events, printing the chart after each step",
		Args:  cobra.ExactArgs(2),
		RunE:  runReplay,
	}
	addChartFlags(replayCmd)

	columnsCmd := &cobra.Command{
		Use:   "columns [input.xlsx]",
		Short: "List the table columns and their chart roles",
		Args:  cobra.ExactArgs(1),
		RunE:  runColumns,
	}
	columnsCmd.Flags().StringVar(&format, "format", "table", "Output format: table, json")
	columnsCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(showCmd, replayCmd, columnsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&rangeRefs, "range", nil, "Initial range as an A1 reference or defined name (repeatable)")
	cmd.Flags().IntVar(&fromChart, "from-chart", -1, "Seed ranges from the series of the sheet's Nth chart (0-based)")
	cmd.Flags().StringVar(&chartType, "type", "", "Chart type, e.g. groupedColumn, line, pie")
	cmd.Flags().IntVar(&width, "width", 0, "Chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Chart height in pixels")
	cmd.Flags().BoolVar(&aggregate, "aggregate", false, "Group rows sharing a category value")
	cmd.Flags().BoolVar(&async, "async", false, "Query chart data in the background")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().IntVar(&maxRows, "max-rows", 20, "Maximum number of data rows printed in table format (0: all)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print chart model metrics when done")
}

// session is a loaded workbook and the chart model built over it.
type session struct {
	wb      *rangechart.Workbook
	model   *rangechart.Model
	bus     *events.Bus
	reg     *prometheus.Registry
	logger  *slog.Logger
	printer *printers.PrettyPrint
}

func openSession(cmd *cobra.Command, inputPath string) (*session, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", inputPath)
	}
	if format != "table" && format != "json" {
		return nil, fmt.Errorf("invalid format: %s (must be table or json)", format)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, cfg.LogFormat)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	wb, err := rangechart.LoadWorkbook(inputPath, rangechart.LoadOptions{Sheet: sheet, Area: area})
	if err != nil {
		return nil, fmt.Errorf("loading workbook: %w", err)
	}
	ranges, err := initialRanges(wb)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus()
	model, err := wb.NewModel(ranges,
		rangechart.WithOptions(opts),
		rangechart.WithBus(bus),
		rangechart.WithLogger(logger),
		rangechart.WithHooks(collector.Hooks(rangechart.Hooks{})),
		rangechart.WithAsyncFetch(cfg.Async),
		rangechart.WithContext(cmd.Context()),
	)
	if err != nil {
		return nil, err
	}
	model.Wait()

	printer := printers.New()
	printer.MaxRows = maxRows
	return &session{wb: wb, model: model, bus: bus, reg: reg, logger: logger, printer: printer}, nil
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("type") {
		cfg.ChartType = chartType
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("aggregate") {
		cfg.Aggregate = aggregate
	}
	if flags.Changed("async") {
		cfg.Async = async
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
}

func initialRanges(wb *rangechart.Workbook) ([]models.CellRange, error) {
	switch {
	case len(rangeRefs) > 0:
		return wb.Ranges(rangeRefs...)
	case fromChart >= 0:
		return wb.ChartRanges(fromChart)
	}
	return wb.DefaultRanges()
}

func (s *session) close() {
	if err := s.model.Destroy(); err != nil {
		s.logger.Warn("closing chart model", "error", err)
	}
	_ = s.bus.Close()
}

func (s *session) print(snap *rangechart.Snapshot) error {
	if format == "json" {
		data, err := output.ToJSON(snap, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	s.printer.Chart(snap)
	return nil
}

func (s *session) printMetrics() error {
	if !showMetrics {
		return nil
	}
	families, err := s.reg.Gather()
	if err != nil {
		return err
	}
	s.printer.Title("Metrics")
	s.printer.Metrics(families)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	snap, err := s.model.Snapshot()
	if err != nil {
		return err
	}

	if outputPath != "" {
		data, err := output.ToJSON(snap, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if err := s.print(snap); err != nil {
		return err
	}

	if exportPath != "" {
		title := s.wb.Sheet
		if err := export.WriteFile(exportPath, snap, title); err != nil {
			return fmt.Errorf("failed to export chart: %w", err)
		}
		s.logger.Info("chart exported", "path", exportPath)
	}
	return s.printMetrics()
}

func runReplay(cmd *cobra.Command, args []string) error {
	script, err := scenario.Load(args[1])
	if err != nil {
		return err
	}
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	initial, err := s.model.Snapshot()
	if err != nil {
		return err
	}
	if format == "table" {
		s.printer.Title("Initial state")
	}
	if err := s.print(initial); err != nil {
		return err
	}

	env := scenario.Env{Workbook: s.wb, Model: s.model, Bus: s.bus}
	err = scenario.Run(ctx, script, env, func(i int, step scenario.Step, snap *rangechart.Snapshot) error {
		if format == "table" {
			s.printer.Title(fmt.Sprintf("Step %d: %s", i+1, step))
		}
		return s.print(snap)
	})
	if err != nil {
		return err
	}
	return s.printMetrics()
}

func runColumns(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", args[0])
	}
	wb, err := rangechart.LoadWorkbook(args[0], rangechart.LoadOptions{Sheet: sheet, Area: area})
	if err != nil {
		return fmt.Errorf("loading workbook: %w", err)
	}

	switch format {
	case "json":
		data, err := output.ToJSON(wb.Table.Columns, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Println(string(data))
	case "table":
		pp := printers.New()
		pp.Title(fmt.Sprintf("%s (header row %d, %d rows)", wb.Sheet, wb.Table.HeaderRow, len(wb.Table.Rows)))
		pp.Columns(wb.Table.Columns)
		if len(wb.Names) > 0 {
			pp.Title("Defined names")
			pp.Names(wb.Names)
		}
	default:
		return fmt.Errorf("invalid format: %s (must be table or json)", format)
	}
	return nil
}
