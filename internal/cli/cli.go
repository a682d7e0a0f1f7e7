package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/freetrail-races/internal/calendar"
	"github.com/pfrederiksen/freetrail-races/internal/config"
	"github.com/pfrederiksen/freetrail-races/internal/history"
	"github.com/pfrederiksen/freetrail-races/internal/logger"
	"github.com/pfrederiksen/freetrail-races/internal/race"
	"github.com/pfrederiksen/freetrail-races/internal/scraper"
	"github.com/pfrederiksen/freetrail-races/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagLogLevel string
	flagVerbose  bool

	flagURL     string
	flagOutput  string
	flagDebug   string
	flagTimeout time.Duration
	flagHistory string
	flagFormat  string

	flagCalendarOut  string
	flagCalendarName string
	flagSort         string

	flagRunsLimit int
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "freetrail-races",
		Short: "Scrape upcoming trail races from the Freetrail fantasy events page",
		Long: `Scrapes the Freetrail fantasy events page for upcoming trail races and
writes them to a JSON file ready for manual start-time completion.

Each scraped race carries a MANUAL_TIME_NEEDED_FROM placeholder holding the
listed date; fill in the real start time before feeding the file to a
calendar pipeline.`,
		RunE: runScrape,
	}

	// Define flags
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", def.LogLevel, "Log level: debug, info, warning or error")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Shorthand for --log-level debug")

	cmd.Flags().StringVar(&flagURL, "url", def.URL, "Events page URL to scrape")
	cmd.Flags().StringVar(&flagOutput, "output", def.OutputFile, "Results JSON file path")
	cmd.Flags().StringVar(&flagDebug, "debug-file", def.DebugFile, "Raw HTML dump file path")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", def.Timeout, "HTTP request timeout")
	cmd.Flags().StringVar(&flagHistory, "history", "", "SQLite run journal path (empty disables)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")

	cmd.AddCommand(newCalendarCmd())
	cmd.AddCommand(newRunsCmd())

	return cmd
}

// loadConfig loads the config file (if any) and applies explicit flag
// overrides on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.URL = flagURL
	}
	if flags.Changed("output") {
		cfg.OutputFile = flagOutput
	}
	if flags.Changed("debug-file") {
		cfg.DebugFile = flagDebug
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("history") {
		cfg.HistoryPath = flagHistory
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}

	return cfg, nil
}

// newLogger builds the run logger from config and verbosity flags. Logs go
// to the command's error stream so stdout stays clean for command output.
func newLogger(cfg config.Config, out io.Writer) *logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}

	log := logger.New(level, out)
	logger.SetDefault(log)
	return log
}

// runScrape is the main command logic: fetch the events page, extract race
// rows, and write the results file.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	log := newLogger(cfg, cmd.ErrOrStderr())
	metrics := logger.NewMetrics()

	// Initialize storage
	store, err := storage.New(cfg.OutputFile, cfg.DebugFile, log)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	// Initialize scraper with the storage layer as its debug sink
	sc := scraper.New(cfg.URL, cfg.Timeout, log)
	sc.SetDebugSink(store)
	sc.SetMetrics(metrics)

	log.Info("starting scrape", logger.Fields{"url": cfg.URL})
	started := time.Now().UTC()

	// Fetch current page
	fetchStart := time.Now()
	page, err := sc.FetchPage()
	metrics.RecordTiming("fetch", time.Since(fetchStart))
	if err != nil {
		logFetchFailure(log, err)
		recordRun(cfg, log, metrics, started, history.StatusFailed, err)
		return err
	}

	// Extract race rows
	parseStart := time.Now()
	raw, err := sc.ParseRaces(page.HTML)
	metrics.RecordTiming("parse", time.Since(parseStart))
	if err != nil {
		log.Error("parsing page failed", logger.Fields{"url": page.FinalURL}, err)
		recordRun(cfg, log, metrics, started, history.StatusFailed, err)
		return err
	}

	races := race.FormatRaces(raw)

	// An empty scrape keeps the previous results file so a layout change on
	// the site can't wipe curated data
	wrote := false
	if len(races) == 0 {
		log.Warn("no races were scraped; previous results left untouched", logger.Fields{
			"url": page.FinalURL,
		})
	} else {
		if err := store.WriteRaces(races); err != nil {
			log.Error("writing results failed", logger.Fields{"path": cfg.OutputFile}, err)
			recordRun(cfg, log, metrics, started, history.StatusFailed, err)
			return err
		}
		wrote = true
	}

	recordRun(cfg, log, metrics, started, history.StatusOK, nil)

	log.Info("scrape complete", logger.Fields{"metrics": metrics.GetSnapshot()})

	result := &ScrapeResult{
		ScrapedAt:    started,
		URL:          cfg.URL,
		RacesScraped: int(metrics.Counter("races_scraped")),
		RowsSkipped:  int(metrics.Counter("rows_skipped")),
		Duration:     time.Since(started).Round(time.Millisecond).String(),
		OutputFile:   cfg.OutputFile,
		Wrote:        wrote,
	}

	return WriteScrapeResult(cmd.OutOrStdout(), result, format)
}

// logFetchFailure logs a fetch error with whatever detail the error carries.
func logFetchFailure(log *logger.Logger, err error) {
	var fetchErr *scraper.FetchError
	if errors.As(err, &fetchErr) {
		log.Error("fetching page failed", logger.Fields{
			"url":         fetchErr.URL,
			"status_code": fetchErr.StatusCode,
		}, err)
		return
	}
	log.Error("fetching page failed", nil, err)
}

// recordRun writes the run outcome to the journal when one is configured.
// Journal trouble is logged and never fails the run.
func recordRun(cfg config.Config, log *logger.Logger, metrics *logger.Metrics, started time.Time, status string, runErr error) {
	if cfg.HistoryPath == "" {
		return
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn("could not open run journal", logger.Fields{
			"path":  cfg.HistoryPath,
			"error": err.Error(),
		})
		return
	}
	defer store.Close()

	run := &history.Run{
		StartedAt:    started,
		FinishedAt:   time.Now().UTC(),
		URL:          cfg.URL,
		Status:       status,
		RacesScraped: int(metrics.Counter("races_scraped")),
		RowsSkipped:  int(metrics.Counter("rows_skipped")),
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}

	if _, err := store.RecordRun(context.Background(), run); err != nil {
		log.Warn("could not record run in journal", logger.Fields{
			"path":  cfg.HistoryPath,
			"error": err.Error(),
		})
	}
}

// newCalendarCmd creates the calendar export subcommand.
func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Export scraped races as an iCalendar (.ics) file",
		Long: `Reads the scraped results file and writes an iCalendar file with one
event per race. Races with a hand-completed start time are exported as
confirmed; races still carrying the placeholder get a tentative dawn start
on their scraped date. Races whose date cannot be resolved are left out.`,
		RunE: runCalendar,
	}

	cmd.Flags().StringVar(&flagCalendarOut, "out", "freetrail_races.ics", "Output .ics file path")
	cmd.Flags().StringVar(&flagCalendarName, "name", "Freetrail Races", "Calendar name embedded in the file")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order: date, name or location")
	cmd.Flags().StringVar(&flagOutput, "output", config.Default().OutputFile, "Results JSON file to read")

	return cmd
}

// runCalendar reads scraped results and writes the bulk calendar file.
func runCalendar(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	order := SortOrder(strings.ToLower(flagSort))
	switch order {
	case SortByDate, SortByName, SortByLocation:
	default:
		return fmt.Errorf("invalid sort: %s (must be 'date', 'name' or 'location')", flagSort)
	}

	log := newLogger(cfg, cmd.ErrOrStderr())

	store, err := storage.New(cfg.OutputFile, cfg.DebugFile, log)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	races, err := store.ReadRaces()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no scraped results at %s; run a scrape first", cfg.OutputFile)
		}
		return err
	}

	if len(races) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No races to export.")
		return nil
	}

	sortRaces(races, order)

	ics, skipped := calendar.GenerateBulkICS(races, flagCalendarName)
	for _, r := range skipped {
		log.Warn("race has no usable start date; left out of calendar", logger.Fields{
			"name":  r.Name,
			"start": r.StartDateTime,
		})
	}

	if err := os.WriteFile(flagCalendarOut, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	exported := len(races) - len(skipped)
	if len(skipped) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d races to %s (%d left out without a usable date).\n",
			exported, flagCalendarOut, len(skipped))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d races to %s.\n", exported, flagCalendarOut)
	}

	return nil
}

// newRunsCmd creates the run journal listing subcommand.
func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded scrape runs",
		RunE:  runRuns,
	}

	cmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Maximum runs to list")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagHistory, "history", "", "SQLite run journal path")

	return cmd
}

// runRuns lists the most recent scrape runs from the journal.
func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if cfg.HistoryPath == "" {
		return fmt.Errorf("run journal is not configured; set history_path in the config file or pass --history")
	}

	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), flagRunsLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	return WriteRuns(cmd.OutOrStdout(), runs, format)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
