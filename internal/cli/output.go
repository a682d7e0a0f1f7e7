package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/freetrail-races/internal/history"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ScrapeResult summarizes one scrape run for stdout.
type ScrapeResult struct {
	ScrapedAt    time.Time `json:"scraped_at"`
	URL          string    `json:"url"`
	RacesScraped int       `json:"races_scraped"`
	RowsSkipped  int       `json:"rows_skipped"`
	Duration     string    `json:"duration"`
	OutputFile   string    `json:"output_file"`
	Wrote        bool      `json:"wrote"`
}

// RunsResult wraps a run listing for JSON output.
type RunsResult struct {
	Runs  []history.Run `json:"runs"`
	Count int           `json:"count"`
}

// WriteScrapeResult writes the scrape summary in the specified format.
func WriteScrapeResult(w io.Writer, result *ScrapeResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeScrapeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs a value as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeScrapeText outputs the scrape summary as human-readable text
func writeScrapeText(w io.Writer, result *ScrapeResult) error {
	if !result.Wrote {
		fmt.Fprintf(w, "No races scraped from %s; %s left untouched.\n", result.URL, result.OutputFile)
		return nil
	}

	fmt.Fprintf(w, "Scraped %d races to %s in %s.\n", result.RacesScraped, result.OutputFile, result.Duration)
	if result.RowsSkipped > 0 {
		fmt.Fprintf(w, "Skipped %d rows with missing or incomplete data.\n", result.RowsSkipped)
	}

	return nil
}

// WriteRuns writes a run journal listing in the specified format.
func WriteRuns(w io.Writer, runs []history.Run, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, &RunsResult{Runs: runs, Count: len(runs)})
	case FormatText:
		return writeRunsText(w, runs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeRunsText outputs the run listing as human-readable text
func writeRunsText(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(w, "#%d  %s  %-6s  races=%d skipped=%d  (%s)\n",
			r.ID,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Status,
			r.RacesScraped,
			r.RowsSkipped,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
		if r.Error != nil {
			fmt.Fprintf(w, "     error: %s\n", *r.Error)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	return nil
}
