package race

import (
	"fmt"
	"strings"
)

// manualTimePrefix marks a start_dateTime that still needs to be filled in by
// hand; the bracketed text after it is the scraped date to work from.
const manualTimePrefix = "MANUAL_TIME_NEEDED_FROM"

// descriptionPrefix introduces the verbatim scraped date carried in the
// description of every generated entry.
const descriptionPrefix = "Date Scraped: "

// RawRace is a single row scraped from the events table. ScrapedStartDate
// holds the date cell's text verbatim; the page gives no timezone or exact
// start time, so nothing is normalized at this stage.
type RawRace struct {
	Name             string `json:"name"`
	ScrapedStartDate string `json:"scraped_start_date"`
	Location         string `json:"location"`
}

// Race is one calendar entry in the output file. Fields the events page does
// not supply are written empty or as placeholders for manual completion.
type Race struct {
	Name           string `json:"name"`
	StartDateTime  string `json:"start_dateTime"`
	EndDateTime    string `json:"end_dateTime"`
	TimeZone       string `json:"timeZone"`
	LivestreamLink string `json:"livestream_link"`
	Description    string `json:"description"`
	Location       string `json:"location"`
}

// NewRace builds the calendar entry for one scraped race. Name and location
// pass through unchanged; the start time is a placeholder embedding the
// scraped date, and the description records that date verbatim.
func NewRace(raw RawRace) Race {
	return Race{
		Name:           raw.Name,
		StartDateTime:  fmt.Sprintf("%s [%s]", manualTimePrefix, raw.ScrapedStartDate),
		EndDateTime:    "",
		TimeZone:       "",
		LivestreamLink: "",
		Description:    descriptionPrefix + raw.ScrapedStartDate,
		Location:       raw.Location,
	}
}

// FormatRaces maps scraped races to calendar entries one-to-one, preserving
// order. An empty input yields an empty (non-nil) slice.
func FormatRaces(scraped []RawRace) []Race {
	races := make([]Race, 0, len(scraped))
	for _, raw := range scraped {
		races = append(races, NewRace(raw))
	}
	return races
}

// NeedsManualTime reports whether the entry still carries the scraped-time
// placeholder instead of a curated start time.
func (r Race) NeedsManualTime() bool {
	return strings.HasPrefix(r.StartDateTime, manualTimePrefix)
}

// ScrapedDate returns the scraped date text embedded in the entry's
// description, if present.
func (r Race) ScrapedDate() (string, bool) {
	if !strings.HasPrefix(r.Description, descriptionPrefix) {
		return "", false
	}
	date := strings.TrimPrefix(r.Description, descriptionPrefix)
	if date == "" {
		return "", false
	}
	return date, true
}
