package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/freetrail-races/internal/race"
	"github.com/pfrederiksen/freetrail-races/internal/scraper"
)

// raceDayDuration blocks out a full race day; trail ultras routinely run
// from dawn well into the evening.
const raceDayDuration = 12 * time.Hour

// curatedLayouts are the datetime formats accepted in a start_dateTime
// that has been filled in by hand.
var curatedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// StartTime resolves the calendar start for a race. A hand-completed
// start_dateTime wins; otherwise the scraped date is used with a dawn
// start. Returns false when neither yields a usable time.
func StartTime(r race.Race) (time.Time, bool) {
	if !r.NeedsManualTime() {
		for _, layout := range curatedLayouts {
			if t, err := time.Parse(layout, r.StartDateTime); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	scraped, ok := r.ScrapedDate()
	if !ok {
		return time.Time{}, false
	}

	date := race.ParseStartDate(scraped)
	if date.IsZero() {
		return time.Time{}, false
	}

	return time.Date(date.Year(), date.Month(), date.Day(), 6, 0, 0, 0, time.UTC), true
}

// GenerateICS generates an iCalendar (.ics) file for a single race.
func GenerateICS(r race.Race) string {
	start, ok := StartTime(r)
	if !ok {
		// If we can't resolve the date, use one week from now
		start = time.Now().UTC().AddDate(0, 0, 7)
	}

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Freetrail Races//freetrail-races//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	writeEvent(&ics, r, start)

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// GenerateBulkICS generates a single calendar holding one VEVENT per
// race. Races whose start cannot be resolved are left out and returned
// so the caller can report them. An empty race list returns an empty
// string.
func GenerateBulkICS(races []race.Race, calendarName string) (string, []race.Race) {
	if len(races) == 0 {
		return "", nil
	}

	var skipped []race.Race

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//Freetrail Races//freetrail-races//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
	}

	for _, r := range races {
		start, ok := StartTime(r)
		if !ok {
			skipped = append(skipped, r)
			continue
		}
		writeEvent(&ics, r, start)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), skipped
}

// writeEvent appends one VEVENT block for a race starting at start.
func writeEvent(ics *strings.Builder, r race.Race, start time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - unique identifier for the race
	ics.WriteString(fmt.Sprintf("UID:%s@freetrail-races\r\n", uid(r, start)))

	// DTSTAMP - timestamp when this calendar entry was created
	now := time.Now().UTC()
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(raceDayDuration))))

	// SUMMARY - race name
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(r.Name)))

	// DESCRIPTION - scrape provenance plus whatever links exist
	description := r.Description
	if r.LivestreamLink != "" {
		description = fmt.Sprintf("%s\nLivestream: %s", description, r.LivestreamLink)
	}
	if r.NeedsManualTime() {
		description = fmt.Sprintf("%s\nStart time not yet confirmed", description)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	// LOCATION - race location
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(r.Location)))

	// URL - link to the events listing
	ics.WriteString(fmt.Sprintf("URL:%s\r\n", scraper.EventsURL))

	// STATUS - tentative until a start time has been filled in by hand
	if r.NeedsManualTime() {
		ics.WriteString("STATUS:TENTATIVE\r\n")
	} else {
		ics.WriteString("STATUS:CONFIRMED\r\n")
	}

	// SEQUENCE - version number for updates
	ics.WriteString("SEQUENCE:0\r\n")

	// TRANSP - show as busy
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
}

// uid builds a stable identifier from the race name and start date.
func uid(r race.Race, start time.Time) string {
	slug := strings.ToLower(r.Name)
	slug = strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")

	return fmt.Sprintf("%s-%s", slug, start.Format("20060102"))
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
