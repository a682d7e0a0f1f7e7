package race

import (
	"strings"
	"time"
)

// ParseStartDate attempts to parse scraped date text into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Only the well-formed "Sep 6, 2025" family is accepted; date text without an
// explicit year is ambiguous and is deliberately left unparsed.
func ParseStartDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}

	// Try "Sep 6, 2025" format
	t, err := time.Parse("Jan 2, 2006", dateText)
	if err == nil {
		return t
	}

	// Try "September 6, 2025" format
	t, err = time.Parse("January 2, 2006", dateText)
	if err == nil {
		return t
	}

	// Try "Sep 6 2025" format (no comma)
	t, err = time.Parse("Jan 2 2006", dateText)
	if err == nil {
		return t
	}

	// Try "September 6 2025" format
	t, err = time.Parse("January 2 2006", dateText)
	if err == nil {
		return t
	}

	// Try ISO "2025-09-06" format
	t, err = time.Parse("2006-01-02", dateText)
	if err == nil {
		return t
	}

	// Could not parse, return zero time
	return time.Time{}
}
