package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/freetrail-races/internal/race"
)

func scrapedRace(name, date, location string) race.Race {
	return race.NewRace(race.RawRace{Name: name, ScrapedStartDate: date, Location: location})
}

func TestStartTime(t *testing.T) {
	tests := []struct {
		name   string
		race   race.Race
		wantOK bool
		want   time.Time
	}{
		{
			name: "curated RFC3339 start",
			race: race.Race{
				Name:          "Teton 100",
				StartDateTime: "2025-09-06T07:00:00Z",
			},
			wantOK: true,
			want:   time.Date(2025, 9, 6, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "curated start without zone",
			race: race.Race{
				Name:          "Teton 100",
				StartDateTime: "2025-09-06T07:00:00",
			},
			wantOK: true,
			want:   time.Date(2025, 9, 6, 7, 0, 0, 0, time.UTC),
		},
		{
			name:   "placeholder with parseable scraped date",
			race:   scrapedRace("Teton 100", "Sep 6, 2025", "United States, Wyoming"),
			wantOK: true,
			want:   time.Date(2025, 9, 6, 6, 0, 0, 0, time.UTC),
		},
		{
			name:   "placeholder with date range",
			race:   scrapedRace("Stage Race", "Aug 29 - 31, 2025", "Italy"),
			wantOK: false,
		},
		{
			name: "curated garbage",
			race: race.Race{
				Name:          "Broken",
				StartDateTime: "sometime next year",
			},
			wantOK: false,
		},
		{
			name: "placeholder without provenance",
			race: race.Race{
				Name:          "Orphan",
				StartDateTime: "MANUAL_TIME_NEEDED_FROM [Sep 6, 2025]",
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StartTime(tt.race)

			if ok != tt.wantOK {
				t.Fatalf("StartTime() ok = %v, want %v", ok, tt.wantOK)
			}

			if tt.wantOK && !got.Equal(tt.want) {
				t.Errorf("StartTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateICS(t *testing.T) {
	r := race.Race{
		Name:          "Teton 100",
		StartDateTime: "2025-09-06T07:00:00Z",
		TimeZone:      "America/Denver",
		Description:   "Date Scraped: Sep 6, 2025",
		Location:      "United States, Wyoming",
	}

	ics := GenerateICS(r)

	// Check required ICS fields
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Freetrail Races//freetrail-races//EN",
		"BEGIN:VEVENT",
		"UID:teton-100-20250906@freetrail-races",
		"DTSTAMP:",
		"DTSTART:20250906T070000Z",
		"DTEND:20250906T190000Z",
		"SUMMARY:Teton 100",
		"DESCRIPTION:",
		"LOCATION:United States\\, Wyoming", // Comma is escaped
		"URL:https://fantasy.freetrail.com/events",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	// Check that lines end with \r\n
	if !strings.Contains(ics, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
}

func TestGenerateICS_ManualTime(t *testing.T) {
	r := scrapedRace("Teton 100", "Sep 6, 2025", "United States, Wyoming")

	ics := GenerateICS(r)

	// A race awaiting its start time is tentative at dawn on race day
	if !strings.Contains(ics, "STATUS:TENTATIVE") {
		t.Error("race awaiting manual time should be TENTATIVE")
	}
	if !strings.Contains(ics, "DTSTART:20250906T060000Z") {
		t.Error("race should fall back to a dawn start on the scraped date")
	}
	if !strings.Contains(ics, "Start time not yet confirmed") {
		t.Error("description should flag the unconfirmed start")
	}
	if !strings.Contains(ics, "Date Scraped: Sep 6\\, 2025") {
		t.Error("description should keep the scrape provenance")
	}
}

func TestGenerateICS_Livestream(t *testing.T) {
	r := race.Race{
		Name:           "Western States 100",
		StartDateTime:  "2026-06-27T05:00:00Z",
		LivestreamLink: "https://www.youtube.com/watch?v=ws100",
		Description:    "Date Scraped: Jun 27, 2026",
		Location:       "United States, California",
	}

	ics := GenerateICS(r)

	if !strings.Contains(ics, "Livestream: https://www.youtube.com/watch?v=ws100") {
		t.Error("description should include the livestream link")
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	r := race.Race{
		Name:          "Test Race; With, Special\\Characters",
		StartDateTime: "2026-04-20T06:00:00Z",
		Location:      "Austin, Texas",
	}

	ics := GenerateICS(r)

	// Check that special characters are escaped
	if strings.Contains(ics, "SUMMARY:Test Race; With, Special\\Characters\r\n") {
		t.Error("Special characters should be escaped in SUMMARY")
	}

	// Should have escaped versions
	if !strings.Contains(ics, "\\;") || !strings.Contains(ics, "\\,") {
		t.Error("Special characters should be escaped")
	}
}

func TestGenerateBulkICS(t *testing.T) {
	races := []race.Race{
		scrapedRace("Teton 100", "Sep 6, 2025", "United States, Wyoming"),
		scrapedRace("Diagonale des Fous", "Oct 16, 2025", "Réunion"),
		scrapedRace("Black Canyon 100K", "Feb 14, 2026", "United States, Arizona"),
	}

	ics, skipped := GenerateBulkICS(races, "Freetrail Races - Test")

	// Check calendar header
	if !strings.Contains(ics, "BEGIN:VCALENDAR") {
		t.Error("Missing calendar BEGIN")
	}
	if !strings.Contains(ics, "END:VCALENDAR") {
		t.Error("Missing calendar END")
	}

	// Check calendar name
	if !strings.Contains(ics, "X-WR-CALNAME:Freetrail Races - Test") {
		t.Error("Missing calendar name")
	}

	// Count VEVENT entries (should be 3)
	beginCount := strings.Count(ics, "BEGIN:VEVENT")
	endCount := strings.Count(ics, "END:VEVENT")

	if beginCount != 3 {
		t.Errorf("Expected 3 BEGIN:VEVENT, got %d", beginCount)
	}
	if endCount != 3 {
		t.Errorf("Expected 3 END:VEVENT, got %d", endCount)
	}

	if len(skipped) != 0 {
		t.Errorf("Expected no skipped races, got %d", len(skipped))
	}
}

func TestGenerateBulkICS_SkipsUnresolvable(t *testing.T) {
	races := []race.Race{
		scrapedRace("Teton 100", "Sep 6, 2025", "United States, Wyoming"),
		scrapedRace("Stage Race", "Aug 29 - 31, 2025", "Italy"),
		scrapedRace("Black Canyon 100K", "Feb 14, 2026", "United States, Arizona"),
	}

	ics, skipped := GenerateBulkICS(races, "Freetrail Races")

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("Expected 2 VEVENT entries, got %d", got)
	}

	if len(skipped) != 1 {
		t.Fatalf("Expected 1 skipped race, got %d", len(skipped))
	}
	if skipped[0].Name != "Stage Race" {
		t.Errorf("skipped race = %q, want Stage Race", skipped[0].Name)
	}
}

func TestGenerateBulkICS_EmptyRaces(t *testing.T) {
	ics, skipped := GenerateBulkICS([]race.Race{}, "Test Calendar")

	if ics != "" {
		t.Error("Empty race list should return empty string")
	}
	if skipped != nil {
		t.Error("Empty race list should skip nothing")
	}
}

func TestGenerateBulkICS_NoCalendarName(t *testing.T) {
	races := []race.Race{
		scrapedRace("Teton 100", "Sep 6, 2025", "United States, Wyoming"),
	}

	ics, _ := GenerateBulkICS(races, "")

	// Should generate ICS without calendar name
	if !strings.Contains(ics, "BEGIN:VCALENDAR") {
		t.Error("Should generate ICS even without calendar name")
	}

	// Should not have X-WR-CALNAME if name is empty
	if strings.Contains(ics, "X-WR-CALNAME:") {
		t.Error("Should not include X-WR-CALNAME when name is empty")
	}
}

func TestUID(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"Teton 100", time.Date(2025, 9, 6, 6, 0, 0, 0, time.UTC), "teton-100-20250906"},
		{"Diagonale des Fous", time.Date(2025, 10, 16, 6, 0, 0, 0, time.UTC), "diagonale-des-fous-20251016"},
		{"UTMB®", time.Date(2025, 8, 29, 6, 0, 0, 0, time.UTC), "utmb-20250829"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := uid(race.Race{Name: tt.name}, tt.start)
			if got != tt.want {
				t.Errorf("uid(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatICSTime(t *testing.T) {
	// Test time formatting
	testTime := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	formatted := formatICSTime(testTime)

	expected := "20260315T143000Z"
	if formatted != expected {
		t.Errorf("formatICSTime() = %q, want %q", formatted, expected)
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple text", "Simple text"},
		{"Text with, comma", "Text with\\, comma"},
		{"Text with; semicolon", "Text with\\; semicolon"},
		{"Text with\\backslash", "Text with\\\\backslash"},
		{"Text with\nnewline", "Text with\\nnewline"},
		{"All, special; chars\\\n", "All\\, special\\; chars\\\\\\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeICS(tt.input)
			if got != tt.expected {
				t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
