package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/freetrail-races/internal/calendar"
	"github.com/pfrederiksen/freetrail-races/internal/race"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate     SortOrder = "date"
	SortByName     SortOrder = "name"
	SortByLocation SortOrder = "location"
)

// sortRaces sorts a slice of races based on the specified sort order
func sortRaces(races []race.Race, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.Slice(races, func(i, j int) bool {
			return compareByDate(races[i], races[j])
		})
	case SortByName:
		sort.Slice(races, func(i, j int) bool {
			if races[i].Name != races[j].Name {
				return strings.ToLower(races[i].Name) < strings.ToLower(races[j].Name)
			}
			// If names are equal, sort by date
			return compareByDate(races[i], races[j])
		})
	case SortByLocation:
		sort.Slice(races, func(i, j int) bool {
			if races[i].Location != races[j].Location {
				return strings.ToLower(races[i].Location) < strings.ToLower(races[j].Location)
			}
			// If locations are equal, sort by date
			return compareByDate(races[i], races[j])
		})
	}
}

// compareByDate compares two races by their resolved start time
// Returns true if race a should come before race b
func compareByDate(a, b race.Race) bool {
	ta, aOK := calendar.StartTime(a)
	tb, bOK := calendar.StartTime(b)

	// If both start times resolve, compare them
	if aOK && bOK && !ta.Equal(tb) {
		return ta.Before(tb)
	}

	// If only one resolves, put the resolved one first
	if aOK != bOK {
		return aOK
	}

	// Same time or neither resolves: sort by name
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}
