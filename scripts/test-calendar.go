package main

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/freetrail-races/internal/calendar"
	"github.com/pfrederiksen/freetrail-races/internal/race"
)

func main() {
	// Create a sample race still waiting for its start time
	r := race.NewRace(race.RawRace{
		Name:             "Teton 100",
		ScrapedStartDate: "Sep 6, 2025",
		Location:         "United States, Wyoming",
	})

	// Generate .ics file
	icsContent := calendar.GenerateICS(r)

	// Write to file (owner read/write only for security)
	filename := "test-freetrail-race.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
