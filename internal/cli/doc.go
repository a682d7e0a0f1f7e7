// Package cli implements the command-line interface for freetrail-races.
//
// The cli package provides the Cobra-based CLI. The root command runs a
// full scrape (fetch, parse, format, write), the calendar subcommand
// exports previously scraped results as an iCalendar file, and the runs
// subcommand lists the SQLite run journal. It coordinates the scraper,
// storage, race, calendar and history packages.
package cli
