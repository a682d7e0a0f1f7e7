// Package storage provides JSON-based persistence for scraped race results.
//
// Results are written as a 2-space indented UTF-8 JSON array of race
// records, overwriting the previous run's file. The package also saves
// the raw fetched HTML to a debug file for offline inspection and
// satisfies the scraper's DebugSink interface.
package storage
