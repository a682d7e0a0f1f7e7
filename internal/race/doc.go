// Package race provides the record types for scraped Freetrail races and the
// mapping from scraped table rows to the calendar entries written out for
// manual completion.
//
// A RawRace holds exactly what the events table shows: name, date text and
// location, with the date kept verbatim because the page's format carries no
// year-safe timestamp a parser could trust. A Race is the output shape: the
// same name and location plus placeholder fields (start/end time, timezone,
// livestream link) a human fills in before the file is used downstream.
package race
