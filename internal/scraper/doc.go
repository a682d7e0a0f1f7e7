// Package scraper provides HTTP fetching and HTML table parsing for Freetrail
// Fantasy race events.
//
// The scraper fetches the public events page from fantasy.freetrail.com with
// browser-like request headers and walks the page's single table body: one row
// per race, with the name in a semibold link in the first cell, the date text
// in the third cell and the location in the fourth. Rows that do not match
// that shape are skipped with a warning; a fetch failure ends the run. Date
// text is kept verbatim because the page's format carries no timezone or exact
// start time.
package scraper
