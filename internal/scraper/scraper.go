package scraper

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/freetrail-races/internal/logger"
	"github.com/pfrederiksen/freetrail-races/internal/race"
)

const (
	// EventsURL is the Freetrail Fantasy events listing this tool scrapes.
	EventsURL = "https://fantasy.freetrail.com/events"

	// UserAgent mimics a desktop browser; the events page serves the full
	// table markup only to browser-looking clients.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9"
	acceptLanguage = "en-US,en;q=0.9"

	// Timeout bounds the single blocking GET; on expiry the fetch fails
	// rather than hanging.
	Timeout = 15 * time.Second

	// minRowCells is the least number of cells a table row must have to be
	// considered a race row (name, status, date, location).
	minRowCells = 4
)

// FetchError reports a failed page fetch: either a non-success HTTP status or
// a network-level failure (DNS, connection, timeout). A fetch failure is fatal
// for the run; nothing downstream of the Fetcher executes.
type FetchError struct {
	URL        string
	StatusCode int    // zero when no response arrived
	Status     string // e.g. "404 Not Found"
	Err        error  // underlying transport error, nil on HTTP status failures
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Page is the result of a successful fetch: the raw markup and the URL the
// request resolved to after redirects.
type Page struct {
	HTML     string
	FinalURL string
}

// DebugSink receives the raw HTML of every successful fetch for offline
// inspection. A sink failure is logged and never fails the fetch.
type DebugSink interface {
	SaveHTML(html string) error
}

// Scraper fetches the Freetrail events page and extracts race rows from its
// table.
type Scraper struct {
	client  *http.Client
	url     string
	log     *logger.Logger
	debug   DebugSink
	metrics *logger.Metrics
}

// New creates a Scraper for the given URL. A non-positive timeout falls back
// to the package default.
func New(url string, timeout time.Duration, log *logger.Logger) *Scraper {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
		log: log,
	}
}

// SetDebugSink installs the sink that receives raw fetched HTML. A nil sink
// disables the debug dump.
func (s *Scraper) SetDebugSink(sink DebugSink) {
	s.debug = sink
}

// SetMetrics installs a metrics tracker counting rows seen, rows skipped and
// races scraped. A nil tracker disables counting.
func (s *Scraper) SetMetrics(m *logger.Metrics) {
	s.metrics = m
}

func (s *Scraper) count(name string) {
	if s.metrics != nil {
		s.metrics.IncrCounter(name)
	}
}

// FetchPage performs the single GET against the events page. It returns the
// page body and resolved URL on success, or a *FetchError on any HTTP or
// network failure. There are no retries.
func (s *Scraper) FetchPage() (*Page, error) {
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	s.log.Info("request sent", logger.Fields{"status": resp.StatusCode})

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: s.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: err}
	}

	finalURL := s.url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	s.log.Info("successfully fetched content", logger.Fields{"url": finalURL})

	page := &Page{HTML: string(body), FinalURL: finalURL}

	if s.debug != nil {
		if err := s.debug.SaveHTML(page.HTML); err != nil {
			s.log.Error("could not save debug HTML", logger.Fields{"url": finalURL}, err)
		} else {
			s.log.Info("saved fetched HTML for inspection", nil)
		}
	}

	return page, nil
}

// ParseRaces extracts race rows from the page markup. A page without a table
// body or without rows is a valid, empty result. Malformed rows are skipped
// with a warning and never affect the rows after them.
func (s *Scraper) ParseRaces(html string) ([]race.RawRace, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tableBody := doc.Find("tbody").First()
	if tableBody.Length() == 0 {
		s.log.Warn("could not find the main table body; website structure might have changed or table is missing", nil)
		return []race.RawRace{}, nil
	}

	rows := tableBody.Find("tr")
	if rows.Length() == 0 {
		s.log.Warn("found table body, but no table rows within it", nil)
		return []race.RawRace{}, nil
	}

	s.log.Info("found table rows", logger.Fields{"rows": rows.Length()})

	scraped := make([]race.RawRace, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		s.count("rows_seen")
		cells := row.Find("td")

		if cells.Length() < minRowCells {
			s.count("rows_skipped")
			s.log.Warn("skipping table row with less than 4 cells", logger.Fields{
				"row":   i,
				"cells": cells.Length(),
			})
			return
		}

		name, nameOK := extractName(cells)
		dateText := strings.TrimSpace(cells.Eq(2).Text())
		location, locationOK := extractLocation(cells)

		if !nameOK || !locationOK || dateText == "" {
			s.count("rows_skipped")
			s.log.Warn("incomplete data found in a row, skipping", logger.Fields{
				"row":      i,
				"name":     name,
				"date":     dateText,
				"location": location,
			})
			return
		}

		s.count("races_scraped")
		scraped = append(scraped, race.RawRace{
			Name:             name,
			ScrapedStartDate: dateText,
			Location:         location,
		})
		s.log.Info("scraped race", logger.Fields{
			"name":     name,
			"date":     dateText,
			"location": location,
		})
	})

	return scraped, nil
}

// extractName locates the race name in the first cell: a semibold div wrapping
// the race detail link. Either element missing, or an empty trimmed text,
// means the row has no usable name.
func extractName(cells *goquery.Selection) (string, bool) {
	link := cells.Eq(0).Find("div.font-semibold a").First()
	if link.Length() == 0 {
		return "", false
	}
	name := strings.TrimSpace(link.Text())
	if name == "" {
		return "", false
	}
	return name, true
}

// extractLocation locates the location text in the fourth cell's capitalize
// div. The div wraps a flag span plus the country/region text; Text() flattens
// them and trimming leaves the location.
func extractLocation(cells *goquery.Selection) (string, bool) {
	div := cells.Eq(3).Find("div.capitalize").First()
	if div.Length() == 0 {
		return "", false
	}
	location := strings.TrimSpace(div.Text())
	if location == "" {
		return "", false
	}
	return location, true
}
