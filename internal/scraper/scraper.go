package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
)

// ErrNoBillTable means the page parsed as HTML but no table in it looks like
// the legislation table. Usually a site redesign, sometimes a bot-challenge
// interstitial served instead of the real page.
var ErrNoBillTable = errors.New("no bill table found in page")

// Positional cell layout of the tracking table. The summary column is only
// present on some revisions of the page.
const (
	cellJurisdiction = 0
	cellNumber       = 1
	cellTitle        = 2
	cellStatus       = 3
	cellCategory     = 4
	cellSummary      = 5

	minCells = 5
)

// Scraper fetches the NCSL tracking page and extracts bill rows from it.
type Scraper struct {
	url        string
	strategies []FetchStrategy
}

// New creates a Scraper that fetches with plain HTTP.
func New(pageURL string, timeout time.Duration) *Scraper {
	return &Scraper{
		url:        pageURL,
		strategies: []FetchStrategy{newHTTPFetcher(timeout)},
	}
}

// NewWithStealth creates a Scraper that tries a headless-Chrome fetch first
// and falls back to plain HTTP.
func NewWithStealth(pageURL string, timeout time.Duration) *Scraper {
	return &Scraper{
		url: pageURL,
		strategies: []FetchStrategy{
			newStealthFetcher(timeout),
			newHTTPFetcher(timeout),
		},
	}
}

// URL returns the page this scraper reads.
func (s *Scraper) URL() string {
	return s.url
}

// FetchBills fetches the page and parses every row of the bill table.
func (s *Scraper) FetchBills(ctx context.Context) ([]*bill.Bill, error) {
	body, err := fetchWithStrategies(ctx, s.url, s.strategies)
	if err != nil {
		return nil, err
	}
	return s.parseBills(bytes.NewReader(body), s.url)
}

// parseBills extracts bills from HTML.
func (s *Scraper) parseBills(r io.Reader, pageURL string) ([]*bill.Bill, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := findBillTable(doc)
	if table == nil {
		return nil, ErrNoBillTable
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	bills := make([]*bill.Bill, 0)
	malformed := 0

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			// Header rows use th and land here with zero td cells; anything
			// else short of a full row is a layout artifact we skip.
			if cells.Length() > 0 {
				malformed++
			}
			return
		}

		jurisdiction := cellText(cells.Eq(cellJurisdiction))
		number := cellText(cells.Eq(cellNumber))

		summary := ""
		if cells.Length() > cellSummary {
			summary = cellText(cells.Eq(cellSummary))
		}

		b := bill.New(
			jurisdiction,
			number,
			cellText(cells.Eq(cellTitle)),
			cellText(cells.Eq(cellStatus)),
			cellText(cells.Eq(cellCategory)),
			summary,
			billLink(cells.Eq(cellNumber), base, pageURL),
		)
		bills = append(bills, b)
	})

	if malformed > 0 {
		logger.Debug("skipped short table rows", logger.Fields{"rows": malformed})
	}

	return bills, nil
}

// findBillTable locates the legislation table among all tables on the page
// by its header labels: it must have a "bill number" column plus either a
// jurisdiction/state or a summary column. The page carries other tables
// (navigation, related resources) that would otherwise win by document order.
func findBillTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection

	doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		var labels []string
		table.Find("th").Each(func(_ int, th *goquery.Selection) {
			labels = append(labels, strings.ToLower(cellText(th)))
		})

		if !billTableHeaders(labels) {
			return true
		}
		found = table
		return false
	})

	return found
}

func billTableHeaders(labels []string) bool {
	var hasNumber, hasContext bool
	for _, label := range labels {
		if strings.Contains(label, "bill number") {
			hasNumber = true
		}
		if strings.Contains(label, "jurisdiction") ||
			strings.Contains(label, "state") ||
			strings.Contains(label, "summary") {
			hasContext = true
		}
	}
	return hasNumber && hasContext
}

// billLink resolves the first link in the bill-number cell against the page
// URL. Rows without a usable link fall back to the page itself, so a digest
// entry always points somewhere.
func billLink(numberCell *goquery.Selection, base *url.URL, pageURL string) string {
	href, ok := numberCell.Find("a").First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return pageURL
	}

	ref, err := url.Parse(href)
	if err != nil {
		return pageURL
	}
	return base.ResolveReference(ref).String()
}

// cellText extracts a cell's text with whitespace runs collapsed to single
// spaces, so multi-line markup inside a cell reads as one line.
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
