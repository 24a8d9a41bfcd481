package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
)

const (
	// UserAgent mimics a desktop browser. The source site serves a bot
	// challenge to clients that identify themselves as scripts.
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

	// maxFetchBytes bounds how much of a response body we read.
	maxFetchBytes = 10 << 20 // 10MB
)

// FetchStrategy retrieves the raw HTML of a page. Implementations decide how:
// plain HTTP or a headless browser.
type FetchStrategy interface {
	Name() string
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// FetchError reports that every configured fetch strategy failed.
type FetchError struct {
	URL      string
	Attempts []error
}

func (e *FetchError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("fetching %s: all strategies failed: %s", e.URL, strings.Join(msgs, "; "))
}

func (e *FetchError) Unwrap() []error {
	return e.Attempts
}

// fetchWithStrategies tries each strategy in order and returns the first
// successful body. Failures are logged and collected; when every strategy
// fails the collected errors come back as a FetchError.
func fetchWithStrategies(ctx context.Context, pageURL string, strategies []FetchStrategy) ([]byte, error) {
	var attempts []error

	for _, strategy := range strategies {
		start := time.Now()
		body, err := strategy.Fetch(ctx, pageURL)
		logger.RecordTiming("fetch."+strategy.Name(), time.Since(start))

		if err == nil {
			logger.Debug("page fetched", logger.Fields{
				"strategy": strategy.Name(),
				"url":      pageURL,
				"bytes":    len(body),
			})
			return body, nil
		}

		logger.Warn("fetch strategy failed", logger.Fields{
			"strategy": strategy.Name(),
			"url":      pageURL,
			"error":    err.Error(),
		})
		attempts = append(attempts, fmt.Errorf("%s: %w", strategy.Name(), err))
	}

	return nil, &FetchError{URL: pageURL, Attempts: attempts}
}

// httpFetcher is the plain net/http strategy. It sends a browser-like header
// set, which is enough for the source page most of the time.
type httpFetcher struct {
	client *http.Client
}

func newHTTPFetcher(timeout time.Duration) *httpFetcher {
	return &httpFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *httpFetcher) Name() string { return "http" }

func (f *httpFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// stealthFetcher drives a headless Chrome through go-rod with the stealth
// patches applied, for when the source site blocks plain HTTP clients. The
// browser is launched per fetch and torn down afterwards; a watch run needs
// at most one page load.
type stealthFetcher struct {
	timeout time.Duration
}

func newStealthFetcher(timeout time.Duration) *stealthFetcher {
	return &stealthFetcher{timeout: timeout}
}

func (f *stealthFetcher) Name() string { return "stealth" }

func (f *stealthFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	// A slow third-party widget shouldn't sink the fetch; serialize whatever
	// has rendered when the load wait gives up.
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn("page load wait timed out", logger.Fields{
			"url":   pageURL,
			"error": err.Error(),
		})
	}

	res, err := page.Context(navCtx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("serialize dom: %w", err)
	}

	return []byte(res.Value.Str()), nil
}
