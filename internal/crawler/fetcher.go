// Package crawler drives the harvester and hunter runs: fetch, pace, extract, rank.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/extract"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/gocolly/colly"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
}

// FetchError is an HTTP error status (StatusCode > 0) or a connection failure or
// timeout (StatusCode == 0).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("http error %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("connection error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) ConnectionFailure() bool {
	return e.StatusCode == 0
}

// NewFetcher picks the live fetch mechanism from config.
func NewFetcher(cfg *config.CrawlerConfig, timeout time.Duration, transport *http.Transport) Fetcher {
	switch model.CrawlMechanism(cfg.CrawlMechanism) {
	case model.HeadlessBrowser:
		return NewBrowserFetcher(timeout, cfg.UserAgent)
	default:
		return NewCollyFetcher(transport, timeout, cfg.UserAgent)
	}
}

type CollyFetcher struct {
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
}

func NewCollyFetcher(transport http.RoundTripper, timeout time.Duration, userAgent string) *CollyFetcher {
	return &CollyFetcher{
		transport: transport,
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Fetch returns the page even on error so callers can record what was observed.
func (f *CollyFetcher) Fetch(_ context.Context, url string) (*model.Page, error) {
	page := &model.Page{
		URL:            url,
		CrawlMechanism: model.Curl.String(),
	}

	c := colly.NewCollector()
	if f.transport != nil {
		c.WithTransport(f.transport)
	}
	c.SetRequestTimeout(f.timeout)
	c.UserAgent = f.userAgent

	var fetchErr *FetchError
	c.OnResponse(func(resp *colly.Response) {
		page.StatusCode = resp.StatusCode
		page.HTML = string(resp.Body)
	})
	c.OnError(func(resp *colly.Response, err error) {
		fetchErr = &FetchError{URL: url, StatusCode: resp.StatusCode, Err: err}
	})

	t := time.Now()
	err := c.Visit(url)
	page.TimeToCrawl = time.Since(t).Milliseconds()
	if fetchErr != nil {
		page.StatusCode = fetchErr.StatusCode
		return page, fetchErr
	}
	if err != nil {
		return page, &FetchError{URL: url, Err: err}
	}
	if page.StatusCode != http.StatusOK {
		return page, &FetchError{URL: url, StatusCode: page.StatusCode,
			Err: errors.New(http.StatusText(page.StatusCode))}
	}

	parsed := extract.ParsePage(page.HTML)
	page.Title = parsed.Title
	page.Text = parsed.Text

	return page, nil
}
