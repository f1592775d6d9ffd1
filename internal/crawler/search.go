package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	netUrl "net/url"
	"strings"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/gocolly/colly"
)

var ErrThrottled = errors.New("search provider throttled the request")

// SearchProvider expands a query into an ordered list of at most limit result URLs.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// ProviderError is recoverable: the run logs it, backs off and moves to the next query.
type ProviderError struct {
	Query string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DuckDuckGoProvider scrapes the HTML endpoint of DuckDuckGo.
type DuckDuckGoProvider struct {
	endpoint  string
	region    string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewDuckDuckGoProvider(cfg *config.SearchConfig, userAgent string,
	transport http.RoundTripper) *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		endpoint:  cfg.Endpoint,
		region:    cfg.Region,
		userAgent: userAgent,
		timeout:   cfg.Timeout,
		transport: transport,
	}
}

func (p *DuckDuckGoProvider) Search(_ context.Context, query string, limit int) ([]string, error) {
	c := colly.NewCollector()
	if p.transport != nil {
		c.WithTransport(p.transport)
	}
	c.SetRequestTimeout(p.timeout)
	c.UserAgent = p.userAgent

	var (
		urls      []string
		throttled bool
		reqErr    error
	)
	seen := make(map[string]struct{})

	// 202 is how the endpoint answers suspected bots.
	c.OnResponse(func(resp *colly.Response) {
		if resp.StatusCode == http.StatusAccepted {
			throttled = true
		}
	})
	c.OnHTML("a.result__a", func(e *colly.HTMLElement) {
		if limit > 0 && len(urls) >= limit {
			return
		}
		u := resultURL(e.Attr("href"))
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	})
	c.OnError(func(resp *colly.Response, err error) {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusForbidden:
			throttled = true
		}
		reqErr = err
	})

	params := netUrl.Values{}
	params.Set("q", query)
	if p.region != "" {
		params.Set("kl", p.region)
	}
	err := c.Visit(p.endpoint + "?" + params.Encode())
	if throttled {
		return nil, ErrThrottled
	}
	if reqErr != nil {
		return nil, fmt.Errorf("search request: %w", reqErr)
	}
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	return urls, nil
}

// resultURL unwraps the redirect links of the result page and drops internal links and ads.
func resultURL(href string) string {
	u, err := netUrl.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") {
		return ""
	}
	return u.String()
}

type SearchCache interface {
	GetQuery(query string) ([]string, bool)
	SaveQuery(query string, urls []string)
}

// CachedProvider answers repeated queries from the cache so a rerun does not hit the
// provider again within the cache TTL.
type CachedProvider struct {
	next  SearchProvider
	cache SearchCache
}

func NewCachedProvider(next SearchProvider, cache SearchCache) *CachedProvider {
	return &CachedProvider{next: next, cache: cache}
}

func (p *CachedProvider) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if urls, ok := p.cache.GetQuery(query); ok {
		slog.Debug("search results served from cache.", slog.String("query", query))
		if limit > 0 && len(urls) > limit {
			urls = urls[:limit]
		}
		return urls, nil
	}

	urls, err := p.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(urls) > 0 {
		p.cache.SaveQuery(query, urls)
	}

	return urls, nil
}
