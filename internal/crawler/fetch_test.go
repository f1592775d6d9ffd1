package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const academyHTML = `<!doctype html><html><head><title> Academia Madrid </title>
<style>.x{color:red}</style></head>
<body><h1>Trials 2025</h1><p>Contact: pruebas@academia.es, +34 612345678</p>
<script>var hidden = "no@show.com";</script></body></html>`

func TestCollyFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, academyHTML)
	}))
	defer srv.Close()

	f := NewCollyFetcher(nil, 5*time.Second, "test-agent")
	page, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "Academia Madrid", page.Title)
	assert.Contains(t, page.Text, "pruebas@academia.es")
	assert.NotContains(t, page.Text, "no@show.com")
	assert.Equal(t, model.Curl.String(), page.CrawlMechanism)
}

func TestCollyFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewCollyFetcher(nil, 5*time.Second, "test-agent")
	page, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.False(t, fetchErr.ConnectionFailure())
	assert.Equal(t, http.StatusNotFound, page.StatusCode)
}

func TestCollyFetcher_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewCollyFetcher(nil, 2*time.Second, "test-agent")
	_, err := f.Fetch(context.Background(), url)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, fetchErr.ConnectionFailure())
}

const resultsHTML = `<html><body>
<div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facademy.es%2Ftrials&rut=abc">Trials</a></div>
<div class="result"><a class="result__a" href="https://duckduckgo.com/y.js?ad_provider=x">Ad</a></div>
<div class="result"><a class="result__a" href="https://direct.co.uk/camp">Camp</a></div>
<div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facademy.es%2Ftrials&rut=def">Trials again</a></div>
<div class="result"><a class="result__a" href="https://third.com/form.pdf">Form</a></div>
</body></html>`

func newSearchServer(t *testing.T, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "football academy trials", r.URL.Query().Get("q"))
		assert.Equal(t, "us-en", r.URL.Query().Get("kl"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resultsHTML)
	}))
}

func newTestProvider(endpoint string) *DuckDuckGoProvider {
	return NewDuckDuckGoProvider(&config.SearchConfig{
		Endpoint: endpoint,
		Region:   "us-en",
		Timeout:  5 * time.Second,
	}, "test-agent", nil)
}

func TestDuckDuckGoProvider_Search(t *testing.T) {
	srv := newSearchServer(t, http.StatusOK)
	defer srv.Close()

	urls, err := newTestProvider(srv.URL).Search(context.Background(), "football academy trials", 10)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://academy.es/trials",
		"https://direct.co.uk/camp",
		"https://third.com/form.pdf",
	}, urls)
}

func TestDuckDuckGoProvider_Limit(t *testing.T) {
	srv := newSearchServer(t, http.StatusOK)
	defer srv.Close()

	urls, err := newTestProvider(srv.URL).Search(context.Background(), "football academy trials", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://academy.es/trials", "https://direct.co.uk/camp"}, urls)
}

func TestDuckDuckGoProvider_Throttled(t *testing.T) {
	for _, status := range []int{http.StatusAccepted, http.StatusTooManyRequests, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := newSearchServer(t, status)
			defer srv.Close()

			_, err := newTestProvider(srv.URL).Search(context.Background(), "football academy trials", 10)
			assert.ErrorIs(t, err, ErrThrottled)
		})
	}
}

func TestDuckDuckGoProvider_ServerError(t *testing.T) {
	srv := newSearchServer(t, http.StatusInternalServerError)
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Search(context.Background(), "football academy trials", 10)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrThrottled))
}

type mapCache struct {
	entries map[string][]string
}

func (c *mapCache) GetQuery(query string) ([]string, bool) {
	urls, ok := c.entries[query]
	return urls, ok
}

func (c *mapCache) SaveQuery(query string, urls []string) {
	c.entries[query] = urls
}

func TestCachedProvider(t *testing.T) {
	next := &fakeProvider{
		results: map[string][]string{"q": {"https://a.com", "https://b.com"}},
		errs:    map[string]error{"bad": ErrThrottled},
	}
	cache := &mapCache{entries: map[string][]string{}}
	p := NewCachedProvider(next, cache)

	first, err := p.Search(context.Background(), "q", 10)
	require.NoError(t, err)
	second, err := p.Search(context.Background(), "q", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, first)
	assert.Equal(t, []string{"https://a.com"}, second)
	assert.Equal(t, []string{"q"}, next.calls)

	_, err = p.Search(context.Background(), "bad", 10)
	assert.ErrorIs(t, err, ErrThrottled)
	assert.NotContains(t, cache.entries, "bad")
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Query: "q", Err: ErrThrottled}
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Contains(t, err.Error(), `"q"`)
}
