package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/IliaW/lead-hunter/internal/extract"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome for sites that build their contact
// blocks with JavaScript.
type BrowserFetcher struct {
	timeout   time.Duration
	userAgent string
}

func NewBrowserFetcher(timeout time.Duration, userAgent string) *BrowserFetcher {
	return &BrowserFetcher{timeout: timeout, userAgent: userAgent}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*model.Page, error) {
	startTime := time.Now()
	p := &model.Page{
		URL:            url,
		CrawlMechanism: model.HeadlessBrowser.String(),
	}
	var mu sync.Mutex
	currentURL := url

	tCtx, cancelTCtx := context.WithTimeout(ctx, f.timeout)
	defer cancelTCtx()
	bCtx, cancel := chromedp.NewContext(tCtx)
	defer cancel()

	chromedp.ListenTarget(bCtx, func(event interface{}) {
		mu.Lock()
		defer mu.Unlock()
		switch e := event.(type) {
		case *network.EventResponseReceived:
			response := e.Response
			if response.URL == currentURL || response.URL == currentURL+"/" {
				p.StatusCode = int(response.Status)
			}
		case *network.EventRequestWillBeSent:
			if e.RedirectResponse != nil {
				currentURL = e.Request.URL
				slog.Debug("redirected.", slog.String("url", e.RedirectResponse.URL))
			}
		}
	})

	var html, title string
	err := chromedp.Run(bCtx,
		chromedp.Tasks{
			network.Enable(),
			network.SetExtraHTTPHeaders(map[string]interface{}{
				"User-Agent": f.userAgent,
			}),
			enableLifeCycleEvents(),
			navigateAndWaitFor(url, "networkIdle"),
		},
		chromedp.Title(&title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			rootNode, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			html, err = dom.GetOuterHTML().WithNodeID(rootNode.NodeID).Do(ctx)
			return err
		}),
	)
	p.TimeToCrawl = time.Since(startTime).Milliseconds()

	mu.Lock()
	status := p.StatusCode
	mu.Unlock()
	if err != nil {
		return p, &FetchError{URL: url, Err: err}
	}
	if status == 0 {
		return p, &FetchError{URL: url, Err: errors.New("no document response observed")}
	}
	if status != http.StatusOK {
		return p, &FetchError{URL: url, StatusCode: status, Err: errors.New(http.StatusText(status))}
	}

	parsed := extract.ParsePage(html)
	p.HTML = html
	p.Text = parsed.Text
	p.Title = title
	if p.Title == "" {
		p.Title = parsed.Title
	}

	return p, nil
}

func enableLifeCycleEvents() chromedp.ActionFunc {
	return func(ctx context.Context) error {
		err := page.Enable().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetLifecycleEventsEnabled(true).Do(ctx)
	}
}

func navigateAndWaitFor(url string, eventName string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		_, _, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		return waitFor(ctx, eventName)
	}
}

func waitFor(ctx context.Context, eventName string) error {
	ch := make(chan struct{})
	var once sync.Once
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chromedp.ListenTarget(cctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventLifecycleEvent:
			if e.Name == eventName {
				once.Do(func() {
					cancel()
					close(ch)
				})
			}
		}
	})
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
