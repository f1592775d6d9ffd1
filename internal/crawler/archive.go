package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/extract"
	"github.com/IliaW/lead-hunter/internal/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/karust/gogetcrawl/common"
	"github.com/karust/gogetcrawl/commoncrawl"
	"github.com/patrickmn/go-cache"
)

const indexListUrl = "https://index.commoncrawl.org/collinfo.json"

var (
	titleRe = regexp.MustCompile(`(?si)<title[^>]*>(.*?)</title>`)
	htmlRe  = regexp.MustCompile(`(?si)<!doctype html>.*?</html>`)
)

type Index struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Timegate string `json:"timegate"`
	CdxAPI   string `json:"cdx-api"`
}

// ArchiveFetcher reads the latest Common Crawl snapshot of a page. It backs up live fetches
// that could not connect at all.
type ArchiveFetcher struct {
	crawler    *commoncrawl.CommonCrawl
	cfg        *config.CrawlerConfig
	localCache *cache.Cache
}

// NewArchiveFetcher has small request limitations on the Common Crawl side.
func NewArchiveFetcher(cfg *config.CrawlerConfig) *ArchiveFetcher {
	c, err := commoncrawl.New(cfg.ArchiveTimeout, cfg.ArchiveRetries)
	if err != nil {
		slog.Error("failed to create common crawl client", slog.String("err", err.Error()))
	}
	return &ArchiveFetcher{
		crawler:    c,
		cfg:        cfg,
		localCache: cache.New(72*time.Hour, 72*time.Hour), // indexes update every month
	}
}

func (a *ArchiveFetcher) Fetch(_ context.Context, url string) (*model.Page, error) {
	slog.Info("fetching from common crawl.", slog.String("url", url))
	startTime := time.Now()
	p := &model.Page{
		URL:            url,
		CrawlMechanism: model.WebArchive.String(),
	}
	if a.crawler == nil { // the client may not be initialized when the run starts
		slog.Info("connection retry to common crawl.")
		var err error
		a.crawler, err = commoncrawl.New(a.cfg.ArchiveTimeout, a.cfg.ArchiveRetries)
		if err != nil {
			return p, fmt.Errorf("connection to common crawl failed: %w", err)
		}
	}

	indexList, err := a.getIndexes()
	if err != nil {
		return p, err
	}
	requestCfg := common.RequestConfig{
		URL:     url,
		Filters: []string{"statuscode:200", "mimetype:text/html"},
	}

	for i := 0; i < a.cfg.LastCrawlIndexes && i < len(indexList); i++ {
		pages, _ := a.crawler.GetPagesIndex(requestCfg, indexList[i].Id)
		if len(pages) == 0 {
			slog.Debug("no snapshots found in common crawl.", slog.String("url", url),
				slog.String("index", indexList[i].Id))
			continue
		}
		resp, err := a.crawler.GetFile(pages[len(pages)-1]) // last one is the most recent
		if err != nil {
			slog.Error("failed to get file", slog.String("err", err.Error()))
			break
		}
		body := string(resp)
		p.HTML = extractHtml(body)
		p.StatusCode = http.StatusOK
		break
	}
	if p.HTML == "" {
		return p, fmt.Errorf("no snapshots found in common crawl. url: %v", url)
	}

	parsed := extract.ParsePage(p.HTML)
	p.Title = parsed.Title
	if p.Title == "" {
		p.Title = extractTitle(p.HTML)
	}
	p.Text = parsed.Text
	p.TimeToCrawl = time.Since(startTime).Milliseconds()

	return p, nil
}

func (a *ArchiveFetcher) getIndexes() ([]Index, error) {
	if i, ok := a.localCache.Get("indexes"); ok {
		return i.([]Index), nil
	}

	response, err := common.Get(indexListUrl, a.crawler.MaxTimeout, a.crawler.MaxRetries)
	if err != nil {
		return nil, err
	}

	var indexes []Index
	err = jsoniter.Unmarshal(response, &indexes)
	if err != nil {
		return indexes, err
	}
	a.localCache.Set("indexes", indexes, cache.DefaultExpiration)

	return indexes, nil
}

func extractTitle(body string) string {
	match := titleRe.FindStringSubmatch(body)
	if len(match) > 1 {
		return match[1]
	}
	return ""
}

func extractHtml(body string) string {
	match := htmlRe.FindStringSubmatch(body)
	if len(match) > 0 {
		return match[0]
	}
	return ""
}
