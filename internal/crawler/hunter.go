package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/extract"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/IliaW/lead-hunter/internal/telemetry"
)

// Hunter expands search queries into result URLs, visits each URL at most once per run and
// ranks the pages by keyword relevance.
type Hunter struct {
	queries       []string
	provider      SearchProvider
	linksPerQuery int
	visitor       *visitor
	ranker        extract.Ranker
	contactLimit  int
	pdfScore      int
	pdfTitle      string
	unknownTitle  string
	metrics       *telemetry.CrawlMetrics
	now           func() time.Time
}

func NewHunter(cfg *config.HunterConfig, provider SearchProvider, fetcher, archive Fetcher,
	metrics *telemetry.CrawlMetrics) *Hunter {
	if metrics == nil {
		metrics = telemetry.NoopMetrics().CrawlMetrics
	}
	return &Hunter{
		queries:       cfg.Queries,
		provider:      provider,
		linksPerQuery: cfg.LinksPerQuery,
		visitor:       newVisitor(fetcher, archive, NewPacer(cfg.Pacing), metrics),
		ranker: extract.Ranker{
			Keywords:         cfg.Keywords,
			PointsPerKeyword: cfg.PointsPerKeyword,
		},
		contactLimit: cfg.ContactLimit,
		pdfScore:     cfg.PdfScore,
		pdfTitle:     cfg.PdfTitle,
		unknownTitle: cfg.UnknownTitle,
		metrics:      metrics,
		now:          time.Now,
	}
}

// Run never fails. Provider errors skip the query after a backoff pause, fetch errors
// become rows.
func (h *Hunter) Run(ctx context.Context) *model.LeadReport {
	slog.Info("hunt started.", slog.Int("queries", len(h.queries)))
	var signals []model.PageSignal
	seen := make(map[string]struct{})

	for _, query := range h.queries {
		if ctx.Err() != nil {
			slog.Warn("hunt interrupted.", slog.Int("visited", len(signals)))
			break
		}
		slog.Info("searching.", slog.String("query", query))
		urls, err := h.provider.Search(ctx, query, h.linksPerQuery)
		if err != nil {
			perr := &ProviderError{Query: query, Err: err}
			slog.Error("search failed.", slog.String("err", perr.Error()))
			h.metrics.SearchFailedCnt(1)
			h.visitor.pacer.Backoff()
			continue
		}
		slog.Info("search results received.", slog.String("query", query), slog.Int("links", len(urls)))

		for _, url := range urls {
			if _, ok := seen[url]; ok {
				slog.Debug("url already visited in this run.", slog.String("url", url))
				continue
			}
			seen[url] = struct{}{}
			if ctx.Err() != nil {
				break
			}
			signals = append(signals, h.inspect(ctx, query, url))
		}
	}

	report := model.NewLeadReport(model.HuntReport, h.now(), signals)
	if report.Empty() {
		slog.Warn("hunt produced no results.")
	} else {
		slog.Info("hunt finished.", slog.Int("rows", len(report.Signals)))
	}

	return report
}

func (h *Hunter) inspect(ctx context.Context, query, url string) model.PageSignal {
	s := model.PageSignal{
		VisitedAt: h.now(),
		Source:    query,
		URL:       url,
		Title:     h.unknownTitle,
	}
	if extract.IsPDF(url) {
		s.Title = h.pdfTitle
		s.Relevance = h.pdfScore
		s.Status = model.FetchSkippedPDF
		return s
	}

	page := h.visitor.visit(ctx, url, &s)
	if page == nil {
		return s
	}
	if page.Title != "" {
		s.Title = page.Title
	}
	s.Emails, s.Phones = extract.Contacts(page.Text, h.contactLimit)
	s.Relevance, s.Keywords = h.ranker.Relevance(page.Text)
	if s.HasContacts() {
		slog.Info("contacts found.", slog.String("url", url),
			slog.Any("emails", s.Emails), slog.Any("phones", s.Phones))
	}

	return s
}
