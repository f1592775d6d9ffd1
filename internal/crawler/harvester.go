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

// Harvester visits a fixed list of academy sites once each and keeps the page title and
// the first emails found on it.
type Harvester struct {
	targets      []model.CrawlTarget
	visitor      *visitor
	emailLimit   int
	unknownTitle string
	now          func() time.Time
}

// NewHarvester accepts a nil archive when the fallback is disabled.
func NewHarvester(cfg *config.HarvesterConfig, fetcher, archive Fetcher,
	metrics *telemetry.CrawlMetrics) *Harvester {
	targets := make([]model.CrawlTarget, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, model.CrawlTarget{URL: t.URL, Region: t.Region})
	}
	return &Harvester{
		targets:      targets,
		visitor:      newVisitor(fetcher, archive, NewPacer(cfg.Pacing), metrics),
		emailLimit:   cfg.EmailLimit,
		unknownTitle: cfg.UnknownTitle,
		now:          time.Now,
	}
}

// Run never fails: unreachable sites become rows with an error status. A cancelled context
// stops the run and returns what was collected so far.
func (h *Harvester) Run(ctx context.Context) *model.LeadReport {
	slog.Info("harvest started.", slog.Int("targets", len(h.targets)))
	signals := make([]model.PageSignal, 0, len(h.targets))
	for _, target := range h.targets {
		if ctx.Err() != nil {
			slog.Warn("harvest interrupted.", slog.Int("visited", len(signals)))
			break
		}
		signals = append(signals, h.inspect(ctx, target))
	}
	report := model.NewLeadReport(model.HarvestReport, h.now(), signals)
	slog.Info("harvest finished.", slog.Int("rows", len(report.Signals)))

	return report
}

func (h *Harvester) inspect(ctx context.Context, target model.CrawlTarget) model.PageSignal {
	s := model.PageSignal{
		VisitedAt: h.now(),
		Source:    target.URL,
		Region:    target.Region,
		URL:       target.URL,
		Title:     h.unknownTitle,
	}
	page := h.visitor.visit(ctx, target.URL, &s)
	if page == nil {
		return s
	}
	if page.Title != "" {
		s.Title = page.Title
	}
	s.Emails = extract.Emails(page.Text, h.emailLimit)
	if len(s.Emails) == 0 {
		slog.Debug("no email visible on the page.", slog.String("url", target.URL))
	} else {
		slog.Info("emails found.", slog.String("url", target.URL), slog.Any("emails", s.Emails))
	}

	return s
}
