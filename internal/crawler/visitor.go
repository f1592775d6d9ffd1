package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/IliaW/lead-hunter/internal/telemetry"
)

// visitor is the fetch step shared by both pipelines. It paces, fetches, records the
// outcome on the signal and falls back to the archive on connection failures. The archive
// fetch is paced like any other.
type visitor struct {
	fetcher Fetcher
	archive Fetcher
	pacer   *Pacer
	metrics *telemetry.CrawlMetrics
}

func newVisitor(fetcher, archive Fetcher, pacer *Pacer, metrics *telemetry.CrawlMetrics) *visitor {
	if metrics == nil {
		metrics = telemetry.NoopMetrics().CrawlMetrics
	}
	return &visitor{
		fetcher: fetcher,
		archive: archive,
		pacer:   pacer,
		metrics: metrics,
	}
}

// visit returns nil when nothing usable was fetched. The signal status is set in every case.
func (v *visitor) visit(ctx context.Context, url string, s *model.PageSignal) *model.Page {
	v.pacer.Wait()
	page, err := v.fetcher.Fetch(ctx, url)
	if err == nil {
		s.Status = model.FetchSuccess
		s.StatusCode = page.StatusCode
		v.metrics.PageSuccessCnt(1)
		slog.Debug("page fetched.", slog.String("url", url),
			slog.String("mechanism", page.CrawlMechanism),
			slog.Int64("time_ms", page.TimeToCrawl))
		return page
	}
	v.metrics.PageFailedCnt(1)

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && !fetchErr.ConnectionFailure() {
		s.Status = model.FetchHTTPError
		s.StatusCode = fetchErr.StatusCode
		slog.Warn("site answered with an error.", slog.String("url", url),
			slog.Int("status", fetchErr.StatusCode))
		if fetchErr.StatusCode == http.StatusTooManyRequests {
			v.pacer.Backoff()
		}
		return nil
	}

	s.Status = model.FetchConnectionError
	slog.Warn("site unreachable.", slog.String("url", url), slog.String("err", err.Error()))
	if v.archive == nil {
		return nil
	}
	v.metrics.ArchiveCnt(1)
	v.pacer.Wait()
	archived, err := v.archive.Fetch(ctx, url)
	if err != nil {
		slog.Debug("archive fallback failed.", slog.String("url", url), slog.String("err", err.Error()))
		return nil
	}
	s.Status = model.FetchArchived
	s.StatusCode = archived.StatusCode

	return archived
}
