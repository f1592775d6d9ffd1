package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/IliaW/lead-hunter/config"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// The Custom Search API returns at most 10 results per call.
const googleMaxResults = 10

// GoogleSearchProvider queries the Custom Search JSON API.
type GoogleSearchProvider struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogleSearchProvider(ctx context.Context, cfg *config.SearchConfig,
	opts ...option.ClientOption) (*GoogleSearchProvider, error) {
	if cfg.EngineID == "" {
		return nil, errors.New("search.engine_id is required for the google provider")
	}
	if cfg.ApiKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.ApiKey))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearchProvider{svc: svc, cx: cfg.EngineID}, nil
}

func (p *GoogleSearchProvider) Search(ctx context.Context, query string, limit int) ([]string, error) {
	num := int64(googleMaxResults)
	if limit > 0 && limit < googleMaxResults {
		num = int64(limit)
	}
	resp, err := p.svc.Cse.List().Cx(p.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests ||
			apiErr.Code == http.StatusForbidden) {
			return nil, ErrThrottled
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	urls := make([]string, 0, len(resp.Items))
	seen := make(map[string]struct{})
	for _, item := range resp.Items {
		if _, ok := seen[item.Link]; ok || item.Link == "" {
			continue
		}
		seen[item.Link] = struct{}{}
		urls = append(urls, item.Link)
	}

	return urls, nil
}
