package model

import (
	"fmt"
	"sort"
	"time"
)

// CrawlTarget is either a literal URL (harvester) or a search query (hunter).
type CrawlTarget struct {
	URL    string
	Query  string
	Region string
}

type FetchStatus string

const (
	FetchSuccess         FetchStatus = "success"
	FetchHTTPError       FetchStatus = "http_error"
	FetchConnectionError FetchStatus = "connection_error"
	FetchArchived        FetchStatus = "archived"
	FetchSkippedPDF      FetchStatus = "pdf"
)

// PageSignal is one visited URL of a crawl run. Failures are recorded, not dropped.
type PageSignal struct {
	VisitedAt  time.Time   `json:"visited_at"`
	Source     string      `json:"source"`
	Region     string      `json:"region,omitempty"`
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Emails     []string    `json:"emails,omitempty"`
	Phones     []string    `json:"phones,omitempty"`
	Relevance  int         `json:"relevance"`
	Keywords   []string    `json:"keywords,omitempty"`
	Status     FetchStatus `json:"status"`
	StatusCode int         `json:"status_code,omitempty"`
}

func (s *PageSignal) StatusText() string {
	switch s.Status {
	case FetchHTTPError:
		return fmt.Sprintf("http error %d", s.StatusCode)
	case FetchConnectionError:
		return "connection error"
	default:
		return string(s.Status)
	}
}

func (s *PageSignal) HasContacts() bool {
	return len(s.Emails) > 0 || len(s.Phones) > 0
}

type ReportKind string

const (
	HarvestReport ReportKind = "harvest"
	HuntReport    ReportKind = "hunt"
)

type LeadReport struct {
	Kind        ReportKind   `json:"kind"`
	GeneratedAt time.Time    `json:"generated_at"`
	Signals     []PageSignal `json:"signals"`
}

// NewLeadReport orders signals by relevance, highest first. Discovery order is kept among
// equal scores.
func NewLeadReport(kind ReportKind, at time.Time, signals []PageSignal) *LeadReport {
	sorted := make([]PageSignal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})
	return &LeadReport{Kind: kind, GeneratedAt: at, Signals: sorted}
}

func (r *LeadReport) Empty() bool {
	return len(r.Signals) == 0
}
