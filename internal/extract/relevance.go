package extract

import (
	"net/url"
	"strings"
)

// Ranker scores a page by keyword presence. Each keyword counts once, whatever its frequency.
type Ranker struct {
	Keywords         []string
	PointsPerKeyword int
}

// Relevance returns the score and the matched keywords in keyword-list order.
func (r Ranker) Relevance(text string) (int, []string) {
	lower := strings.ToLower(text)
	score := 0
	var matched []string
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			score += r.PointsPerKeyword
			matched = append(matched, kw)
		}
	}
	return score, matched
}

// IsPDF reports whether the URL path points to a PDF document. Query and fragment are ignored.
func IsPDF(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return strings.HasSuffix(strings.ToLower(p), ".pdf")
}
