package model

type CrawlMechanism int

const (
	Curl CrawlMechanism = iota
	HeadlessBrowser
	WebArchive
)

func (cm CrawlMechanism) String() string {
	return [...]string{"curl", "headless browser", "web archive"}[cm]
}

// Page is a fetched document. Text holds the visible text used for contact extraction
// and relevance ranking.
type Page struct {
	URL            string `json:"url"`
	Title          string `json:"title"`
	HTML           string `json:"html,omitempty"`
	Text           string `json:"text,omitempty"`
	StatusCode     int    `json:"status_code"`
	TimeToCrawl    int64  `json:"time_to_crawl"` // in milliseconds
	CrawlMechanism string `json:"crawl_mechanism"`
}
