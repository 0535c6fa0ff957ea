package model

import "time"

// CrawlReport is the collected result of one crawl run.
// It accumulates outcomes in the order they were reported, so replaying
// it reproduces the live report line for line.
type CrawlReport struct {
	// BaseURL is the normalized seed URL of the crawl.
	BaseURL string `json:"base_url"`

	// StartedAt is the wall-clock time the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total crawl time. Set when the crawl finishes.
	Duration time.Duration `json:"duration"`

	// PagesVisited is the number of distinct URLs dispatched for fetching.
	PagesVisited int `json:"pages_visited"`

	// Outcomes holds one entry per fetched URL, in report order.
	Outcomes []Outcome `json:"outcomes"`

	// Fatal holds the engine-level error message when the crawl aborted.
	// Empty for a normal completion.
	Fatal string `json:"fatal,omitempty"`
}

// NewCrawlReport creates an empty report for the given base URL.
func NewCrawlReport(baseURL string) *CrawlReport {
	return &CrawlReport{
		BaseURL:   baseURL,
		StartedAt: time.Now(),
		Outcomes:  make([]Outcome, 0),
	}
}

// Add appends one fetch outcome to the report.
func (r *CrawlReport) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// BrokenCount returns the number of broken links in the report.
func (r *CrawlReport) BrokenCount() int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Broken() {
			n++
		}
	}
	return n
}

// BrokenOutcomes returns the broken outcomes in report order.
func (r *CrawlReport) BrokenOutcomes() []Outcome {
	broken := make([]Outcome, 0)
	for i := range r.Outcomes {
		if r.Outcomes[i].Broken() {
			broken = append(broken, r.Outcomes[i])
		}
	}
	return broken
}

// Aborted reports whether the crawl ended with an engine-level fatal error.
func (r *CrawlReport) Aborted() bool {
	return r.Fatal != ""
}
