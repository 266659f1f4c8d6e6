package model

import "time"

// SearchReport is what the report writers and the archive consume.
// It wraps an Outcome with the parameters the search was started with.
type SearchReport struct {
	// ID is the archive row id. Zero until the report is saved.
	ID int64 `json:"id,omitempty"`

	// Seed is the starting URL.
	Seed string `json:"seed"`

	// Term is the search term.
	Term string `json:"term"`

	// PageBudget is the maximum number of pages the search was allowed to visit.
	PageBudget int `json:"page_budget"`

	// StartedAt is when the search began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the search returned.
	FinishedAt time.Time `json:"finished_at"`

	// Outcome is the search result. Nil until Complete is called.
	Outcome *Outcome `json:"outcome"`
}

// NewSearchReport creates a report for a search that is about to start.
func NewSearchReport(seed, term string, pageBudget int) *SearchReport {
	return &SearchReport{
		Seed:       seed,
		Term:       term,
		PageBudget: pageBudget,
		StartedAt:  time.Now(),
	}
}

// Complete attaches the outcome and stamps the finish time.
func (r *SearchReport) Complete(outcome *Outcome) {
	r.Outcome = outcome
	r.FinishedAt = time.Now()
}

// Duration returns how long the search took.
// Returns zero if the search has not completed.
func (r *SearchReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DiscoveredCount returns the number of links extracted during the run.
func (r *SearchReport) DiscoveredCount() int {
	if r.Outcome == nil {
		return 0
	}
	return len(r.Outcome.Discovered)
}
