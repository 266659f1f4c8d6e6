package model

import (
	"fmt"
	"strings"
)

// OutcomeKind is the terminal state of a search.
//
// Design decision: Only two kinds exist. Every failure that can happen
// during a crawl (transport errors, non-HTML responses, an empty frontier)
// is absorbed by the engine, so callers never have to handle a third state.
// Why the search ended is carried separately in Reason.
type OutcomeKind int

const (
	// OutcomeExhausted means the search stopped without finding the term.
	OutcomeExhausted OutcomeKind = iota

	// OutcomeFound means a fetched page contained the term.
	OutcomeFound
)

// String returns a human-readable representation of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so that JSON output carries
// the name instead of the number.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcomeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseOutcomeKind converts a name produced by String back into a kind.
func ParseOutcomeKind(s string) (OutcomeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "found":
		return OutcomeFound, nil
	case "exhausted":
		return OutcomeExhausted, nil
	default:
		return OutcomeExhausted, fmt.Errorf("unknown outcome kind %q", s)
	}
}

// Reason explains why a search stopped.
type Reason string

const (
	// ReasonFound is used with OutcomeFound.
	ReasonFound Reason = "found"

	// ReasonBudget means the page budget was reached.
	ReasonBudget Reason = "budget"

	// ReasonFrontier means the pending queue ran dry before the budget was
	// reached.
	ReasonFrontier Reason = "frontier"

	// ReasonCancelled means the caller's context was cancelled.
	ReasonCancelled Reason = "cancelled"
)

// Outcome is the result of one search.
type Outcome struct {
	// Kind is found or exhausted.
	Kind OutcomeKind `json:"kind"`

	// Reason tells which termination condition fired.
	Reason Reason `json:"reason"`

	// Term is the search term as given by the caller.
	Term string `json:"term"`

	// URL is the page that contained the term. Empty unless Kind is found.
	URL string `json:"url,omitempty"`

	// PagesVisited is the size of the visited set when the search stopped.
	PagesVisited int `json:"pages_visited"`

	// Visited lists the crawl targets in the order they were chosen.
	Visited []string `json:"visited"`

	// Discovered lists every absolute link extracted during the run, in
	// discovery order and without de-duplication.
	Discovered []string `json:"discovered,omitempty"`

	// Pages holds one record per visited URL.
	Pages []*Page `json:"pages,omitempty"`
}

// Found reports whether the term was found.
func (o *Outcome) Found() bool {
	return o.Kind == OutcomeFound
}

// Summary returns the one-line result message shown to users.
func (o *Outcome) Summary() string {
	if o.Found() {
		return fmt.Sprintf("Word %s found at %s", o.Term, o.URL)
	}
	return fmt.Sprintf("Visited %d web page(s)", o.PagesVisited)
}

// FailedPages returns the pages whose fetch did not produce a document.
func (o *Outcome) FailedPages() []*Page {
	failed := make([]*Page, 0)
	for _, p := range o.Pages {
		if !p.Fetched() {
			failed = append(failed, p)
		}
	}
	return failed
}
