package report

import (
	"io"

	"github.com/nao1215/wordcrawl/internal/model"
)

// Writer defines the interface for report output.
// Implementations write search results in various formats.
type Writer interface {
	// Write outputs the full report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SearchReport) (int, error)

	// WriteOutcome outputs only the outcome of a search, without the
	// per-page detail.
	WriteOutcome(outcome *model.Outcome) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.SearchReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteOutcome outputs the outcome to all configured Writers.
func (m *MultiWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteOutcome(outcome)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusCounts tallies pages by fetch status.
type statusCounts struct {
	ok          int
	transport   int
	contentType int
}

// countStatuses returns the per-status page counts of an outcome.
func countStatuses(outcome *model.Outcome) statusCounts {
	var c statusCounts
	if outcome == nil {
		return c
	}
	for _, p := range outcome.Pages {
		switch p.Status {
		case model.FetchStatusOK:
			c.ok++
		case model.FetchStatusTransportError:
			c.transport++
		case model.FetchStatusContentTypeError:
			c.contentType++
		}
	}
	return c
}

// reasonText describes why a search stopped.
func reasonText(reason model.Reason) string {
	switch reason {
	case model.ReasonFound:
		return "term found"
	case model.ReasonBudget:
		return "page budget reached"
	case model.ReasonFrontier:
		return "no more links to follow"
	case model.ReasonCancelled:
		return "cancelled"
	default:
		return string(reason)
	}
}
