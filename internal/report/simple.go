package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports for the terminal.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showPages lists every visited page, not only the failed ones.
	showPages bool

	// verbose adds the discovered-link list to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowPages configures the writer to list every visited page.
func WithShowPages(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showPages = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.SearchReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writePages(&sb, report.Outcome)
	if w.verbose {
		w.writeDiscovered(&sb, report.Outcome)
	}
	w.writeFooter(&sb, report.Outcome)

	return w.output.Write([]byte(sb.String()))
}

// WriteOutcome outputs the one-line outcome message.
func (w *SimpleWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	if outcome == nil {
		return 0, nil
	}
	return fmt.Fprintln(w.output, outcome.Summary())
}

// writeHeader writes the report header with search information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SearchReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WORDCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:           %s\n", report.Seed)
	fmt.Fprintf(sb, "Term:           %s\n", report.Term)
	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", report.Duration().Round(time.Millisecond))

	outcome := report.Outcome
	if outcome == nil {
		sb.WriteString("Status:         Incomplete\n\n")
		return
	}

	fmt.Fprintf(sb, "Pages Visited:  %d / %d\n", outcome.PagesVisited, report.PageBudget)
	fmt.Fprintf(sb, "Links Found:    %d\n", report.DiscoveredCount())
	if outcome.Found() {
		fmt.Fprintf(sb, "Status:         FOUND at %s\n", outcome.URL)
	} else {
		fmt.Fprintf(sb, "Status:         NOT FOUND (%s)\n", reasonText(outcome.Reason))
	}
	sb.WriteString("\n")
}

// writePages writes the visited pages section.
// Without showPages only failed pages are listed.
func (w *SimpleWriter) writePages(sb *strings.Builder, outcome *model.Outcome) {
	if outcome == nil {
		return
	}

	pages := outcome.Pages
	title := "VISITED PAGES"
	if !w.showPages {
		pages = outcome.FailedPages()
		title = "FAILED PAGES"
	}
	if len(pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range pages {
		fmt.Fprintf(sb, "  [%s] %s\n", pageIndicator(p), p.URL)
		if p.Title != "" {
			fmt.Fprintf(sb, "    Title: %s\n", p.Title)
		}
		if p.Fetched() {
			fmt.Fprintf(sb, "    Links: %d\n", p.LinkCount)
		}
		if p.Failure != "" {
			fmt.Fprintf(sb, "    Failure: %s\n", p.Failure)
		}
	}
	sb.WriteString("\n")
}

// writeDiscovered writes every extracted link in discovery order.
func (w *SimpleWriter) writeDiscovered(sb *strings.Builder, outcome *model.Outcome) {
	if outcome == nil || len(outcome.Discovered) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DISCOVERED LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, link := range outcome.Discovered {
		fmt.Fprintf(sb, "  %s\n", link)
	}
	sb.WriteString("\n")
}

// pageIndicator returns a short marker for a page's fetch status.
func pageIndicator(p *model.Page) string {
	switch {
	case p.Matched:
		return "*"
	case p.Status == model.FetchStatusOK:
		return "+"
	case p.Status == model.FetchStatusContentTypeError:
		return "?"
	default:
		return "!"
	}
}

// writeFooter writes the outcome line and the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, outcome *model.Outcome) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if outcome != nil {
		sb.WriteString(outcome.Summary())
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", 70))
		sb.WriteString("\n")
	}
}
