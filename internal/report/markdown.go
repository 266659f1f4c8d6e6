package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/wordcrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SearchReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeOutcome(md, report.Outcome)
	w.writePages(md, report.Outcome)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteOutcome outputs only the outcome alert in Markdown format.
func (w *MarkdownWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeOutcome(md, outcome)
	return len(md.String()), md.Build()
}

// writeHeader writes the report header with search information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SearchReport) {
	md.H1("wordcrawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + report.Seed + "`"},
		{"Term", "`" + report.Term + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration().Round(time.Millisecond).String()},
		{"Page Budget", strconv.Itoa(report.PageBudget)},
	}
	if report.Outcome != nil {
		rows = append(rows,
			[]string{"Pages Visited", strconv.Itoa(report.Outcome.PagesVisited)},
			[]string{"Links Discovered", strconv.Itoa(report.DiscoveredCount())},
			[]string{"Stopped Because", reasonText(report.Outcome.Reason)},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOutcome writes an alert stating whether the term was found.
func (w *MarkdownWriter) writeOutcome(md *markdown.Markdown, outcome *model.Outcome) {
	switch {
	case outcome == nil:
		md.Warningf("The search did not complete.")
	case outcome.Found():
		md.Tip(outcome.Summary())
	case outcome.Reason == model.ReasonCancelled:
		md.Cautionf("Search cancelled. %s", outcome.Summary())
	default:
		md.Note(outcome.Summary() + " without finding `" + outcome.Term + "`.")
	}
	md.PlainText("")
}

// writePages writes the visited pages table and the status chart.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, outcome *model.Outcome) {
	md.H2("Visited Pages")
	md.PlainText("")

	if outcome == nil || len(outcome.Pages) == 0 {
		md.PlainText("No pages were visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(outcome.Pages))
	for i, p := range outcome.Pages {
		title := p.Title
		if title == "" {
			title = "-"
		}
		note := p.Failure
		if p.Matched {
			note = "term found"
		}
		if note == "" {
			note = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncateString(p.URL, 60),
			string(p.Status),
			truncateString(title, 40),
			strconv.Itoa(p.LinkCount),
			truncateString(note, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Status", "Title", "Links", "Note"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, outcome)
}

// writePieChart writes a mermaid pie chart of page fetch statuses.
// Nothing is written when every page was fetched successfully.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, outcome *model.Outcome) {
	counts := countStatuses(outcome)
	if counts.transport == 0 && counts.contentType == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Results"),
		piechart.WithShowData(true),
	)

	if counts.ok > 0 {
		chart.LabelAndIntValue("HTML", uint64(counts.ok))
	}
	if counts.transport > 0 {
		chart.LabelAndIntValue("Transport error", uint64(counts.transport))
	}
	if counts.contentType > 0 {
		chart.LabelAndIntValue("Not HTML", uint64(counts.contentType))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordcrawl](https://github.com/nao1215/wordcrawl)*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
