package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// createTestReport creates a finished report where the term was found on
// the third page after one failed fetch.
func createTestReport() *model.SearchReport {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.SearchReport{
		Seed:       "https://example.com/",
		Term:       "gopher",
		PageBudget: 10,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Outcome: &model.Outcome{
			Kind:         model.OutcomeFound,
			Reason:       model.ReasonFound,
			Term:         "gopher",
			URL:          "https://example.com/about",
			PagesVisited: 3,
			Visited: []string{
				"https://example.com/",
				"https://example.com/missing",
				"https://example.com/about",
			},
			Discovered: []string{
				"https://example.com/missing",
				"https://example.com/about",
				"https://example.com/contact",
			},
			Pages: []*model.Page{
				{URL: "https://example.com/", Title: "Home", LinkCount: 3, Status: model.FetchStatusOK, StatusCode: 200},
				{URL: "https://example.com/missing", Status: model.FetchStatusTransportError, StatusCode: 404, Failure: "unexpected status 404"},
				{URL: "https://example.com/about", Title: "About us", Status: model.FetchStatusOK, StatusCode: 200, Matched: true},
			},
		},
	}
}

// createExhaustedReport creates a report that ran out of budget.
func createExhaustedReport(reason model.Reason) *model.SearchReport {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return &model.SearchReport{
		Seed:       "https://example.org/",
		Term:       "absent",
		PageBudget: 1,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Outcome: &model.Outcome{
			Kind:         model.OutcomeExhausted,
			Reason:       reason,
			Term:         "absent",
			PagesVisited: 1,
			Visited:      []string{"https://example.org/"},
			Pages: []*model.Page{
				{URL: "https://example.org/", Title: "Org", Status: model.FetchStatusOK, StatusCode: 200},
			},
		},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"WORDCRAWL REPORT",
			"Seed:           https://example.com/",
			"Term:           gopher",
			"Pages Visited:  3 / 10",
			"Links Found:    3",
			"FOUND at https://example.com/about",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists only failed pages by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "FAILED PAGES") {
			t.Error("expected failed pages section")
		}
		if !strings.Contains(output, "[!] https://example.com/missing") {
			t.Error("expected failed page with indicator")
		}
		if strings.Contains(output, "Title: Home") {
			t.Error("expected successful pages to be omitted")
		}
	})

	t.Run("show pages lists every page", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowPages(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "VISITED PAGES") {
			t.Error("expected visited pages section")
		}
		if !strings.Contains(output, "[*] https://example.com/about") {
			t.Error("expected matched page indicator")
		}
		if !strings.Contains(output, "Title: Home") {
			t.Error("expected page title")
		}
	})

	t.Run("verbose mode lists discovered links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "DISCOVERED LINKS") {
			t.Error("expected discovered links section")
		}
		if !strings.Contains(output, "https://example.com/contact") {
			t.Error("expected discovered link in output")
		}
	})

	t.Run("exhausted report names the reason", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createExhaustedReport(model.ReasonBudget)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "NOT FOUND (page budget reached)") {
			t.Error("expected not found status with reason")
		}
		if !strings.Contains(output, "Visited 1 web page(s)") {
			t.Error("expected summary line in footer")
		}
		if strings.Contains(output, "FAILED PAGES") {
			t.Error("expected no failed pages section")
		}
	})

	t.Run("handles report without outcome", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(model.NewSearchReport("https://example.com/", "x", 10)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Incomplete") {
			t.Error("expected incomplete status")
		}
	})
}

func TestSimpleWriterWriteOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcome  *model.Outcome
		expected string
	}{
		{
			name:     "found",
			outcome:  createTestReport().Outcome,
			expected: "Word gopher found at https://example.com/about\n",
		},
		{
			name:     "exhausted",
			outcome:  createExhaustedReport(model.ReasonFrontier).Outcome,
			expected: "Visited 1 web page(s)\n",
		},
		{
			name:     "nil",
			outcome:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			n, err := NewSimpleWriter(&buf).WriteOutcome(tt.outcome)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
			if n != len(tt.expected) {
				t.Errorf("expected %d bytes, got %d", len(tt.expected), n)
			}
		})
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.SearchReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Term != "gopher" {
			t.Errorf("expected term gopher, got %q", decoded.Term)
		}
		if decoded.Outcome == nil || decoded.Outcome.Kind != model.OutcomeFound {
			t.Error("expected found outcome to round trip")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := strings.TrimSuffix(buf.String(), "\n")
		if strings.Contains(output, "\n") {
			t.Error("expected compact output on a single line")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"seed\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n>\t\"seed\"") {
			t.Error("expected custom prefix and tab indentation")
		}
	})

	t.Run("WriteOutcome outputs outcome only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteOutcome(createTestReport().Outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["kind"] != "found" {
			t.Errorf("expected kind found, got %v", decoded["kind"])
		}
		if _, ok := decoded["seed"]; ok {
			t.Error("expected no report fields in outcome output")
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "v1.2.3")

	if _, err := w.Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("expected version v1.2.3, got %q", decoded.Version)
	}
	if decoded.Summary != "Word gopher found at https://example.com/about" {
		t.Errorf("unexpected summary %q", decoded.Summary)
	}
	if decoded.Report == nil || decoded.Report.Seed != "https://example.com/" {
		t.Error("expected wrapped report")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# wordcrawl Report") {
			t.Error("expected markdown title")
		}
		if !strings.Contains(output, "`gopher`") {
			t.Error("expected term in header table")
		}
		if !strings.Contains(output, "term found") {
			t.Error("expected stop reason")
		}
	})

	t.Run("found outcome uses tip alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected TIP alert for found outcome")
		}
	})

	t.Run("exhausted outcome uses note alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createExhaustedReport(model.ReasonBudget)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!NOTE]") {
			t.Error("expected NOTE alert for exhausted outcome")
		}
		if !strings.Contains(output, "without finding `absent`") {
			t.Error("expected term in note")
		}
	})

	t.Run("cancelled outcome uses caution alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createExhaustedReport(model.ReasonCancelled)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected CAUTION alert for cancelled search")
		}
	})

	t.Run("writes pages table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Visited Pages") {
			t.Error("expected visited pages heading")
		}
		if !strings.Contains(output, "unexpected status 404") {
			t.Error("expected failure reason in table")
		}
		if !strings.Contains(output, "About us") {
			t.Error("expected page title in table")
		}
	})

	t.Run("includes pie chart when a fetch failed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "pie") {
			t.Error("expected mermaid pie chart")
		}
	})

	t.Run("omits pie chart when every fetch succeeded", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createExhaustedReport(model.ReasonBudget)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart")
		}
	})

	t.Run("handles report without pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewSearchReport("https://example.com/", "x", 10)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages were visited.") {
			t.Error("expected empty pages message")
		}
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected WARNING alert for incomplete search")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/nao1215/wordcrawl") {
			t.Error("expected footer link")
		}
	})

	t.Run("WriteOutcome writes only the alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteOutcome(createTestReport().Outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Word gopher found at https://example.com/about") {
			t.Error("expected outcome summary")
		}
		if strings.Contains(output, "Visited Pages") {
			t.Error("expected no pages section")
		}
	})
}

// failingWriter is a Writer that always fails.
type failingWriter struct{}

func (failingWriter) Write(*model.SearchReport) (int, error) {
	return 0, errors.New("disk full")
}

func (failingWriter) WriteOutcome(*model.Outcome) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := m.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
	})

	t.Run("WriteOutcome writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&a), NewSimpleWriter(&b))

		if _, err := m.WriteOutcome(createTestReport().Outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.String() != b.String() || a.Len() == 0 {
			t.Error("expected identical output in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))

		if _, err := m.Write(createTestReport()); err == nil {
			t.Error("expected error from failing writer")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes, got %d", n)
		}
	})
}

func TestCountStatuses(t *testing.T) {
	t.Parallel()

	got := countStatuses(createTestReport().Outcome)
	if got.ok != 2 || got.transport != 1 || got.contentType != 0 {
		t.Errorf("unexpected counts: %+v", got)
	}

	if empty := countStatuses(nil); empty != (statusCounts{}) {
		t.Errorf("expected zero counts for nil outcome, got %+v", empty)
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
