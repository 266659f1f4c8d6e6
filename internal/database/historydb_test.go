package database

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*HistoryDB, func()) {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// newFoundReport builds a finished report where the term was found on the second page.
func newFoundReport() *model.SearchReport {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := &model.SearchReport{
		Seed:       "https://example.com/",
		Term:       "gopher",
		PageBudget: 10,
		StartedAt:  start,
	}
	report.Outcome = &model.Outcome{
		Kind:         model.OutcomeFound,
		Reason:       model.ReasonFound,
		Term:         "gopher",
		URL:          "https://example.com/about",
		PagesVisited: 2,
		Visited:      []string{"https://example.com/", "https://example.com/about"},
		Discovered:   []string{"https://example.com/about", "https://example.com/blog", "https://example.com/about"},
		Pages: []*model.Page{
			{
				URL:         "https://example.com/",
				FinalURL:    "https://example.com/",
				StatusCode:  http.StatusOK,
				ContentType: "text/html",
				Title:       "Home",
				LinkCount:   3,
				Status:      model.FetchStatusOK,
				Hash:        "abc123",
			},
			{
				URL:         "https://example.com/about",
				FinalURL:    "https://example.com/about",
				StatusCode:  http.StatusOK,
				ContentType: "text/html; charset=utf-8",
				Title:       "About",
				Status:      model.FetchStatusOK,
				Matched:     true,
			},
		},
	}
	report.FinishedAt = start.Add(1500 * time.Millisecond)
	return report
}

// newExhaustedReport builds a finished report whose seed could not be fetched.
func newExhaustedReport(seed string) *model.SearchReport {
	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return &model.SearchReport{
		Seed:       seed,
		Term:       "missing",
		PageBudget: 10,
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
		Outcome: &model.Outcome{
			Kind:         model.OutcomeExhausted,
			Reason:       model.ReasonFrontier,
			Term:         "missing",
			PagesVisited: 1,
			Visited:      []string{seed},
			Pages: []*model.Page{
				{
					URL:        seed,
					StatusCode: http.StatusNotFound,
					Status:     model.FetchStatusTransportError,
					Failure:    "unexpected status 404",
				},
			},
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, DBFileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %q, got %q", dbPath, db.Path())
		}
	})

	t.Run("must-exist options fail when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "absent"), MustExistOptions())
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})

	t.Run("must-exist options open an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, MustExistOptions())
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
	})

	t.Run("reopening keeps existing data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.SaveSearch(context.Background(), newFoundReport()); err != nil {
			t.Fatalf("SaveSearch failed: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		list, err := db.ListSearches(context.Background(), 0)
		if err != nil {
			t.Fatalf("ListSearches failed: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expected 1 search after reopen, got %d", len(list))
		}
	})
}

func TestSaveSearch(t *testing.T) {
	t.Parallel()

	t.Run("assigns id and stores pages", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		ctx := context.Background()
		report := newFoundReport()

		id, err := db.SaveSearch(ctx, report)
		if err != nil {
			t.Fatalf("SaveSearch failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("expected positive id, got %d", id)
		}
		if report.ID != id {
			t.Errorf("expected report.ID %d, got %d", id, report.ID)
		}

		pages, err := db.ListPages(ctx, id)
		if err != nil {
			t.Fatalf("ListPages failed: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].URL != "https://example.com/" || pages[0].Position != 0 {
			t.Errorf("unexpected first page: %+v", pages[0])
		}
		if pages[0].Hash != "abc123" {
			t.Errorf("expected hash abc123, got %q", pages[0].Hash)
		}
		if !pages[1].Matched {
			t.Error("expected second page to be marked as matched")
		}
		if pages[1].ContentType != "text/html; charset=utf-8" {
			t.Errorf("unexpected content type %q", pages[1].ContentType)
		}
	})

	t.Run("stores failed pages", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		ctx := context.Background()
		id, err := db.SaveSearch(ctx, newExhaustedReport("https://down.example/"))
		if err != nil {
			t.Fatalf("SaveSearch failed: %v", err)
		}

		pages, err := db.ListPages(ctx, id)
		if err != nil {
			t.Fatalf("ListPages failed: %v", err)
		}
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}
		if pages[0].Status != model.FetchStatusTransportError {
			t.Errorf("expected transport error status, got %q", pages[0].Status)
		}
		if pages[0].StatusCode != http.StatusNotFound {
			t.Errorf("expected status code 404, got %d", pages[0].StatusCode)
		}
		if pages[0].Failure == "" {
			t.Error("expected failure reason to be stored")
		}
	})

	t.Run("rejects report without outcome", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		report := model.NewSearchReport("https://example.com/", "x", 10)
		if _, err := db.SaveSearch(context.Background(), report); err == nil {
			t.Error("expected error for report without outcome")
		}
		if _, err := db.SaveSearch(context.Background(), nil); err == nil {
			t.Error("expected error for nil report")
		}
	})
}

func TestListSearches(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()

	seeds := []string{"https://a.example/", "https://b.example/", "https://c.example/"}
	for _, seed := range seeds {
		if _, err := db.SaveSearch(ctx, newExhaustedReport(seed)); err != nil {
			t.Fatalf("SaveSearch failed: %v", err)
		}
	}
	if _, err := db.SaveSearch(ctx, newFoundReport()); err != nil {
		t.Fatalf("SaveSearch failed: %v", err)
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		list, err := db.ListSearches(ctx, 0)
		if err != nil {
			t.Fatalf("ListSearches failed: %v", err)
		}
		if len(list) != 4 {
			t.Fatalf("expected 4 searches, got %d", len(list))
		}

		newest := list[0]
		if newest.Seed != "https://example.com/" {
			t.Errorf("expected newest seed https://example.com/, got %q", newest.Seed)
		}
		if newest.Outcome != model.OutcomeFound {
			t.Errorf("expected found outcome, got %s", newest.Outcome)
		}
		if newest.Reason != model.ReasonFound {
			t.Errorf("expected reason found, got %q", newest.Reason)
		}
		if newest.FoundURL != "https://example.com/about" {
			t.Errorf("unexpected found URL %q", newest.FoundURL)
		}
		if newest.PagesVisited != 2 {
			t.Errorf("expected 2 pages visited, got %d", newest.PagesVisited)
		}
		if newest.Discovered != 3 {
			t.Errorf("expected 3 discovered links, got %d", newest.Discovered)
		}
		if newest.Duration() != 1500*time.Millisecond {
			t.Errorf("expected duration 1.5s, got %v", newest.Duration())
		}

		oldest := list[3]
		if oldest.Seed != seeds[0] {
			t.Errorf("expected oldest seed %q, got %q", seeds[0], oldest.Seed)
		}
		if oldest.Outcome != model.OutcomeExhausted {
			t.Errorf("expected exhausted outcome, got %s", oldest.Outcome)
		}
		if oldest.FoundURL != "" {
			t.Errorf("expected empty found URL, got %q", oldest.FoundURL)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		list, err := db.ListSearches(ctx, 2)
		if err != nil {
			t.Fatalf("ListSearches failed: %v", err)
		}
		if len(list) != 2 {
			t.Errorf("expected 2 searches, got %d", len(list))
		}
	})
}

func TestListSearchesEmpty(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	list, err := db.ListSearches(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListSearches failed: %v", err)
	}
	if list == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(list) != 0 {
		t.Errorf("expected no searches, got %d", len(list))
	}
}

func TestGetSearch(t *testing.T) {
	t.Parallel()

	t.Run("returns stored report", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		ctx := context.Background()
		saved := newFoundReport()
		id, err := db.SaveSearch(ctx, saved)
		if err != nil {
			t.Fatalf("SaveSearch failed: %v", err)
		}

		got, err := db.GetSearch(ctx, id)
		if err != nil {
			t.Fatalf("GetSearch failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected report, got nil")
		}
		if got.ID != id {
			t.Errorf("expected id %d, got %d", id, got.ID)
		}
		if got.Term != "gopher" {
			t.Errorf("expected term gopher, got %q", got.Term)
		}
		if !got.StartedAt.Equal(saved.StartedAt) {
			t.Errorf("expected start %v, got %v", saved.StartedAt, got.StartedAt)
		}
		if got.Outcome == nil {
			t.Fatal("expected outcome to be restored")
		}
		if !got.Outcome.Found() {
			t.Error("expected found outcome")
		}
		if len(got.Outcome.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(got.Outcome.Pages))
		}
		if len(got.Outcome.Discovered) != 3 {
			t.Errorf("expected 3 discovered links, got %d", len(got.Outcome.Discovered))
		}
	})

	t.Run("missing id returns nil without error", func(t *testing.T) {
		t.Parallel()

		db, cleanup := setupTestDB(t)
		defer cleanup()

		got, err := db.GetSearch(context.Background(), 42)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil report, got %+v", got)
		}
	})
}

func TestDeleteSearch(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id, err := db.SaveSearch(ctx, newFoundReport())
	if err != nil {
		t.Fatalf("SaveSearch failed: %v", err)
	}

	deleted, err := db.DeleteSearch(ctx, id)
	if err != nil {
		t.Fatalf("DeleteSearch failed: %v", err)
	}
	if !deleted {
		t.Error("expected search to be deleted")
	}

	pages, err := db.ListPages(ctx, id)
	if err != nil {
		t.Fatalf("ListPages failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected pages to be removed with the search, got %d", len(pages))
	}

	deleted, err = db.DeleteSearch(ctx, id)
	if err != nil {
		t.Fatalf("DeleteSearch failed: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report nothing deleted")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC3339Nano",
			input: "2026-03-01T10:00:00.5Z",
			want:  time.Date(2026, 3, 1, 10, 0, 0, 500000000, time.UTC),
		},
		{
			name:  "SQLite default",
			input: "2026-03-01 10:00:00",
			want:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "ISO without timezone",
			input: "2026-03-01T10:00:00",
			want:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "invalid",
			input: "yesterday",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
