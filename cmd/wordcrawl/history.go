package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many searches history lists by default.
const defaultHistoryLimit = 20

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	dbDir    string
	limit    int
	asJSON   bool
	id       int64
	deleteID int64
	verbose  bool
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived searches",
		Long: `History lists the searches archived by "wordcrawl search", newest first.

Use --id to show one search with every page it visited, and --delete to
remove a search from the archive. The archive is never read by the crawler
itself, so every search starts fresh.

Examples:
  # List the last 20 searches
  wordcrawl history

  # Show search 7 in detail
  wordcrawl history --id 7

  # Export the last 100 searches as JSON
  wordcrawl history -n 100 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of searches to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON")
	cmd.Flags().Int64("id", 0,
		"Show the search with this id")
	cmd.Flags().Int64("delete", 0,
		"Delete the search with this id")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the search archive")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}
	return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
}

// parseHistoryFlags reads the history flags.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions
	var err error

	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.asJSON, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.id, err = cmd.Flags().GetInt64("id"); err != nil {
		return opts, err
	}
	if opts.deleteID, err = cmd.Flags().GetInt64("delete"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return opts, err
	}
	opts.verbose = getVerboseFlag(cmd)

	if opts.id != 0 && opts.deleteID != 0 {
		return opts, errors.New("--id and --delete cannot be used together")
	}
	return opts, nil
}

// runHistory opens the archive read-only and dispatches to the requested view.
func runHistory(ctx context.Context, opts historyOptions, out io.Writer) error {
	db, err := database.Open(opts.dbDir, database.MustExistOptions())
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No searches archived yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	switch {
	case opts.deleteID != 0:
		return deleteSearch(ctx, db, opts.deleteID, out)
	case opts.id != 0:
		return showSearch(ctx, db, opts, out)
	default:
		return listSearches(ctx, db, opts, out)
	}
}

// listSearches prints the most recent searches.
func listSearches(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	searches, err := db.ListSearches(ctx, opts.limit)
	if err != nil {
		return err
	}

	if opts.asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(searches)
		return err
	}

	if len(searches) == 0 {
		fmt.Fprintln(out, "No searches archived yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tOUTCOME\tPAGES\tTERM\tSEED\tFOUND AT")
	for _, s := range searches {
		foundAt := s.FoundURL
		if foundAt == "" {
			foundAt = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			s.ID,
			s.StartedAt.Local().Format(time.DateTime),
			outcomeLabel(s),
			s.PagesVisited,
			s.PageBudget,
			s.Term,
			s.Seed,
			foundAt,
		)
	}
	return tw.Flush()
}

// outcomeLabel returns the outcome column text.
func outcomeLabel(s database.SearchSummary) string {
	if s.Reason == "" || string(s.Reason) == s.Outcome.String() {
		return s.Outcome.String()
	}
	return fmt.Sprintf("%s (%s)", s.Outcome, s.Reason)
}

// showSearch prints one archived search with its pages.
func showSearch(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	searchReport, err := db.GetSearch(ctx, opts.id)
	if err != nil {
		return err
	}
	if searchReport == nil {
		return fmt.Errorf("search %d not found", opts.id)
	}

	if opts.asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).Write(searchReport)
		return err
	}

	if _, err := report.NewSimpleWriter(out, report.WithVerbose(opts.verbose)).Write(searchReport); err != nil {
		return err
	}

	pages, err := db.ListPages(ctx, opts.id)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATUS\tCODE\tLINKS\tHASH\tURL")
	for _, p := range pages {
		status := string(p.Status)
		if p.Matched {
			status += " (match)"
		}
		hash := p.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		if hash == "" {
			hash = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\n",
			p.Position+1, status, p.StatusCode, p.LinkCount, hash, p.URL)
	}
	return tw.Flush()
}

// deleteSearch removes one search from the archive.
func deleteSearch(ctx context.Context, db *database.HistoryDB, id int64, out io.Writer) error {
	deleted, err := db.DeleteSearch(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("search %d not found", id)
	}
	fmt.Fprintf(out, "Deleted search %d\n", id)
	return nil
}
