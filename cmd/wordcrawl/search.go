package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/httpclient"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <seed-url> <term>",
		Short: "Crawl from a seed URL until a page mentions the term",
		Long: `Search fetches the seed URL, then the pages it links to in the order the
links were found, and stops at the first page whose visible text contains
the term. Matching ignores case. The search also stops once the page budget
is used up or no unvisited links remain.

Both outcomes exit with status 0. Pages that cannot be fetched or are not
HTML count against the budget and are reported, but do not stop the search.

Examples:
  # Look for "gopher" starting at go.dev
  wordcrawl search https://go.dev/ gopher

  # Allow up to 50 pages
  wordcrawl search -p 50 https://example.com/ "privacy policy"

  # Route requests through a SOCKS5 proxy
  wordcrawl search -x 127.0.0.1:9050 https://example.com/ contact

  # Write a Markdown report to a file
  wordcrawl search -m -o report.md https://example.com/ pricing

Configuration file (.wordcrawl) example:
  defaults:
    userAgent: "Mozilla/5.0 (compatible; wordcrawl)"
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      pageBudget: 25`,
		Args: cobra.ExactArgs(2),
		RunE: runSearchCmd,
	}

	// Crawl flags
	cmd.Flags().IntP("pages", "p", config.DefaultPageBudget,
		"Maximum number of pages to visit, the seed included")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().Int("max-redirects", config.DefaultMaxRedirects,
		"Maximum number of redirects followed per page")
	cmd.Flags().BoolP("insecure", "k", false,
		"Skip TLS certificate verification")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write the report to this file (creates directories if needed)")

	// Archive flags
	cmd.Flags().Bool("no-save", false,
		"Do not archive the search")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the search archive")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	// Interrupts cancel the search; the engine stops before its next page
	// and the partial result is still reported and archived.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.PageBudget, err = cmd.Flags().GetInt("pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.MaxRedirects, err = cmd.Flags().GetInt("max-redirects")
	if err != nil {
		return nil, err
	}

	cfg.InsecureSkipVerify, err = cmd.Flags().GetBool("insecure")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given config file must exist. Without one, a missing
	// file just means no site settings.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.Settings, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getPersistentBool(cmd, "log-json")

	if len(args) > 0 {
		cfg.Seed = args[0]
	}
	if len(args) > 1 {
		cfg.Term = args[1]
	}

	return cfg, nil
}

// runSearch executes one search and reports it.
// Progress lines go to stdout unless a machine-readable report is written
// there, in which case they go to stderr.
func runSearch(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	client, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return err
	}

	fetcher := newFetcher(client, cfg)
	budget := cfg.PageBudgetFor(seedHost(cfg.Seed))

	progress := stdout
	if cfg.JSONReport || cfg.MarkdownReport {
		progress = stderr
	}

	engine := crawler.NewEngine(fetcher,
		crawler.WithPageBudget(budget),
		crawler.WithLogger(logger),
		crawler.WithEventHandler(func(ev crawler.Event) {
			fmt.Fprintln(progress, ev.String())
		}),
	)

	logger.Info("starting search",
		"seed", cfg.Seed,
		"term", cfg.Term,
		"pageBudget", engine.PageBudget(),
		"proxy", cfg.ProxyAddress,
		"archive", cfg.DatabasePath(),
		"saveToDB", cfg.SaveToDB,
	)

	searchReport := model.NewSearchReport(cfg.Seed, cfg.Term, engine.PageBudget())
	outcome, searchErr := engine.Search(ctx, cfg.Seed, cfg.Term)
	if outcome == nil {
		return searchErr
	}
	searchReport.Complete(outcome)

	if err := outputReport(cfg, searchReport, stdout); err != nil {
		logger.Error("report failed", "error", err)
	}

	if err := saveSearchReport(ctx, cfg, searchReport, logger); err != nil {
		logger.Error("failed to save search", "error", err)
	}

	if searchErr != nil {
		return fmt.Errorf("search interrupted: %w", searchErr)
	}
	return nil
}

// newHTTPClient builds the HTTP client, verifying the proxy first when one
// is configured.
func newHTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	opts := []httpclient.Option{
		httpclient.WithMaxRedirects(cfg.MaxRedirects),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, httpclient.WithTLSConfig(&tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in via --insecure
		}))
	}
	if cfg.ProxyAddress != "" {
		if err := httpclient.CheckProxy(ctx, cfg.ProxyAddress).Err(); err != nil {
			return nil, fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				cfg.ProxyAddress, err)
		}
		opts = append(opts, httpclient.WithSOCKS5Proxy(cfg.ProxyAddress))
	}

	client, err := httpclient.New(cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// newFetcher creates the HTTP fetcher with the configured limits and the
// per-site settings from the config file.
func newFetcher(client *http.Client, cfg *config.Config) *crawler.HTTPFetcher {
	return crawler.NewHTTPFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithSiteSettings(func(host string) crawler.SiteSettings {
			site := cfg.SiteConfig(host)
			return crawler.SiteSettings{
				Cookie:    site.Cookie,
				Headers:   site.Headers,
				UserAgent: site.UserAgent,
			}
		}),
	)
}

// seedHost returns the host of the seed URL, or "" if it cannot be parsed.
func seedHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return u.Host
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes the report to stdout and, when configured, to the
// report file.
func outputReport(cfg *config.Config, searchReport *model.SearchReport, stdout io.Writer) error {
	writers := []report.Writer{newReportWriter(cfg, stdout)}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list every visited URL, so only the owner may read them.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		writers = append(writers, newReportWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(searchReport)
	return err
}

// saveSearchReport archives the search unless archiving is disabled.
func saveSearchReport(ctx context.Context, cfg *config.Config, searchReport *model.SearchReport, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// The search context may already be cancelled by an interrupt; the
	// partial result is still worth keeping.
	id, err := db.SaveSearch(context.WithoutCancel(ctx), searchReport)
	if err != nil {
		return err
	}

	logger.Info("search saved to database", "id", id, "path", db.Path())
	return nil
}

