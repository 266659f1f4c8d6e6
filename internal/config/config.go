package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultPageBudget is the number of pages a search may visit.
	// Ten pages keep a search short enough to run interactively while still
	// reaching the pages one or two clicks away from a typical landing page.
	DefaultPageBudget = 10

	// DefaultTimeout bounds each HTTP request, redirects included.
	DefaultTimeout = 30 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "wordcrawl"

	// DefaultUserAgent is a desktop browser string. Many sites answer
	// unknown clients with reduced pages, which would hide the term.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/535.1 (KHTML, like Gecko) Chrome/13.0.782.112 Safari/535.1"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DatabaseFile is the name of the search archive inside DBDir.
	DatabaseFile = "wordcrawl.db"

	// DefaultMaxRedirects is how many redirects a single fetch follows.
	DefaultMaxRedirects = 10
)

// Config holds all configuration options for wordcrawl.
// This struct is populated from CLI flags and passed through the application
// rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is small and every command reads only a few of them.
type Config struct {
	// Seed is the URL the search starts from.
	Seed string

	// Term is the word or phrase to look for. Matching ignores case.
	Term string

	// PageBudget is the maximum number of pages to visit, the seed included.
	PageBudget int

	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// MaxRedirects is how many redirects a fetch follows before the 3xx
	// response is recorded as a failed page. Zero uses the default (10).
	MaxRedirects int

	// InsecureSkipVerify disables TLS certificate verification.
	// Only meant for test servers with self-signed certificates.
	InsecureSkipVerify bool

	// LogJSON writes log records as JSON instead of text.
	LogJSON bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wordcrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Settings holds the per-site settings loaded from the config file.
	// Nil when no file was found.
	Settings *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file in addition to stdout.
	ReportFile string

	// DBDir is the directory of the search archive.
	// Defaults to the XDG data directory (~/.local/share/wordcrawl on Linux).
	DBDir string

	// SaveToDB indicates whether finished searches are archived.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		PageBudget:   DefaultPageBudget,
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		MaxRedirects: DefaultMaxRedirects,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
	}
}

// XDGDataDir returns the XDG data directory for wordcrawl.
// On Linux: ~/.local/share/wordcrawl
// On macOS: ~/Library/Application Support/wordcrawl
// On Windows: %LOCALAPPDATA%\wordcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordcrawl.
// On Linux: ~/.config/wordcrawl
// On macOS: ~/Library/Application Support/wordcrawl
// On Windows: %APPDATA%\wordcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DatabasePath returns the path of the search archive.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DBDir, DatabaseFile)
}

// Validate checks if the configuration is valid for a search.
// It returns the first problem found.
//
// Design decision: We validate once after CLI parsing, before any network
// activity, so that mistakes surface as clear messages instead of a search
// that silently visits nothing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Seed) == "" {
		return ErrNoSeed
	}

	if c.Term == "" {
		return ErrNoTerm
	}

	if c.PageBudget <= 0 {
		return ErrInvalidPageBudget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}

	return nil
}

// SiteConfig returns the merged site settings for host.
// Without a settings file the zero SiteConfig is returned.
func (c *Config) SiteConfig(host string) SiteConfig {
	if c.Settings == nil {
		return SiteConfig{}
	}
	return c.Settings.GetSiteConfig(host)
}

// PageBudgetFor returns the page budget for a search starting at host.
// A pageBudget in the host's site section takes precedence.
func (c *Config) PageBudgetFor(host string) int {
	if site := c.SiteConfig(host); site.PageBudget > 0 {
		return site.PageBudget
	}
	return c.PageBudget
}
