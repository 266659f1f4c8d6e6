package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// DefaultUserAgent is a desktop browser string. Some sites serve reduced
// or empty pages to clients that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/535.1 (KHTML, like Gecko) Chrome/13.0.782.112 Safari/535.1"

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize int64 = model.MaxPageSize

// Fetcher retrieves one URL.
// Implementations return a *FetchError whose Kind is ErrTransport or
// ErrContentType when no document can be produced.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// Response is a successfully fetched HTML page.
type Response struct {
	// URL is the final URL after redirects.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is the response body, bounded by the fetcher's size limit.
	Body []byte

	// Document is the parsed page.
	Document Document
}

// SiteSettings are per-host request customizations.
type SiteSettings struct {
	// Cookie is sent verbatim as the Cookie header.
	Cookie string

	// Headers are added to every request to the host.
	Headers map[string]string

	// UserAgent overrides the fetcher's user agent when non-empty.
	UserAgent string
}

// SiteSettingsFunc returns the settings for a host. host is the URL host
// and carries the port when the URL names one.
type SiteSettingsFunc func(host string) SiteSettings

// HTTPFetcher fetches pages with net/http and parses them with goquery.
type HTTPFetcher struct {
	// client performs the requests. Redirects follow the client's policy.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// siteSettings looks up per-host cookies and headers. May be nil.
	siteSettings SiteSettingsFunc
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgent sets a custom User-Agent header.
// An empty string keeps the default.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
// Non-positive values keep the default.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithSiteSettings sets the per-host settings lookup.
func WithSiteSettings(fn SiteSettingsFunc) FetcherOption {
	return func(f *HTTPFetcher) {
		f.siteSettings = fn
	}
}

// NewHTTPFetcher creates a fetcher that uses client for every request.
// A nil client is replaced by one with a 30 second timeout.
//
// Design decision: We take the client from the caller because proxying,
// cookie jars and TLS settings are built by the httpclient package, and
// tests can hand in the client of an httptest.Server.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	f := &HTTPFetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a single GET. There are no retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrTransport, Err: err}
	}
	if !target.IsAbs() {
		return nil, &FetchError{URL: rawURL, Kind: ErrTransport, Err: errors.New("not an absolute URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrTransport, Err: err}
	}
	f.decorateRequest(req, target.Host)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{
			URL:         rawURL,
			Kind:        ErrTransport,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Err:         fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if !model.IsHTMLContentType(contentType) {
		return nil, &FetchError{
			URL:         rawURL,
			Kind:        ErrContentType,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrTransport, StatusCode: resp.StatusCode, Err: err}
	}

	// Links are resolved against where the content actually came from.
	base := target
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	doc, err := ParseDocument(bytes.NewReader(body), base)
	if err != nil {
		return nil, &FetchError{
			URL:         rawURL,
			Kind:        ErrContentType,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Err:         err,
		}
	}

	return &Response{
		URL:         base.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Document:    doc,
	}, nil
}

// decorateRequest sets the user agent, browser-like Accept headers and
// any per-host cookie and headers.
func (f *HTTPFetcher) decorateRequest(req *http.Request, host string) {
	userAgent := f.userAgent
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if f.siteSettings != nil {
		site := f.siteSettings(host)
		for k, v := range site.Headers {
			req.Header.Set(k, v)
		}
		if site.Cookie != "" {
			req.Header.Set("Cookie", site.Cookie)
		}
		if site.UserAgent != "" {
			userAgent = site.UserAgent
		}
	}

	req.Header.Set("User-Agent", userAgent)
}
