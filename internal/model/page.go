package model

import (
	"encoding/hex"
	"mime"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// FetchStatus describes how a single crawl step ended.
type FetchStatus string

const (
	// FetchStatusOK means the page was retrieved and parsed as HTML.
	FetchStatusOK FetchStatus = "ok"

	// FetchStatusTransportError means the request never produced a usable
	// response: refused connection, timeout, DNS failure, malformed URL or a
	// non-2xx status.
	FetchStatusTransportError FetchStatus = "transport_error"

	// FetchStatusContentTypeError means the response was not HTML.
	FetchStatusContentTypeError FetchStatus = "content_type_error"
)

// Page records one crawl step.
// A Page exists for every URL that entered the visited set, including the
// ones whose fetch failed, so len(pages) always equals the visited count.
type Page struct {
	// URL is the address that was chosen as crawl target.
	URL string `json:"url"`

	// FinalURL is the address after redirects. Links are resolved against it.
	// Empty when it equals URL or when the request failed.
	FinalURL string `json:"final_url,omitempty"`

	// StatusCode is the HTTP response status code. Zero when no response
	// was received.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the raw Content-Type header value.
	ContentType string `json:"content_type,omitempty"`

	// Title is the text of the <title> element. Empty for non-HTML content.
	Title string `json:"title,omitempty"`

	// LinkCount is the number of absolute anchor URLs extracted.
	LinkCount int `json:"link_count"`

	// Status is the fetch status of this step.
	Status FetchStatus `json:"status"`

	// Failure holds the error message for failed steps.
	Failure string `json:"failure,omitempty"`

	// Matched is true on the page that contained the search term.
	Matched bool `json:"matched,omitempty"`

	// Raw is the response body, bounded by the configured body size limit.
	Raw []byte `json:"-"`

	// Hash is the SHA3-256 hash of Raw.
	Hash string `json:"hash,omitempty"`

	// VisitedAt is when the step started.
	VisitedAt time.Time `json:"visited_at"`
}

// MaxPageSize is the default upper bound for a response body.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA3-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// Fetched reports whether the step produced an HTML document.
func (p *Page) Fetched() bool {
	return p.Status == FetchStatusOK
}

// IsHTMLContentType reports whether a Content-Type header value names an
// HTML media type. Parameters such as charset are ignored.
func IsHTMLContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Tolerate malformed parameters as long as the type itself is usable.
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
