package crawler

import (
	"errors"
	"fmt"
)

// Crawl errors.
// None of these abort a search. The engine logs them, records them on the
// page they belong to and moves on. Only ErrEmptySeed, ErrEmptyTerm and
// ErrInvalidSeed are returned from Engine.Search, because they mean the
// search could not start at all.
var (
	// ErrTransport is the kind of every failure that left the engine without
	// a usable HTTP response: refused connections, timeouts, DNS errors,
	// malformed URLs and non-2xx status codes.
	ErrTransport = errors.New("transport failure")

	// ErrContentType is the kind of a response that was received but is not HTML.
	ErrContentType = errors.New("retrieved something other than HTML")

	// ErrNoDocument is logged when the term is tested before any page has
	// been fetched successfully.
	ErrNoDocument = errors.New("no document: a page must be fetched before it can be searched")

	// ErrFrontierExhausted is logged when the pending queue holds no
	// unvisited URL. The search then ends with an exhausted outcome.
	ErrFrontierExhausted = errors.New("frontier exhausted: no unvisited URL left to crawl")

	// ErrEmptySeed is returned when Search is called without a seed URL.
	ErrEmptySeed = errors.New("seed URL must not be empty")

	// ErrInvalidSeed is returned when the seed URL is not an absolute URL.
	ErrInvalidSeed = errors.New("seed URL must be an absolute URL")

	// ErrEmptyTerm is returned when Search is called without a search term.
	ErrEmptyTerm = errors.New("search term must not be empty")
)

// FetchError describes a failed fetch.
// Kind is ErrTransport or ErrContentType, so callers can classify the
// failure with errors.Is.
type FetchError struct {
	// URL is the address that was requested.
	URL string

	// Kind is the sentinel this failure belongs to.
	Kind error

	// StatusCode is the HTTP status, if a response was received.
	StatusCode int

	// ContentType is the Content-Type header, if a response was received.
	ContentType string

	// Err is the underlying cause. May be nil.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
	case e.ContentType != "":
		return fmt.Sprintf("%v: %s (%s)", e.Kind, e.URL, e.ContentType)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.URL)
	}
}

// Unwrap returns the kind and the cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsContentTypeError reports whether err is a non-HTML response.
func IsContentTypeError(err error) bool {
	return errors.Is(err, ErrContentType)
}
