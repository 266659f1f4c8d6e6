package crawler

import "fmt"

// EventType identifies a progress event.
type EventType string

const (
	// EventVisit is emitted when a page was received and parsed.
	EventVisit EventType = "visit"

	// EventLinks is emitted with the number of links found on a page.
	EventLinks EventType = "links"

	// EventFetchFailed is emitted when a page could not be used.
	EventFetchFailed EventType = "fetch_failed"

	// EventSearch is emitted before the current document is tested.
	EventSearch EventType = "search"

	// EventNoDocument is emitted when the term is tested with no document.
	EventNoDocument EventType = "no_document"

	// EventFound is emitted when the term was found.
	EventFound EventType = "found"

	// EventDone is emitted when the search ends without a match.
	EventDone EventType = "done"
)

// Event is a progress notification from the engine.
// Events are observational only; handlers cannot influence the search.
type Event struct {
	Type EventType

	// URL is the page the event refers to, if any.
	URL string

	// Term is the search term for search and found events.
	Term string

	// Links is the link count for links events.
	Links int

	// Visited is the visited-set size when the event was emitted.
	Visited int

	// Err is the failure for fetch_failed and no_document events.
	Err error
}

// EventHandler receives progress events.
type EventHandler func(Event)

// String renders the event as a human-readable progress line.
func (e Event) String() string {
	switch e.Type {
	case EventVisit:
		return "**Visiting** Received web page at " + e.URL
	case EventLinks:
		return fmt.Sprintf("Found (%d) links", e.Links)
	case EventFetchFailed:
		if IsContentTypeError(e.Err) {
			return "**Failure** Retrieved something other than HTML at " + e.URL
		}
		return fmt.Sprintf("**Failure** Could not fetch %s: %v", e.URL, e.Err)
	case EventSearch:
		return fmt.Sprintf("Searching for the word %s...", e.Term)
	case EventNoDocument:
		return "**Error** Nothing to search yet: no page has been fetched"
	case EventFound:
		return fmt.Sprintf("**Success** Word %s found at %s", e.Term, e.URL)
	case EventDone:
		return fmt.Sprintf("**Done** Visited %d web page(s)", e.Visited)
	default:
		return string(e.Type)
	}
}
