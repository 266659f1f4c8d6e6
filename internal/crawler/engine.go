package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// DefaultPageBudget is the number of pages a search visits when no budget
// is configured.
const DefaultPageBudget = 10

// Engine runs bounded breadth-first searches for a term.
//
// Design decision: The engine owns no per-search state. Every call to Search
// builds a fresh crawlState, so one Engine can run any number of searches,
// one after another, and nothing leaks from one run into the next.
type Engine struct {
	// fetcher retrieves and parses pages.
	fetcher Fetcher

	// pageBudget is the maximum size of the visited set.
	pageBudget int

	// logger receives diagnostics.
	logger *slog.Logger

	// onEvent receives progress events. May be nil.
	onEvent EventHandler
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPageBudget sets the maximum number of pages to visit.
// Non-positive values keep DefaultPageBudget.
func WithPageBudget(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pageBudget = n
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventHandler sets the progress event callback.
func WithEventHandler(h EventHandler) EngineOption {
	return func(e *Engine) {
		e.onEvent = h
	}
}

// NewEngine creates an Engine that fetches pages through fetcher.
func NewEngine(fetcher Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		fetcher:    fetcher,
		pageBudget: DefaultPageBudget,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// PageBudget returns the configured page budget.
func (e *Engine) PageBudget() int {
	return e.pageBudget
}

// Search crawls from seedURL until a page contains term or the page budget
// is used up.
//
// Each step chooses one URL (the seed first, then the front of the queue),
// fetches it, tests the current document for the term and, if there was no
// match, appends the step's links to the queue. Failed fetches are logged
// and counted as visited. When the queue runs dry before the budget is
// reached, the search ends with an exhausted outcome.
//
// The returned error is non-nil only when the arguments are invalid or ctx
// is cancelled. On cancellation an exhausted outcome with ReasonCancelled is
// returned together with the context error.
func (e *Engine) Search(ctx context.Context, seedURL, term string) (*model.Outcome, error) {
	if err := validateArgs(seedURL, term); err != nil {
		return nil, err
	}

	state := newCrawlState(seedURL)
	matcher := newTermMatcher(term)

	for state.visitedCount() < e.pageBudget {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("search cancelled", "visited", state.visitedCount(), "error", err)
			e.emit(Event{Type: EventDone, Visited: state.visitedCount()})
			return state.outcome(model.OutcomeExhausted, model.ReasonCancelled, term, ""), err
		}

		current, ok := state.next()
		if !ok {
			e.logger.Info("search stopped early", "visited", state.visitedCount(), "error", ErrFrontierExhausted)
			e.emit(Event{Type: EventDone, Visited: state.visitedCount()})
			return state.outcome(model.OutcomeExhausted, model.ReasonFrontier, term, ""), nil
		}

		page, links := e.crawl(ctx, state, current)

		if e.searchForWord(state, matcher, term) {
			page.Matched = true
			e.logger.Debug("term found", "term", term, "url", current)
			e.emit(Event{Type: EventFound, URL: current, Term: term, Visited: state.visitedCount()})
			return state.outcome(model.OutcomeFound, model.ReasonFound, term, current), nil
		}

		state.enqueue(links)
	}

	e.emit(Event{Type: EventDone, Visited: state.visitedCount()})
	return state.outcome(model.OutcomeExhausted, model.ReasonBudget, term, ""), nil
}

// crawl fetches target, records a page for it and returns the links found.
// On failure the current document is left as it was and no links are returned.
func (e *Engine) crawl(ctx context.Context, state *crawlState, target string) (*model.Page, []string) {
	page := &model.Page{
		URL:       target,
		VisitedAt: time.Now(),
	}
	state.pages = append(state.pages, page)

	resp, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		e.recordFailure(page, err)
		return page, nil
	}

	state.document = resp.Document
	links := resp.Document.Links()
	state.discover(links)

	page.Status = model.FetchStatusOK
	page.StatusCode = resp.StatusCode
	page.ContentType = resp.ContentType
	page.Title = resp.Document.Title()
	page.LinkCount = len(links)
	page.Raw = resp.Body
	page.ComputeHash()
	if resp.URL != target {
		page.FinalURL = resp.URL
	}

	e.logger.Debug("page fetched", "url", target, "status", resp.StatusCode, "links", len(links))
	e.emit(Event{Type: EventVisit, URL: target, Visited: state.visitedCount()})
	e.emit(Event{Type: EventLinks, URL: target, Links: len(links), Visited: state.visitedCount()})

	return page, links
}

// recordFailure classifies a fetch error onto page and reports it.
func (e *Engine) recordFailure(page *model.Page, err error) {
	page.Failure = err.Error()
	page.Status = model.FetchStatusTransportError
	if IsContentTypeError(err) {
		page.Status = model.FetchStatusContentTypeError
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		page.StatusCode = fetchErr.StatusCode
		page.ContentType = fetchErr.ContentType
	}

	e.logger.Warn("fetch failed", "url", page.URL, "error", err)
	e.emit(Event{Type: EventFetchFailed, URL: page.URL, Err: err})
}

// searchForWord tests the current document for the term.
// With no document it logs ErrNoDocument and reports false.
func (e *Engine) searchForWord(state *crawlState, matcher *termMatcher, term string) bool {
	if state.document == nil {
		e.logger.Warn("cannot search for term", "term", term, "error", ErrNoDocument)
		e.emit(Event{Type: EventNoDocument, Term: term, Err: ErrNoDocument})
		return false
	}

	e.emit(Event{Type: EventSearch, URL: state.document.URL(), Term: term})
	return matcher.Match(state.document.BodyText())
}

func (e *Engine) emit(ev Event) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

func validateArgs(seedURL, term string) error {
	if strings.TrimSpace(seedURL) == "" {
		return ErrEmptySeed
	}
	if term == "" {
		return ErrEmptyTerm
	}

	u, err := url.Parse(seedURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidSeed, seedURL)
	}

	return nil
}
