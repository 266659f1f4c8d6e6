package crawler

import (
	"slices"

	"github.com/nao1215/wordcrawl/internal/model"
)

// crawlState is the frontier of one search.
// It is created by Engine.Search, used by a single goroutine and discarded
// when the search returns, so it needs no locking.
type crawlState struct {
	seed       string
	seedIssued bool

	// visited holds every URL that was chosen as crawl target.
	visited map[string]struct{}

	// order is visited in the order URLs were chosen.
	order []string

	// queue is FIFO. It may contain URLs that are already visited; those
	// are skipped when they reach the front.
	queue []string

	// discovered is every link extracted in this search, never de-duplicated.
	discovered []string

	// document is the last successfully fetched page. A failed fetch leaves
	// it untouched.
	document Document

	pages []*model.Page
}

func newCrawlState(seed string) *crawlState {
	return &crawlState{
		seed:       seed,
		visited:    make(map[string]struct{}),
		order:      make([]string, 0),
		queue:      make([]string, 0),
		discovered: make([]string, 0),
		pages:      make([]*model.Page, 0),
	}
}

// next chooses the next crawl target and marks it visited.
// The first call always returns the seed. Afterwards it pops the queue until
// an unvisited URL comes up. It returns false when the queue runs dry.
func (s *crawlState) next() (string, bool) {
	if !s.seedIssued {
		s.seedIssued = true
		s.markVisited(s.seed)
		return s.seed, true
	}

	for len(s.queue) > 0 {
		candidate := s.queue[0]
		s.queue[0] = ""
		s.queue = s.queue[1:]

		if s.isVisited(candidate) {
			continue
		}
		s.markVisited(candidate)
		return candidate, true
	}

	return "", false
}

func (s *crawlState) isVisited(u string) bool {
	_, ok := s.visited[u]
	return ok
}

func (s *crawlState) markVisited(u string) {
	s.visited[u] = struct{}{}
	s.order = append(s.order, u)
}

func (s *crawlState) visitedCount() int {
	return len(s.visited)
}

// discover records links extracted from a fetched page.
func (s *crawlState) discover(links []string) {
	s.discovered = append(s.discovered, links...)
}

// enqueue appends links to the back of the queue in the given order.
func (s *crawlState) enqueue(links []string) {
	s.queue = append(s.queue, links...)
}

func (s *crawlState) outcome(kind model.OutcomeKind, reason model.Reason, term, foundURL string) *model.Outcome {
	return &model.Outcome{
		Kind:         kind,
		Reason:       reason,
		Term:         term,
		URL:          foundURL,
		PagesVisited: s.visitedCount(),
		Visited:      slices.Clone(s.order),
		Discovered:   slices.Clone(s.discovered),
		Pages:        s.pages,
	}
}
