// Package crawler searches a small neighbourhood of the web for a term.
//
// # Architecture
//
// The Engine drives the search. It starts at a seed URL, fetches one page at
// a time and tests each page's visible text for the term. It stops at the
// first match or once a fixed number of pages has been visited.
//
// Design decision: The engine talks to the network and to HTML only through
// two narrow interfaces, Fetcher and Document. The loop itself is plain
// bookkeeping (visited set, FIFO queue, discovered links) and can be tested
// without a network.
//
// # Components
//
//   - Engine: The search loop and its termination policy
//   - HTTPFetcher: One GET per URL, with user agent, per-site headers and a
//     body size limit
//   - HTMLDocument: goquery-backed link extraction and body text
//
// # Frontier
//
// Every URL enters the visited set exactly once, at the moment it is chosen.
// Links are queued in discovery order, across pages and within each page in
// document order. The queue may hold URLs that were already visited; they are
// dropped when they reach the front. URLs are compared as exact strings.
//
// # Failures
//
// Nothing that happens during a crawl aborts the search. Transport failures,
// non-2xx responses and non-HTML content are logged, recorded on the page and
// counted against the budget. A failed fetch keeps the previous document.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(client)
//	engine := crawler.NewEngine(fetcher, crawler.WithPageBudget(10))
//	outcome, err := engine.Search(ctx, "https://example.com/", "gopher")
//
// # Concurrency
//
// A search is sequential. Pages are fetched one after another and the search
// state is owned by the goroutine that called Search.
package crawler
