// Package database provides the SQLite search archive for wordcrawl.
//
// The HistoryDB stores:
//   - One row per finished search (seed, term, outcome, counts, timing)
//   - One row per visited page of that search
//   - The complete report as JSON, for re-rendering later
//
// The archive is written when a search finishes and read only by the
// history command. The crawler never consults it, so a new search always
// starts from an empty frontier.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
package database
