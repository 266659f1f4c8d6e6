// Package model defines the data structures shared by the crawler, the
// report writers and the search archive.
//
// This package contains the following main types:
//   - Page: One crawl step, successful or not, with its fetch metadata
//   - Outcome: The terminal result of a search (found or exhausted)
//   - SearchReport: An Outcome plus the parameters and timing of the run
//
// Design decision: We keep these types in their own package so that crawler,
// report and database can all depend on them without importing each other.
//
// Every type serializes to JSON. The archive stores the JSON form of a
// SearchReport next to its indexed columns.
package model
