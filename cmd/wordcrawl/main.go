// Package main provides the entry point for the wordcrawl CLI.
//
// wordcrawl starts at a seed URL, follows links breadth-first and stops at
// the first page whose visible text contains a search term, or after a
// fixed number of pages.
//
// Usage:
//
//	wordcrawl search <seed-url> <term>
//	wordcrawl history
//
// See --help for all available options.
package main

// main is the entry point for wordcrawl.
func main() {
	Execute()
}
