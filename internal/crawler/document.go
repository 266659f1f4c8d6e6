package crawler

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page as the engine sees it.
// The engine only ever asks a document for its links and its text, so
// anything that can answer those two questions can stand in for a real page.
type Document interface {
	// URL returns the base URL that links are resolved against.
	URL() string

	// Title returns the text of the <title> element.
	Title() string

	// Links returns the absolute URL of every anchor element that carries an
	// href attribute, in document order. Duplicates are kept.
	Links() []string

	// BodyText returns the visible text of the <body> element with runs of
	// whitespace collapsed to a single space.
	BodyText() string
}

// HTMLDocument is a Document backed by goquery.
//
// Design decision: We select anchors with a CSS selector rather than walking
// the tree by hand because "a[href]" states exactly which elements count as
// links, and goquery already handles malformed markup through x/net/html.
type HTMLDocument struct {
	doc  *goquery.Document
	base *url.URL
}

var _ Document = (*HTMLDocument)(nil)

// ParseDocument parses HTML from r. base is the URL the content was served
// from after redirects. A <base href> element in the document overrides it,
// as browsers do.
func ParseDocument(r io.Reader, base *url.URL) (*HTMLDocument, error) {
	if base == nil {
		return nil, errors.New("parse document: base URL is required")
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	doc.Url = base

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}

	return &HTMLDocument{doc: doc, base: base}, nil
}

// URL returns the base URL of the document.
func (d *HTMLDocument) URL() string {
	return d.base.String()
}

// Title returns the page title with whitespace collapsed.
func (d *HTMLDocument) Title() string {
	return collapseWhitespace(d.doc.Find("title").First().Text())
}

// Links returns every anchor href resolved against the base URL.
// Hrefs that cannot be parsed are dropped. Non-HTTP schemes such as mailto:
// are kept; fetching them fails later like any other transport error.
func (d *HTMLDocument) Links() []string {
	links := make([]string, 0)
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := d.resolveURL(href); abs != "" {
			links = append(links, abs)
		}
	})
	return links
}

// BodyText returns the visible text of the body.
func (d *HTMLDocument) BodyText() string {
	var b strings.Builder
	for _, n := range d.doc.Find("body").Nodes {
		collectText(n, &b)
	}
	return collapseWhitespace(b.String())
}

// resolveURL resolves href against the base URL.
func (d *HTMLDocument) resolveURL(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := d.base.ResolveReference(ref)
	if !resolved.IsAbs() {
		return ""
	}
	return resolved.String()
}

// collectText appends the text below n to b.
// Script-like elements are skipped because their content is never rendered.
// Block elements are padded with spaces so that words in adjacent blocks do
// not run together, while inline markup such as <b>go</b>pher stays joined.
func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if isHiddenElement(n.DataAtom) {
			return
		}
	case html.CommentNode:
		return
	}

	block := n.Type == html.ElementNode && isBlockElement(n.DataAtom)
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if block {
		b.WriteByte(' ')
	}
}

func isHiddenElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	default:
		return false
	}
}

func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Br,
		atom.Dd, atom.Div, atom.Dl, atom.Dt, atom.Fieldset, atom.Figcaption,
		atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2, atom.H3,
		atom.H4, atom.H5, atom.H6, atom.Header, atom.Hr, atom.Li, atom.Main,
		atom.Nav, atom.Ol, atom.P, atom.Pre, atom.Section, atom.Table,
		atom.Td, atom.Th, atom.Tr, atom.Ul:
		return true
	default:
		return false
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
