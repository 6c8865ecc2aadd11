package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy produces candidate reviewer names from a parsed document.
// Strategies are tried in order and their results are concatenated;
// duplicates are kept as separate candidates.
type Strategy interface {
	Names(doc *goquery.Document) []string
}

// SelectorStrategy collects the text of every element matching a CSS
// selector.
type SelectorStrategy string

// Names implements Strategy.
func (s SelectorStrategy) Names(doc *goquery.Document) []string {
	var names []string
	doc.Find(string(s)).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			names = append(names, text)
		}
	})
	return names
}

// DefaultStrategies returns the known reviewer-name selectors for the
// storefront, oldest first. These track one site's minified markup and go
// stale when it changes; the body-text fallback covers that case.
func DefaultStrategies() []Strategy {
	return []Strategy{
		SelectorStrategy(".ba-bc-Xb-K"),
		SelectorStrategy(".comment-thread-displayname"),
		SelectorStrategy("div[class*=name]"),
	}
}

// Extraction is the result of parsing a review-listing page.
//
// An empty Candidates slice means the structural lookups found nothing at
// all, which is a distinct state from "candidates found but none matched":
// the page may be rendered almost entirely client-side. BodyText is always
// populated with the lower-cased plain text of the document body so a
// whole-page substring search remains possible either way.
type Extraction struct {
	Candidates []string
	BodyText   string
}

// Extractor parses storefront markup into reviewer-name candidates using
// an ordered, pluggable list of strategies.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor creates an Extractor. With no arguments the default
// storefront strategies are used.
func NewExtractor(strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Extractor{strategies: strategies}
}

// Extract runs every strategy over the markup and renders the body text.
func (e *Extractor) Extract(markup string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var candidates []string
	for _, strategy := range e.strategies {
		candidates = append(candidates, strategy.Names(doc)...)
	}

	return &Extraction{
		Candidates: candidates,
		BodyText:   strings.ToLower(bodyText(doc)),
	}, nil
}

// bodyText renders the plain text of the document body, skipping script
// and style content. Falls back to the whole document when there is no
// body element.
func bodyText(doc *goquery.Document) string {
	nodes := doc.Find("body").Nodes
	if len(nodes) == 0 {
		nodes = doc.Nodes
	}

	var sb strings.Builder
	for _, n := range nodes {
		appendText(n, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func appendText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}
