package provider

import (
	"html"
	"regexp"
	"strings"
)

// wordCollector accumulates the flattened word list while enforcing the raw
// item cap. Words keep item-arrival order; no case folding or punctuation
// stripping happens here.
type wordCollector struct {
	max   int
	items int
	words []string
}

func newWordCollector(maxItems int) *wordCollector {
	return &wordCollector{max: maxItems, words: []string{}}
}

// add consumes one raw item's text field, splitting it on whitespace.
// It reports whether the collector can take more items afterwards.
func (c *wordCollector) add(text string) bool {
	if c.full() {
		return false
	}
	c.items++
	c.words = append(c.words, strings.Fields(text)...)
	return !c.full()
}

func (c *wordCollector) full() bool {
	return c.items >= c.max
}

func (c *wordCollector) result() []string {
	return c.words
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s{3,}`)
)

// stripHTML flattens markup-bearing provider text (HN comments, RSS bodies)
// to plain text before tokenization.
func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
