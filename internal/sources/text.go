package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Collapse replaces runs of whitespace with single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText strips markup from an HTML fragment. Input that fails to parse
// is returned collapsed but otherwise untouched.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return Collapse(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Collapse(fragment)
	}
	doc.Find("script, style").Remove()
	return Collapse(doc.Text())
}
