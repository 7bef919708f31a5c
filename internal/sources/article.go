package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/thedittmer/intel-hub/internal/failure"
)

// minReadableText is the shortest readability result accepted before
// falling back to the raw page text.
const minReadableText = 100

// maxPageSize bounds how much of an article page is read.
const maxPageSize = 4 << 20

// Extractor downloads article pages and extracts their readable text.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an Extractor. A nil client uses http.DefaultClient.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Extractor{client: client}
}

// FullText returns the main text of the page at articleURL.
func (e *Extractor) FullText(ctx context.Context, articleURL string) (string, error) {
	parsedURL, err := url.Parse(articleURL)
	if err != nil {
		return "", failure.New(failure.Config, "article", fmt.Errorf("parsing URL: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", failure.Wrap("article", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", failure.Wrap("article", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", failure.Wrap("article", &failure.StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", failure.Wrap("article", fmt.Errorf("reading body: %w", err))
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil && len(article.TextContent) > minReadableText {
		return Collapse(article.TextContent), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", failure.New(failure.Malformed, "article", fmt.Errorf("parsing HTML: %w", err))
	}
	doc.Find("script, style, nav, header, footer").Remove()
	text := Collapse(doc.Find("body").Text())
	if text == "" {
		return "", failure.New(failure.Malformed, "article", fmt.Errorf("no text found at %s", articleURL))
	}
	return text, nil
}
