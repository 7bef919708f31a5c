// Package sources maps provider records (arXiv search results, blog feed
// entries, Google News search results) into models.Item.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

const (
	DefaultArxivURL = "https://export.arxiv.org/api/query"
	DefaultNewsURL  = "https://news.google.com/rss/search"

	// blogContentLimit bounds the excerpt kept from a blog entry.
	blogContentLimit = 1000

	userAgent = "intel-hub/1.0 (+https://github.com/thedittmer/intel-hub)"
)

// Fetcher fetches and parses every supported source kind.
type Fetcher struct {
	parser   *gofeed.Parser
	ArxivURL string
	NewsURL  string
}

// NewFetcher creates a Fetcher that issues requests through client.
// A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &Fetcher{
		parser:   parser,
		ArxivURL: DefaultArxivURL,
		NewsURL:  DefaultNewsURL,
	}
}

// Papers runs one most-recent-first arXiv search for category and returns
// at most limit results.
func (f *Fetcher) Papers(ctx context.Context, category string, limit int) ([]models.Item, error) {
	q := url.Values{}
	q.Set("search_query", "cat:"+category)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(limit))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")

	feed, err := f.parse(ctx, f.ArxivURL+"?"+q.Encode())
	if err != nil {
		return nil, failure.Wrap("arxiv "+category, err)
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, paperItem(entry))
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

// Blog parses the feed of a company blog.
func (f *Fetcher) Blog(ctx context.Context, name, feedURL string) ([]models.Item, error) {
	feed, err := f.parse(ctx, feedURL)
	if err != nil {
		return nil, failure.Wrap("blog "+name, err)
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, blogItem(name, entry))
	}
	return items, nil
}

// NewsURLFor builds the Google News search URL for keyword restricted to
// the last days days.
func (f *Fetcher) NewsURLFor(keyword string, days int) string {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s when:%dd", keyword, days))
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	return f.NewsURL + "?" + q.Encode()
}

// News searches Google News for keyword within the last days days.
func (f *Fetcher) News(ctx context.Context, keyword string, days int) ([]models.Item, error) {
	feed, err := f.parse(ctx, f.NewsURLFor(keyword, days))
	if err != nil {
		return nil, failure.Wrap("news "+keyword, err)
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, newsItem(entry))
	}
	return items, nil
}

func (f *Fetcher) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		return nil, failure.New(failure.Config, "", fmt.Errorf("invalid feed URL %q (must start with http:// or https://)", feedURL))
	}
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", feedURL, err)
	}
	return feed, nil
}

func paperItem(entry *gofeed.Item) models.Item {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	published := publishedAt(entry)

	item := models.Item{
		ID:        id,
		Title:     Collapse(entry.Title),
		Source:    "arXiv",
		URL:       id,
		Content:   strings.TrimSpace(firstNonEmpty(entry.Description, entry.Content)),
		Kind:      models.KindPaper,
		Icon:      models.KindPaper.Icon(),
		Published: published,
	}
	if !published.IsZero() {
		item.Date = published.Format("2006-01-02")
	}
	return item
}

func blogItem(name string, entry *gofeed.Item) models.Item {
	link := entry.Link
	if link == "" {
		link = entry.GUID
	}
	published := publishedAt(entry)

	item := models.Item{
		ID:        link,
		Title:     Collapse(entry.Title),
		Source:    name,
		URL:       link,
		Content:   Truncate(firstNonEmpty(entry.Description, entry.Content), blogContentLimit),
		Date:      "Blog",
		Kind:      models.KindBlog,
		Icon:      models.KindBlog.Icon(),
		Published: published,
	}
	if !published.IsZero() {
		item.Date = published.Format("2006-01-02")
	}
	return item
}

func newsItem(entry *gofeed.Item) models.Item {
	return models.Item{
		ID:        entry.Link,
		Title:     Collapse(entry.Title),
		Source:    "News",
		URL:       entry.Link,
		Content:   entry.Description,
		Date:      "News",
		Kind:      models.KindNews,
		Icon:      models.KindNews.Icon(),
		Published: publishedAt(entry),
	}
}

// publishedAt prefers the published time and falls back to the updated
// time, since Atom blogs often only carry <updated>.
func publishedAt(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
