// Package aggregate merges paper, blog and news sources into one
// deduplicated, recency filtered feed.
package aggregate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

const (
	DefaultPaperLimit = 5
	DefaultBlogLimit  = 3
	DefaultNewsLimit  = 3
)

// PaperSource searches papers by category term, most recent first.
type PaperSource interface {
	Papers(ctx context.Context, category string, limit int) ([]models.Item, error)
}

// BlogSource reads a blog feed.
type BlogSource interface {
	Blog(ctx context.Context, name, feedURL string) ([]models.Item, error)
}

// NewsSource searches news for a keyword within the last days days.
type NewsSource interface {
	News(ctx context.Context, keyword string, days int) ([]models.Item, error)
}

// Catalog resolves selection labels to provider terms.
type Catalog struct {
	// Papers maps a display label ("LLM") to an arXiv category ("cs.CL").
	Papers map[string]string
	// Blogs maps a blog name to its feed URL.
	Blogs map[string]string
}

// Limits caps how many items each source contributes.
type Limits struct {
	Papers int
	Blogs  int
	News   int
}

// DefaultLimits returns the per-source caps used when none are configured.
func DefaultLimits() Limits {
	return Limits{Papers: DefaultPaperLimit, Blogs: DefaultBlogLimit, News: DefaultNewsLimit}
}

// Outcome records what one source call produced.
type Outcome struct {
	Kind    models.Kind
	Label   string
	Items   int
	Failure failure.Kind
	Err     error
}

// OK reports whether the source call succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report is the result of one aggregation pass.
type Report struct {
	Items    []models.Item
	Outcomes []Outcome
}

// Failed returns the outcomes of sources that contributed nothing because
// their call failed.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Aggregator fetches every selected source in turn.
type Aggregator struct {
	Papers  PaperSource
	Blogs   BlogSource
	News    NewsSource
	Catalog Catalog
	Limits  Limits
	Verbose bool

	// Now is the clock used for window checks. Defaults to time.Now.
	Now func() time.Time
}

// Fetch aggregates sel with a window of days days. Items are ordered in
// source blocks: all papers, then all blogs, then all news. A failing source
// contributes no items and is reported in the outcomes; it never stops the
// remaining sources.
func (a *Aggregator) Fetch(ctx context.Context, sel models.Selection, days int) Report {
	if sel.Empty() {
		return Report{}
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	window := Window{Days: days}
	limits := a.limits()

	var report Report
	var items []models.Item

	for _, label := range sel.Papers {
		got, err := a.papers(ctx, label, limits.Papers, window, now())
		items = append(items, got...)
		report.Outcomes = append(report.Outcomes, a.outcome(models.KindPaper, label, len(got), err))
	}

	for _, name := range sel.Blogs {
		got, err := a.blog(ctx, name, limits.Blogs, window, now())
		items = append(items, got...)
		report.Outcomes = append(report.Outcomes, a.outcome(models.KindBlog, name, len(got), err))
	}

	for _, keyword := range sel.News {
		got, err := a.news(ctx, keyword, days, limits.News)
		items = append(items, got...)
		report.Outcomes = append(report.Outcomes, a.outcome(models.KindNews, keyword, len(got), err))
	}

	report.Items = Dedupe(items)
	return report
}

func (a *Aggregator) papers(ctx context.Context, label string, limit int, window Window, now time.Time) ([]models.Item, error) {
	category, ok := a.Catalog.Papers[label]
	if !ok {
		return nil, failure.New(failure.Config, "arxiv", fmt.Errorf("unknown paper category %q", label))
	}
	if a.Papers == nil {
		return nil, failure.New(failure.Config, "arxiv", fmt.Errorf("no paper source configured"))
	}

	results, err := a.Papers.Papers(ctx, category, limit)
	if err != nil {
		return nil, err
	}

	var kept []models.Item
	for _, item := range results {
		if window.Admits(now, item) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func (a *Aggregator) blog(ctx context.Context, name string, limit int, window Window, now time.Time) ([]models.Item, error) {
	feedURL, ok := a.Catalog.Blogs[name]
	if !ok {
		return nil, failure.New(failure.Config, "blog", fmt.Errorf("unknown blog %q", name))
	}
	if a.Blogs == nil {
		return nil, failure.New(failure.Config, "blog", fmt.Errorf("no blog source configured"))
	}

	entries, err := a.Blogs.Blog(ctx, name, feedURL)
	if err != nil {
		return nil, err
	}

	var kept []models.Item
	for _, item := range entries {
		if !window.Admits(now, item) {
			continue
		}
		kept = append(kept, item)
		if len(kept) >= limit {
			break
		}
	}
	return kept, nil
}

func (a *Aggregator) news(ctx context.Context, keyword string, days, limit int) ([]models.Item, error) {
	if a.News == nil {
		return nil, failure.New(failure.Config, "news", fmt.Errorf("no news source configured"))
	}

	results, err := a.News.News(ctx, keyword, days)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (a *Aggregator) outcome(kind models.Kind, label string, n int, err error) Outcome {
	o := Outcome{Kind: kind, Label: label, Items: n, Err: err, Failure: failure.Classify(err)}
	if err != nil {
		log.Printf("%s source %q failed (%s): %v", kind, label, o.Failure, err)
	} else if a.Verbose {
		log.Printf("%s source %q: %d items", kind, label, n)
	}
	return o
}

func (a *Aggregator) limits() Limits {
	l := a.Limits
	d := DefaultLimits()
	if l.Papers <= 0 {
		l.Papers = d.Papers
	}
	if l.Blogs <= 0 {
		l.Blogs = d.Blogs
	}
	if l.News <= 0 {
		l.News = d.News
	}
	return l
}
