// Package hub wires configuration, sources, the summarizer and bookmark
// storage into the operations the command line exposes.
package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thedittmer/intel-hub/internal/aggregate"
	"github.com/thedittmer/intel-hub/internal/config"
	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
	"github.com/thedittmer/intel-hub/internal/session"
	"github.com/thedittmer/intel-hub/internal/sources"
	"github.com/thedittmer/intel-hub/internal/storage"
	"github.com/thedittmer/intel-hub/internal/summarize"
)

// fullTextThreshold is the content length, in runes, under which the
// article page is fetched before summarizing.
const fullTextThreshold = 280

// ErrNoSpreadsheet is returned when the sheets backend has no spreadsheet.
var ErrNoSpreadsheet = errors.New("no spreadsheet configured: set bookmarks.spreadsheet_id or run init-sheet")

// stateStore persists the session between invocations.
type stateStore interface {
	SaveFeed(ctx context.Context, items []models.Item, refreshedAt time.Time) error
	LoadFeed(ctx context.Context) ([]models.Item, error)
	LastRefresh(ctx context.Context) (time.Time, error)
	PutSummary(ctx context.Context, itemID, summary string) error
	Summaries(ctx context.Context) (map[string]string, error)
}

type articleReader interface {
	FullText(ctx context.Context, articleURL string) (string, error)
}

// Hub is the application core behind every command.
type Hub struct {
	cfg        *config.Config
	store      *storage.Storage
	state      stateStore
	aggregator *aggregate.Aggregator
	summarizer *summarize.Summarizer
	articles   articleReader
	bookmarks  *storage.Gateway
	closers    []io.Closer
	verbose    bool

	// bookmarksErr says why bookmarks is nil.
	bookmarksErr error
}

// New builds a Hub from cfg. Secrets must already have been checked.
func New(ctx context.Context, cfg *config.Config, store *storage.Storage, verbose bool) (*Hub, error) {
	client := &http.Client{Timeout: cfg.Timeout()}

	local, err := storage.OpenLocal(store.StatePath())
	if err != nil {
		return nil, failure.New(failure.Config, "open state", err)
	}

	h := &Hub{
		cfg:      cfg,
		store:    store,
		state:    local,
		articles: sources.NewExtractor(client),
		closers:  []io.Closer{local},
		verbose:  verbose,
	}

	fetcher := sources.NewFetcher(client)
	h.aggregator = &aggregate.Aggregator{
		Papers: fetcher,
		Blogs:  fetcher,
		News:   fetcher,
		Catalog: aggregate.Catalog{
			Papers: cfg.PaperCatalog(),
			Blogs:  cfg.BlogCatalog(),
		},
		Limits: aggregate.Limits{
			Papers: cfg.PaperLimit,
			Blogs:  cfg.BlogLimit,
			News:   cfg.NewsLimit,
		},
		Verbose: verbose,
	}

	if cfg.SummariesEnabled() {
		provider, err := summarize.NewProvider(ctx, cfg.AI, cfg.APIKey(), client)
		if err != nil {
			h.Close()
			return nil, failure.New(failure.Config, "summary provider", err)
		}
		h.summarizer = summarize.New(provider, cfg.Budget())
	}

	// A sheets backend without a spreadsheet still allows init-sheet.
	table, err := h.bookmarkTable(ctx, local)
	if err != nil {
		h.bookmarksErr = err
		return h, nil
	}
	h.bookmarks = storage.NewGateway(table)
	h.bookmarks.Verbose = verbose

	return h, nil
}

func (h *Hub) bookmarkTable(ctx context.Context, local *storage.Local) (storage.Table, error) {
	if h.cfg.Bookmarks.Backend != config.BackendSheets {
		return local, nil
	}

	services, err := h.sheetsServices(ctx)
	if err != nil {
		return nil, err
	}

	id := h.cfg.Bookmarks.SpreadsheetID
	if id == "" {
		id, err = h.store.LoadSpreadsheetID()
		if err != nil {
			return nil, failure.New(failure.Config, "spreadsheet id", err)
		}
	}
	if id == "" {
		return nil, failure.New(failure.Config, "bookmarks", ErrNoSpreadsheet)
	}
	return storage.NewSheetsTable(services.Sheets, id, h.cfg.Bookmarks.SheetName), nil
}

func (h *Hub) sheetsServices(ctx context.Context) (*storage.Services, error) {
	creds, err := h.cfg.SheetsCredentials(h.store.Dir())
	if err != nil {
		return nil, failure.New(failure.Config, "sheets credentials", err)
	}
	services, err := storage.NewServices(ctx, creds)
	if err != nil {
		return nil, failure.New(failure.Auth, "sheets", err)
	}
	return services, nil
}

// Close releases the state database.
func (h *Hub) Close() error {
	var errs []error
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SummariesEnabled reports whether Summarize can produce anything but the
// failure sentinel.
func (h *Hub) SummariesEnabled() bool {
	return h.summarizer != nil
}

// Streaming reports whether summaries arrive incrementally.
func (h *Hub) Streaming() bool {
	if !h.cfg.AI.Stream {
		return false
	}
	switch h.cfg.AI.Provider {
	case config.ProviderOllama, config.ProviderGemini:
		return true
	}
	return false
}

// Window returns the configured default window in days.
func (h *Hub) Window() int {
	return h.cfg.Window()
}

// DefaultSelection selects every configured category, blog and keyword.
func (h *Hub) DefaultSelection() models.Selection {
	return models.Selection{
		Papers: h.cfg.PaperLabels(),
		Blogs:  h.cfg.BlogNames(),
		News:   append([]string(nil), h.cfg.News...),
	}
}

// Blogs lists every configured blog, built-in and extra.
func (h *Hub) Blogs() []config.Blog {
	return append([]config.Blog(nil), h.cfg.Blogs...)
}

// AddBlog registers an extra blog feed in blogs.txt. It joins the default
// selection immediately.
func (h *Hub) AddBlog(name, feedURL string) (config.Blog, error) {
	b := config.Blog{Name: strings.TrimSpace(name), URL: strings.TrimSpace(feedURL)}
	if err := config.ValidateBlog(b); err != nil {
		return b, failure.New(failure.Config, "add blog", err)
	}
	if _, ok := h.cfg.BlogCatalog()[b.Name]; ok {
		return b, failure.New(failure.Config, "add blog", fmt.Errorf("blog %q already exists", b.Name))
	}

	extra, err := h.store.LoadBlogs()
	if err != nil {
		return b, failure.New(failure.Config, "add blog", err)
	}
	if err := h.store.SaveBlogs(append(extra, b)); err != nil {
		return b, err
	}

	h.cfg.MergeBlogs([]config.Blog{b})
	if h.aggregator.Catalog.Blogs == nil {
		h.aggregator.Catalog.Blogs = make(map[string]string)
	}
	h.aggregator.Catalog.Blogs[b.Name] = b.URL
	return b, nil
}

func (h *Hub) gateway() (*storage.Gateway, error) {
	if h.bookmarks == nil {
		return nil, h.bookmarksErr
	}
	return h.bookmarks, nil
}

// Session restores the state left by the previous invocation. The saved
// set comes from the bookmark store; when it cannot be read the session
// starts with an empty saved set and a warning is logged.
func (h *Hub) Session(ctx context.Context) (session.State, error) {
	st := session.New()

	feed, err := h.state.LoadFeed(ctx)
	if err != nil {
		return st, failure.New(failure.Config, "load feed", err)
	}
	summaries, err := h.state.Summaries(ctx)
	if err != nil {
		return st, failure.New(failure.Config, "load summaries", err)
	}
	st = st.WithFeed(feed).WithSummaries(summaries)

	bookmarks, err := h.Bookmarks(ctx)
	if err != nil {
		log.Printf("Warning: could not load bookmarks: %v", err)
	}
	return st.WithSaved(storage.SavedSet(bookmarks)), nil
}

// LastRefresh returns when the feed was last refreshed.
func (h *Hub) LastRefresh(ctx context.Context) (time.Time, error) {
	return h.state.LastRefresh(ctx)
}

// Refresh aggregates sel and replaces the session feed with the result.
func (h *Hub) Refresh(ctx context.Context, st session.State, sel models.Selection, days int) (session.State, aggregate.Report, error) {
	report := h.aggregator.Fetch(ctx, sel, days)
	if h.verbose {
		log.Printf("Refresh: %d items from %d sources (%d failed)", len(report.Items), len(report.Outcomes), len(report.Failed()))
	}

	if err := h.state.SaveFeed(ctx, report.Items, time.Now()); err != nil {
		return st.WithFeed(report.Items), report, fmt.Errorf("error saving feed: %w", err)
	}
	return st.WithFeed(report.Items), report, nil
}

// Summarize returns the cached summary for item or generates one. Failed
// generations return FailedSummary with the error and are not cached, so
// a later call tries again.
func (h *Hub) Summarize(ctx context.Context, st session.State, item models.Item, onUpdate func(string)) (session.State, string, error) {
	if text, ok := st.Summary(item.ID); ok {
		return st, text, nil
	}
	if h.summarizer == nil {
		return st, summarize.FailedSummary, failure.New(failure.Config, "summarize", errors.New("no summary provider configured (set ai.provider)"))
	}

	text := h.articleText(ctx, item)
	summary, err := h.summarizer.Summarize(ctx, text, item.Source, onUpdate)
	if err != nil {
		return st, summary, err
	}

	if err := h.state.PutSummary(ctx, item.ID, summary); err != nil {
		log.Printf("Warning: could not cache summary: %v", err)
	}
	return st.WithSummary(item.ID, summary), summary, nil
}

// articleText returns the text to summarize for item, fetching the article
// page when the feed only carried a short excerpt.
func (h *Hub) articleText(ctx context.Context, item models.Item) string {
	text := sources.PlainText(item.Content)
	if h.articles == nil || utf8.RuneCountInString(text) >= fullTextThreshold || item.URL == "" {
		return text
	}

	full, err := h.articles.FullText(ctx, item.URL)
	if err != nil {
		if h.verbose {
			log.Printf("Full text for %s unavailable (%s): %v", item.URL, failure.Classify(err), err)
		}
		return text
	}
	if utf8.RuneCountInString(full) > utf8.RuneCountInString(text) {
		return full
	}
	return text
}

// Save stores item as a bookmark unless the session already has it. memo
// defaults to the cached summary. It reports whether a row was written.
func (h *Hub) Save(ctx context.Context, st session.State, item models.Item, memo string) (session.State, bool, error) {
	if st.IsSaved(item.ID) {
		return st, false, nil
	}
	if memo == "" {
		memo, _ = st.Summary(item.ID)
	}

	g, err := h.gateway()
	if err != nil {
		return st, false, err
	}
	if _, err := g.Save(ctx, item, memo); err != nil {
		return st, false, err
	}
	return st.MarkSaved(item.ID), true, nil
}

// Delete removes the first bookmark row with id. Deleting an id that is
// not stored succeeds and reports false. The returned state's saved set
// reflects the store after the delete.
func (h *Hub) Delete(ctx context.Context, st session.State, id string) (session.State, bool, error) {
	g, err := h.gateway()
	if err != nil {
		return st, false, err
	}
	removed, err := g.Delete(ctx, id)
	if err != nil {
		return st, false, err
	}

	// Duplicate rows may remain, so the saved set is rebuilt from the store.
	bookmarks, err := g.Load(ctx)
	if err != nil {
		log.Printf("Warning: could not reload bookmarks after delete: %v", err)
		return st, removed, nil
	}
	return st.WithSaved(storage.SavedSet(bookmarks)), removed, nil
}

// Bookmarks lists every stored bookmark. On failure the list is empty.
func (h *Hub) Bookmarks(ctx context.Context) ([]models.Bookmark, error) {
	g, err := h.gateway()
	if err != nil {
		return []models.Bookmark{}, err
	}
	return g.Load(ctx)
}

// Export writes every bookmark to w as an xlsx workbook.
func (h *Hub) Export(ctx context.Context, w io.Writer) (int, error) {
	bookmarks, err := h.Bookmarks(ctx)
	if err != nil {
		return 0, err
	}
	if err := storage.ExportBookmarks(w, bookmarks); err != nil {
		return 0, err
	}
	return len(bookmarks), nil
}

// InitSheet creates a bookmark spreadsheet and remembers its id.
func (h *Hub) InitSheet(ctx context.Context, shareWith string) (storage.CreateResult, error) {
	services, err := h.sheetsServices(ctx)
	if err != nil {
		return storage.CreateResult{}, err
	}

	result, err := services.CreateSpreadsheet(ctx, h.cfg.Bookmarks.SheetName, h.cfg.Bookmarks.FolderID, shareWith)
	if err != nil {
		return storage.CreateResult{}, failure.Wrap("init sheet", err)
	}
	if err := h.store.SaveSpreadsheetID(result.SpreadsheetID); err != nil {
		return result, err
	}
	return result, nil
}
