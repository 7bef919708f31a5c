package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

func fixtureServer(t *testing.T, lastQuery *string) *httptest.Server {
	t.Helper()
	serve := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if lastQuery != nil {
				*lastQuery = r.URL.RawQuery
			}
			data, err := os.ReadFile("testdata/" + name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/xml")
			w.Write(data)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/query", serve("arxiv.xml"))
	mux.HandleFunc("/blog/feed.xml", serve("blog.xml"))
	mux.HandleFunc("/rss/search", serve("news.xml"))
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>not a feed</body></html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	f := NewFetcher(srv.Client())
	f.ArxivURL = srv.URL + "/api/query"
	f.NewsURL = srv.URL + "/rss/search"
	return f
}

func TestFetcher_Papers(t *testing.T) {
	var query string
	srv := fixtureServer(t, &query)
	f := newTestFetcher(srv)

	items, err := f.Papers(context.Background(), "cs.CL", 5)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Contains(t, query, "search_query=cat%3Acs.CL")
	assert.Contains(t, query, "max_results=5")
	assert.Contains(t, query, "sortBy=submittedDate")
	assert.Contains(t, query, "sortOrder=descending")

	first := items[0]
	assert.Equal(t, "http://arxiv.org/abs/2610.01234v1", first.ID)
	assert.Equal(t, first.ID, first.URL)
	assert.Equal(t, "Sparse Attention for Long Context Models", first.Title)
	assert.Equal(t, "arXiv", first.Source)
	assert.Equal(t, "We study sparse attention patterns for long context language models.", first.Content)
	assert.Equal(t, "2026-10-17", first.Date)
	assert.Equal(t, "🎓", first.Icon)
	assert.Equal(t, models.KindPaper, first.Kind)
	assert.Equal(t, time.Date(2026, 10, 17, 17, 59, 59, 0, time.UTC), first.Published.UTC())
}

func TestFetcher_PapersRespectsLimit(t *testing.T) {
	srv := fixtureServer(t, nil)
	f := newTestFetcher(srv)

	items, err := f.Papers(context.Background(), "cs.CL", 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetcher_Blog(t *testing.T) {
	srv := fixtureServer(t, nil)
	f := newTestFetcher(srv)

	items, err := f.Blog(context.Background(), "Example", srv.URL+"/blog/feed.xml")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "https://blog.example.com/model-x", items[0].ID)
	assert.Equal(t, "Example", items[0].Source)
	assert.Equal(t, "Introducing Model X", items[0].Title)
	assert.Contains(t, items[0].Content, "Model X is")
	assert.Equal(t, "2026-10-16", items[0].Date)
	assert.Equal(t, models.KindBlog, items[0].Kind)

	undated := items[2]
	assert.False(t, undated.HasTimestamp())
	assert.Equal(t, "Blog", undated.Date)
}

func TestFetcher_News(t *testing.T) {
	var query string
	srv := fixtureServer(t, &query)
	f := newTestFetcher(srv)

	items, err := f.News(context.Background(), "DeepMind", 7)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Contains(t, query, "q=DeepMind+when%3A7d")
	assert.Contains(t, query, "hl=en-US")
	assert.Contains(t, query, "ceid=US%3Aen")

	assert.Equal(t, "https://news.google.com/rss/articles/AAA", items[0].ID)
	assert.Equal(t, "News", items[0].Source)
	assert.Equal(t, "News", items[0].Date)
	assert.Equal(t, "🌍", items[0].Icon)
}

func TestFetcher_Failures(t *testing.T) {
	srv := fixtureServer(t, nil)
	f := newTestFetcher(srv)
	ctx := context.Background()

	_, err := f.Blog(ctx, "Forbidden", srv.URL+"/forbidden")
	require.Error(t, err)
	assert.Equal(t, failure.Auth, failure.Classify(err))

	_, err = f.Blog(ctx, "HTML", srv.URL+"/html")
	require.Error(t, err)
	assert.Equal(t, failure.Malformed, failure.Classify(err))

	_, err = f.Blog(ctx, "Bad", "ftp://example.com/feed")
	require.Error(t, err)
	assert.Equal(t, failure.Config, failure.Classify(err))
}

func TestFetcher_LiveArxiv(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping network test in short mode")
	}

	f := NewFetcher(&http.Client{Timeout: 30 * time.Second})
	items, err := f.Papers(context.Background(), "cs.CL", 2)
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEmpty(t, it.ID)
		assert.NotEmpty(t, it.Title)
	}
}
