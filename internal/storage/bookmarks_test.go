package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

// memTable is an in-memory Table.
type memTable struct {
	rows    [][]string
	readErr error
	appErr  error
}

func (m *memTable) ReadAll(ctx context.Context) ([][]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.rows, nil
}

func (m *memTable) Append(ctx context.Context, row []string) error {
	if m.appErr != nil {
		return m.appErr
	}
	m.rows = append(m.rows, append([]string(nil), row...))
	return nil
}

func (m *memTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	if m.readErr != nil {
		return -1, m.readErr
	}
	return findIn(m.rows, column, value), nil
}

func (m *memTable) DeleteRow(ctx context.Context, position int) error {
	m.rows = append(m.rows[:position], m.rows[position+1:]...)
	return nil
}

func fixedGateway(table Table) *Gateway {
	g := NewGateway(table)
	g.now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local) }
	return g
}

func TestGatewaySaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	table := &memTable{rows: [][]string{models.BookmarkHeader}}
	g := fixedGateway(table)

	item := models.Item{ID: "u1", Title: "Title", URL: "https://x/1", Source: "OpenAI"}
	saved, err := g.Save(ctx, item, "memo text")
	require.NoError(t, err)
	assert.Equal(t, "u1", saved.ID)

	bookmarks, err := g.Load(ctx)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, saved, bookmarks[0])
	assert.Equal(t, "memo text", bookmarks[0].Memo)
}

func TestGatewaySaveTwiceYieldsTwoRows(t *testing.T) {
	ctx := context.Background()
	table := &memTable{}
	g := fixedGateway(table)

	item := models.Item{ID: "dup"}
	_, err := g.Save(ctx, item, "")
	require.NoError(t, err)
	_, err = g.Save(ctx, item, "")
	require.NoError(t, err)

	bookmarks, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, bookmarks, 2)
	assert.Len(t, SavedSet(bookmarks), 1)
}

func TestGatewayDelete(t *testing.T) {
	ctx := context.Background()
	table := &memTable{rows: [][]string{
		models.BookmarkHeader,
		{"a", "A"},
		{"b", "B"},
		{"a", "A again"},
	}}
	g := fixedGateway(table)

	removed, err := g.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	// Only the first matching row goes.
	assert.Equal(t, [][]string{models.BookmarkHeader, {"b", "B"}, {"a", "A again"}}, table.rows)

	removed, err = g.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, table.rows, 3)
}

func TestGatewayDeleteThenLoad(t *testing.T) {
	ctx := context.Background()
	g := fixedGateway(&memTable{})

	_, err := g.Save(ctx, models.Item{ID: "x"}, "")
	require.NoError(t, err)
	removed, err := g.Delete(ctx, "x")
	require.NoError(t, err)
	assert.True(t, removed)

	bookmarks, err := g.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, SavedSet(bookmarks), "x")

	removed, err = g.Delete(ctx, "x")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGatewayLoadSkipsHeaderAndBlankRows(t *testing.T) {
	g := fixedGateway(&memTable{rows: [][]string{
		models.BookmarkHeader,
		{},
		{"", "no id"},
		{"ok", "Fine", "https://x", "arXiv", "2025-01-02 03:04:05"},
	}})

	bookmarks, err := g.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "ok", bookmarks[0].ID)
	assert.Equal(t, "", bookmarks[0].Memo)
}

func TestGatewayBookmarkWithHeaderLikeID(t *testing.T) {
	ctx := context.Background()
	table := &memTable{rows: [][]string{models.BookmarkHeader}}
	g := fixedGateway(table)

	_, err := g.Save(ctx, models.Item{ID: "id", Title: "Literal id"}, "")
	require.NoError(t, err)

	bookmarks, err := g.Load(ctx)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "Literal id", bookmarks[0].Title)

	removed, err := g.Delete(ctx, "id")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, [][]string{models.BookmarkHeader}, table.rows)

	removed, err = g.Delete(ctx, "id")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGatewayHeaderOnlySkippedAtTop(t *testing.T) {
	g := fixedGateway(&memTable{rows: [][]string{
		{"a", "A"},
		models.BookmarkHeader,
	}})

	bookmarks, err := g.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, "id", bookmarks[1].ID)
}

func TestGatewayLoadFailureDegradesToEmpty(t *testing.T) {
	g := fixedGateway(&memTable{readErr: &failure.StatusError{StatusCode: 403}})

	bookmarks, err := g.Load(context.Background())
	require.Error(t, err)
	assert.NotNil(t, bookmarks)
	assert.Empty(t, bookmarks)
	assert.Equal(t, failure.Auth, failure.Classify(err))
}

func TestGatewaySaveFailure(t *testing.T) {
	g := fixedGateway(&memTable{appErr: errors.New("boom")})

	_, err := g.Save(context.Background(), models.Item{ID: "a"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSavedSet(t *testing.T) {
	set := SavedSet([]models.Bookmark{{ID: "a"}, {ID: "b"}})
	assert.Equal(t, map[string]bool{"a": true, "b": true}, set)
	assert.Empty(t, SavedSet(nil))
}
