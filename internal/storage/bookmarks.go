package storage

import (
	"context"
	"log"
	"time"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

// Gateway stores bookmarks as rows in a Table. It does not enforce
// uniqueness: saving the same item twice appends two rows, and callers
// check SavedSet before offering a save.
type Gateway struct {
	table   Table
	now     func() time.Time
	Verbose bool
}

// NewGateway creates a Gateway over table.
func NewGateway(table Table) *Gateway {
	return &Gateway{table: table, now: time.Now}
}

// Load returns every stored bookmark. When the table cannot be read it
// returns an empty, non-nil slice together with the classified error.
func (g *Gateway) Load(ctx context.Context) ([]models.Bookmark, error) {
	rows, err := g.table.ReadAll(ctx)
	if err != nil {
		return []models.Bookmark{}, failure.Wrap("load bookmarks", err)
	}

	bookmarks := make([]models.Bookmark, 0, len(rows))
	for i, row := range rows {
		if i == 0 && models.IsHeaderRow(row) {
			continue
		}
		if b, ok := models.BookmarkFromRow(row); ok {
			bookmarks = append(bookmarks, b)
		}
	}
	if g.Verbose {
		log.Printf("Loaded %d bookmarks", len(bookmarks))
	}
	return bookmarks, nil
}

// Save appends item with memo as a new row.
func (g *Gateway) Save(ctx context.Context, item models.Item, memo string) (models.Bookmark, error) {
	b := models.NewBookmark(item, memo, g.now())
	if err := g.table.Append(ctx, b.Row()); err != nil {
		return models.Bookmark{}, failure.Wrap("save bookmark", err)
	}
	if g.Verbose {
		log.Printf("Saved bookmark %s", b.ID)
	}
	return b, nil
}

// Delete removes the first row whose id equals id. A missing id is a no-op
// and reports false. Find and delete are separate calls, so two concurrent
// deletes of the same id may remove different rows.
func (g *Gateway) Delete(ctx context.Context, id string) (bool, error) {
	pos, err := g.table.FindRow(ctx, 0, id)
	if err != nil {
		return false, failure.Wrap("find bookmark", err)
	}
	if pos == 0 && id == models.BookmarkHeader[0] {
		// The match may be the header row itself.
		if pos, err = g.findPastHeader(ctx, id); err != nil {
			return false, failure.Wrap("find bookmark", err)
		}
	}
	if pos < 0 {
		return false, nil
	}
	if err := g.table.DeleteRow(ctx, pos); err != nil {
		return false, failure.Wrap("delete bookmark", err)
	}
	if g.Verbose {
		log.Printf("Deleted bookmark %s (row %d)", id, pos)
	}
	return true, nil
}

func (g *Gateway) findPastHeader(ctx context.Context, id string) (int, error) {
	rows, err := g.table.ReadAll(ctx)
	if err != nil {
		return -1, err
	}
	if len(rows) == 0 || !models.IsHeaderRow(rows[0]) {
		return findIn(rows, 0, id), nil
	}
	if pos := findIn(rows[1:], 0, id); pos >= 0 {
		return pos + 1, nil
	}
	return -1, nil
}

// SavedSet returns the ids of bookmarks for membership checks.
func SavedSet(bookmarks []models.Bookmark) map[string]bool {
	set := make(map[string]bool, len(bookmarks))
	for _, b := range bookmarks {
		set[b.ID] = true
	}
	return set
}
