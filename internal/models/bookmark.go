package models

import (
	"time"
)

// SavedAtLayout is how SavedAt is written into a bookmark row.
const SavedAtLayout = "2006-01-02 15:04:05"

// Bookmark is a persisted item plus the memo generated for it.
type Bookmark struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Source  string    `json:"source"`
	SavedAt time.Time `json:"saved_at"`
	Memo    string    `json:"memo"`
}

// BookmarkHeader is the header row of a bookmark table.
var BookmarkHeader = []string{"id", "title", "url", "source", "saved_at", "memo"}

// NewBookmark builds the record stored for item.
func NewBookmark(item Item, memo string, now time.Time) Bookmark {
	return Bookmark{
		ID:      item.ID,
		Title:   item.Title,
		URL:     item.URL,
		Source:  item.Source,
		SavedAt: now,
		Memo:    memo,
	}
}

// Row returns the bookmark as table cells in BookmarkHeader order.
func (b Bookmark) Row() []string {
	return []string{
		b.ID,
		b.Title,
		b.URL,
		b.Source,
		b.SavedAt.Format(SavedAtLayout),
		b.Memo,
	}
}

// BookmarkFromRow parses a table row. Missing trailing cells are treated as
// empty, and an unparseable saved_at leaves SavedAt zero.
func BookmarkFromRow(row []string) (Bookmark, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	b := Bookmark{
		ID:     cell(0),
		Title:  cell(1),
		URL:    cell(2),
		Source: cell(3),
		Memo:   cell(5),
	}
	if b.ID == "" {
		return Bookmark{}, false
	}
	if t, err := time.ParseInLocation(SavedAtLayout, cell(4), time.Local); err == nil {
		b.SavedAt = t
	}
	return b, true
}

// IsHeaderRow reports whether row is exactly the bookmark header.
func IsHeaderRow(row []string) bool {
	if len(row) != len(BookmarkHeader) {
		return false
	}
	for i, cell := range row {
		if cell != BookmarkHeader[i] {
			return false
		}
	}
	return true
}
