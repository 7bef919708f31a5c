package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thedittmer/intel-hub/internal/models"
)

// Local is the SQLite state database. It keeps the last refreshed feed,
// the summary cache and, when no spreadsheet is configured, the bookmark
// rows.
type Local struct {
	db *sql.DB
}

// OpenLocal opens the database at path, creating the schema if needed.
// Use ":memory:" for a throwaway database.
func OpenLocal(path string) (*Local, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	l := &Local{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return l, nil
}

// Close closes the database connection.
func (l *Local) Close() error {
	return l.db.Close()
}

func (l *Local) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookmark_rows (
		pos INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		title TEXT,
		url TEXT,
		source TEXT,
		saved_at TEXT,
		memo TEXT
	);

	CREATE TABLE IF NOT EXISTS feed_items (
		position INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT,
		source TEXT,
		url TEXT,
		content TEXT,
		date TEXT,
		icon TEXT,
		kind TEXT,
		published INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS summaries (
		item_id TEXT PRIMARY KEY,
		summary TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_bookmark_rows_id ON bookmark_rows(id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// ReadAll returns bookmark rows in insertion order.
func (l *Local) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, title, url, source, saved_at, memo FROM bookmark_rows ORDER BY pos")
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var id, title, url, source, savedAt, memo sql.NullString
		if err := rows.Scan(&id, &title, &url, &source, &savedAt, &memo); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, []string{id.String, title.String, url.String, source.String, savedAt.String, memo.String})
	}
	return out, rows.Err()
}

// Append inserts row. Missing trailing cells are stored empty.
func (l *Local) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(models.BookmarkHeader))
	for i := range cells {
		cells[i] = ""
		if i < len(row) {
			cells[i] = row[i]
		}
	}
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO bookmark_rows (id, title, url, source, saved_at, memo) VALUES (?, ?, ?, ?, ?, ?)",
		cells...)
	if err != nil {
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return nil
}

func (l *Local) FindRow(ctx context.Context, column int, value string) (int, error) {
	rows, err := l.ReadAll(ctx)
	if err != nil {
		return -1, err
	}
	return findIn(rows, column, value), nil
}

// DeleteRow removes the row at position in ReadAll order.
func (l *Local) DeleteRow(ctx context.Context, position int) error {
	var pos int64
	err := l.db.QueryRowContext(ctx,
		"SELECT pos FROM bookmark_rows ORDER BY pos LIMIT 1 OFFSET ?", position).Scan(&pos)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no bookmark row at position %d", position)
	}
	if err != nil {
		return fmt.Errorf("failed to locate bookmark row: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, "DELETE FROM bookmark_rows WHERE pos = ?", pos); err != nil {
		return fmt.Errorf("failed to delete bookmark row: %w", err)
	}
	return nil
}

// SaveFeed replaces the stored feed with items.
func (l *Local) SaveFeed(ctx context.Context, items []models.Item, refreshedAt time.Time) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM feed_items"); err != nil {
		return fmt.Errorf("failed to clear feed: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO feed_items
		(position, id, title, source, url, content, date, icon, kind, published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		var published int64
		if item.HasTimestamp() {
			published = item.Published.Unix()
		}
		if _, err := stmt.ExecContext(ctx, i, item.ID, item.Title, item.Source, item.URL,
			item.Content, item.Date, item.Icon, string(item.Kind), published); err != nil {
			return fmt.Errorf("failed to insert feed item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('last_refresh', ?)",
		refreshedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record refresh time: %w", err)
	}

	return tx.Commit()
}

// LoadFeed returns the stored feed in its original order.
func (l *Local) LoadFeed(ctx context.Context) ([]models.Item, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT id, title, source, url, content, date, icon, kind, published
		FROM feed_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var kind string
		var published int64
		if err := rows.Scan(&item.ID, &item.Title, &item.Source, &item.URL, &item.Content,
			&item.Date, &item.Icon, &kind, &published); err != nil {
			return nil, fmt.Errorf("failed to scan feed item: %w", err)
		}
		item.Kind = models.Kind(kind)
		if published != 0 {
			item.Published = time.Unix(published, 0)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LastRefresh returns when SaveFeed last ran, or the zero time.
func (l *Local) LastRefresh(ctx context.Context) (time.Time, error) {
	var value string
	err := l.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read refresh time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid refresh time %q: %w", value, err)
	}
	return t, nil
}

// PutSummary caches a summary for itemID.
func (l *Local) PutSummary(ctx context.Context, itemID, summary string) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO summaries (item_id, summary, created_at) VALUES (?, ?, ?)",
		itemID, summary, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Summaries returns every cached summary keyed by item id.
func (l *Local) Summaries(ctx context.Context) (map[string]string, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT item_id, summary FROM summaries")
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, summary string
		if err := rows.Scan(&id, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out[id] = summary
	}
	return out, rows.Err()
}
