// Package sqlitestore persists content items in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
)

const columns = "path, uid, id, type, title, description, text, state, effective, canonical_url, created, modified"

// timeLayout is fixed width in UTC, so stored timestamps sort and compare as
// text for years 0000 through 9999.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements content.Store on SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Open opens (and migrates) the database at dbPath. ":memory:" gives a
// private in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryStorage, "initialize content schema").Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		path TEXT PRIMARY KEY,
		uid TEXT NOT NULL UNIQUE,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		effective TEXT,
		canonical_url TEXT,
		created TEXT NOT NULL,
		modified TEXT NOT NULL,
		indexed_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_items_state ON items(state);
	CREATE INDEX IF NOT EXISTS idx_items_effective ON items(effective);
	CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Get(ctx context.Context, path string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path = content.JoinPath(path)
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM items WHERE path = ?", path)
	item, err := scanItem(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound.WithContext("path", path)
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "query content item").
			WithContext("path", path).
			Build()
	}
	return item, nil
}

func (s *Store) Put(ctx context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var canonical sql.NullString
	if item.CanonicalURL != nil {
		canonical = sql.NullString{String: *item.CanonicalURL, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			uid = excluded.uid, id = excluded.id, type = excluded.type,
			title = excluded.title, description = excluded.description, text = excluded.text,
			state = excluded.state, effective = excluded.effective,
			canonical_url = excluded.canonical_url,
			created = excluded.created, modified = excluded.modified`,
		content.JoinPath(item.Path), item.UID, item.ID, item.Type, item.Title, item.Description, item.Text,
		string(item.State), nullTime(item.EffectiveDate), canonical,
		formatTime(item.Created), formatTime(item.Modified),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "upsert content item").
			WithContext("path", item.Path).
			Build()
	}
	return nil
}

func (s *Store) Find(ctx context.Context, q content.Query) ([]*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if q.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(q.State))
	}
	if len(q.Types) > 0 {
		where = append(where, "type IN (?"+strings.Repeat(", ?", len(q.Types)-1)+")")
		for _, typ := range q.Types {
			args = append(args, typ)
		}
	}
	if q.PathPrefix != "" && q.PathPrefix != "/" {
		prefix := content.JoinPath(q.PathPrefix)
		where = append(where, "(path = ? OR substr(path, 1, ?) = ?)")
		args = append(args, prefix, len(prefix)+1, prefix+"/")
	}
	if !q.EffectiveBefore.IsZero() {
		where = append(where, "(effective IS NULL OR effective < ?)")
		args = append(args, formatTime(q.EffectiveBefore))
	}

	query := "SELECT " + columns + " FROM items"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "query content items").Build()
	}
	defer rows.Close()

	var items []*content.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryStorage, "scan content item").Build()
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "iterate content items").Build()
	}
	return items, nil
}

// Reindex stamps the item's catalog entry.
func (s *Store) Reindex(ctx context.Context, item *content.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE items SET indexed_at = ? WHERE path = ?",
		formatTime(s.now()), content.JoinPath(item.Path))
	if err != nil {
		return errors.WrapError(err, errors.CategoryStorage, "reindex content item").
			WithContext("path", item.Path).
			Build()
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return content.ErrNotFound.WithContext("path", item.Path)
	}
	return nil
}

// IndexedAt returns when the item at path was last reindexed.
func (s *Store) IndexedAt(ctx context.Context, path string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ts sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT indexed_at FROM items WHERE path = ?", content.JoinPath(path)).Scan(&ts)
	if stderrors.Is(err, sql.ErrNoRows) {
		return time.Time{}, content.ErrNotFound.WithContext("path", path)
	}
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.CategoryStorage, "query index stamp").Build()
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return parseTime(ts.String)
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*content.Item, error) {
	var (
		item              content.Item
		state             string
		effective         sql.NullString
		canonical         sql.NullString
		created, modified string
	)
	err := row.Scan(&item.Path, &item.UID, &item.ID, &item.Type, &item.Title, &item.Description, &item.Text,
		&state, &effective, &canonical, &created, &modified)
	if err != nil {
		return nil, err
	}
	item.State = content.State(state)
	if effective.Valid {
		if item.EffectiveDate, err = parseTime(effective.String); err != nil {
			return nil, err
		}
	}
	if canonical.Valid {
		item.CanonicalURL = content.StringPtr(canonical.String)
	}
	if item.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if item.Modified, err = parseTime(modified); err != nil {
		return nil, err
	}
	return &item, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, errors.WrapError(err, errors.CategoryStorage, "parse stored timestamp").
			WithContext("value", v).
			Build()
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}
