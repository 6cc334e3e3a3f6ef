/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog caches SD-card directory scans in a local SQLite
// database, so the file browser app doesn't need to re-stat every book on
// every page of pagination. A scan is invalidated explicitly when the
// browser is entered freshly (the directory may have changed on SD since
// last visited) and otherwise reused across pagination, matching the
// caching policy this spec's file-browser section describes.
//
// This is a host/simulator-only component: there is no SQLite on the real
// MCU target, where the "catalog" is just a single in-memory directory
// listing rebuilt every time the browser is entered.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "pulpcore/internal/log"

	_ "modernc.org/sqlite"
)

const (
	// DirName is the directory the catalog database lives under, rooted
	// at the emulated SD root.
	DirName  = "_CATALOG"
	FileName = "catalog.sqlite"

	schemaVersion = 1
)

// Entry is one cataloged book.
type Entry struct {
	Path    string // path relative to the SD root
	Title   string
	Author  string
	Size    int64
	ModTime time.Time
	Hash    uint32 // FNV-1a of Path, matching the bookmark table's keying scheme
}

// Catalog wraps the open database for one SD root.
type Catalog struct {
	db   *sql.DB
	root string
}

// Path returns the full path to the catalog database file for sdRoot.
func Path(sdRoot string) string {
	return filepath.Join(sdRoot, DirName, FileName)
}

// Open creates (if needed) and opens the catalog database for sdRoot,
// ensuring the schema and FTS5 index exist.
func Open(ctx context.Context, sdRoot string) (*Catalog, error) {
	l := applog.WithOperation(applog.WithComponent("catalog"), "open").With(slog.String("root", sdRoot))

	if err := os.MkdirAll(filepath.Join(sdRoot, DirName), 0o755); err != nil {
		l.Error("create catalog dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("catalog: create dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(Path(sdRoot)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("catalog: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("catalog: enable WAL: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("catalog ready", slog.String("path", Path(sdRoot)))
	return &Catalog{db: db, root: sdRoot}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS books (
			path      TEXT PRIMARY KEY,
			title     TEXT NOT NULL,
			author    TEXT NOT NULL,
			size      INTEGER NOT NULL,
			mtime     TEXT NOT NULL,
			name_hash INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_books_hash ON books(name_hash);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_books USING fts5(
			title, author, path UNINDEXED,
			content='books', content_rowid='rowid',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS books_ai AFTER INSERT ON books BEGIN
			INSERT INTO fts_books(rowid, title, author, path) VALUES (new.rowid, new.title, new.author, new.path);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS books_ad AFTER DELETE ON books BEGIN
			INSERT INTO fts_books(fts_books, rowid, title, author, path) VALUES ('delete', old.rowid, old.title, old.author, old.path);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS books_au AFTER UPDATE ON books BEGIN
			INSERT INTO fts_books(fts_books, rowid, title, author, path) VALUES ('delete', old.rowid, old.title, old.author, old.path);
			INSERT INTO fts_books(rowid, title, author, path) VALUES (new.rowid, new.title, new.author, new.path);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("catalog: ensure schema: %w", err)
		}
	}

	var have string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='schema_version'`).Scan(&have)
	if err == sql.ErrNoRows {
		_, err = db.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES('schema_version', ?)`, fmt.Sprint(schemaVersion))
	}
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("catalog: seed schema_version: %w", err)
	}
	return nil
}

// Invalidate drops all cached entries. The file browser calls this every
// time it is entered fresh (as opposed to paginated within an already-open
// listing), since the SD card's contents may have changed since last
// visited.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM books;`); err != nil {
		return fmt.Errorf("catalog: invalidate: %w", err)
	}
	return nil
}

// Replace atomically replaces the cached listing with entries, the result
// of a fresh directory scan.
func (c *Catalog) Replace(ctx context.Context, entries []Entry) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM books;`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("catalog: clear books: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO books(path, title, author, size, mtime, name_hash) VALUES(?,?,?,?,?,?);`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer ins.Close()
	for _, e := range entries {
		if _, err := ins.ExecContext(ctx, e.Path, e.Title, e.Author, e.Size, e.ModTime.UTC().Format(time.RFC3339), e.Hash); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("catalog: insert book %q: %w", e.Path, err)
		}
	}
	return tx.Commit()
}

// Count reports how many entries are cached. A zero count after entering
// the browser means the caller must perform a fresh scan and Replace it.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// Page returns up to limit entries ordered by title, starting at offset —
// the shape the file browser's pagination needs without re-scanning SD.
func (c *Catalog) Page(ctx context.Context, offset, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT path, title, author, size, mtime, name_hash FROM books ORDER BY title LIMIT ? OFFSET ?;`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("catalog: page query: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search runs an FTS5 match over title/author and returns matching
// entries ordered by relevance, for the file browser's search-as-you-type.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT b.path, b.title, b.author, b.size, b.mtime, b.name_hash
		FROM fts_books f
		JOIN books b ON b.rowid = f.rowid
		WHERE fts_books MATCH ?
		ORDER BY rank
		LIMIT ?;`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var mtime string
		if err := rows.Scan(&e.Path, &e.Title, &e.Author, &e.Size, &mtime, &e.Hash); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		e.ModTime, _ = time.Parse(time.RFC3339, mtime)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows: %w", err)
	}
	return out, nil
}
