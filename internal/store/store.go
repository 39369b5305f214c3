// Package store keeps the parsed notes library in a SQLite index so links can
// be searched without re-reading every file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dgallion1/linkorg/internal/linkdata"
)

// ErrNotFound is returned when no file is indexed under a path.
var ErrNotFound = errors.New("not found")

// DBName is the index file created inside the data directory.
const DBName = "linkorg.db"

// breadcrumbSep joins heading titles in the searchable breadcrumb column.
const breadcrumbSep = "\x1f"

const (
	defaultSearchLimit = 100
	maxSearchLimit     = 1000
)

// Store is the SQLite link index.
type Store struct {
	db *sql.DB
}

// Open creates dataDir if needed and opens (or creates) the index in it.
func Open(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := "file:" + filepath.Join(dataDir, DBName) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	// SQLite allows one writer; a single connection keeps scans from
	// tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// FileSummary describes one indexed file without its tree.
type FileSummary struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	CreationDate string    `json:"creation_date,omitempty"`
	Tags         []string  `json:"tags"`
	Hash         string    `json:"hash"`
	Headings     int       `json:"headings"`
	Links        int       `json:"links"`
	IndexedAt    time.Time `json:"indexed_at"`
}

// LinkRecord is one indexed link with the file and headings it sits under.
type LinkRecord struct {
	ID          string   `json:"id"`
	Path        string   `json:"path"`
	FileTitle   string   `json:"file_title"`
	Breadcrumb  []string `json:"breadcrumb"`
	Name        string   `json:"name"`
	Link        string   `json:"link"`
	Description *string  `json:"description,omitempty"`
	Likeability *string  `json:"likeability,omitempty"`
	ReadTill    int      `json:"read_till"`
	LineNumber  int      `json:"line_number"`
}

// LinkQuery filters SearchLinks. Empty fields match everything.
type LinkQuery struct {
	Text        string
	Tag         string
	Likeability string
	Unread      bool
	Path        string
	Limit       int
}

// TagCount is a file tag and the number of files carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Files int    `json:"files"`
}

// Stats summarizes the index.
type Stats struct {
	Files       int       `json:"files"`
	Headings    int       `json:"headings"`
	Links       int       `json:"links"`
	Unread      int       `json:"unread"`
	Tags        int       `json:"tags"`
	LastIndexed time.Time `json:"last_indexed,omitzero"`
}

// newID returns a time-ordered UUID v7, or a v4 if v7 generation fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SaveFile replaces everything indexed for path with the given tree.
func (s *Store) SaveFile(ctx context.Context, path, hash string, f *linkdata.FileData) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var fileID string
	err = tx.QueryRowContext(ctx, `SELECT file_id FROM files WHERE path = ?`, path).Scan(&fileID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		fileID = newID()
		_, err = tx.ExecContext(ctx, `INSERT INTO files
			(file_id, path, title, description, creation_date, hash, headings, links, data, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, path, f.FileTitle, f.FileDescription, f.FileCreationDate, hash,
			f.HeadingCount(), f.LinkCount(), string(data), now)
	case err != nil:
		return fmt.Errorf("lookup %s: %w", path, err)
	default:
		if err := deleteChildren(ctx, tx, fileID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE files SET
			title = ?, description = ?, creation_date = ?, hash = ?,
			headings = ?, links = ?, data = ?, indexed_at = ?
			WHERE file_id = ?`,
			f.FileTitle, f.FileDescription, f.FileCreationDate, hash,
			f.HeadingCount(), f.LinkCount(), string(data), now, fileID)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.FileTags))
	for _, tag := range f.FileTags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		if _, err := tx.ExecContext(ctx, `INSERT INTO file_tags (file_id, tag) VALUES (?, ?)`, fileID, tag); err != nil {
			return fmt.Errorf("save tag %q: %w", tag, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links
		(link_id, file_id, position, breadcrumb, breadcrumb_text, name, link, description, likeability, read_till, line_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare links: %w", err)
	}
	defer stmt.Close()

	var linkErr error
	pos := 0
	f.EachLink(func(breadcrumb []string, l linkdata.LinkData) {
		if linkErr != nil {
			return
		}
		bc := breadcrumb
		if bc == nil {
			bc = []string{}
		}
		bcJSON, err := json.Marshal(bc)
		if err != nil {
			linkErr = err
			return
		}
		_, linkErr = stmt.ExecContext(ctx, newID(), fileID, pos, string(bcJSON), strings.Join(bc, breadcrumbSep),
			l.Name, l.Link, nullString(l.Description), nullString(l.Likeability), l.ReadTill, l.LineNumber)
		pos++
	})
	if linkErr != nil {
		return fmt.Errorf("save links for %s: %w", path, linkErr)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", path, err)
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, fileID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	return nil
}

// GetFile returns the stored tree for path.
func (s *Store) GetFile(ctx context.Context, path string) (*linkdata.FileData, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM files WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	var f linkdata.FileData
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	f.Normalize()
	return &f, nil
}

// FileHash returns the content hash recorded when path was last indexed.
func (s *Store) FileHash(ctx context.Context, path string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get hash %s: %w", path, err)
	}
	return hash, nil
}

// ListFiles returns every indexed file ordered by path.
func (s *Store) ListFiles(ctx context.Context) ([]FileSummary, error) {
	tags, err := s.tagsByFile(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT file_id, path, title, description, creation_date, hash, headings, links, indexed_at
		FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := []FileSummary{}
	for rows.Next() {
		var fs FileSummary
		var indexed string
		if err := rows.Scan(&fs.ID, &fs.Path, &fs.Title, &fs.Description, &fs.CreationDate, &fs.Hash, &fs.Headings, &fs.Links, &indexed); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		fs.IndexedAt, _ = time.Parse(time.RFC3339Nano, indexed)
		fs.Tags = tags[fs.ID]
		if fs.Tags == nil {
			fs.Tags = []string{}
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

func (s *Store) tagsByFile(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, tag FROM file_tags ORDER BY file_id, tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

// DeleteFile removes path from the index.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := deletePath(ctx, tx, path); err != nil {
		return err
	}
	return tx.Commit()
}

func deletePath(ctx context.Context, tx *sql.Tx, path string) error {
	var fileID string
	err := tx.QueryRowContext(ctx, `SELECT file_id FROM files WHERE path = ?`, path).Scan(&fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", path, err)
	}
	if err := deleteChildren(ctx, tx, fileID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// DeleteMissing removes every indexed file whose path is not in keep and
// returns the removed paths.
func (s *Store) DeleteMissing(ctx context.Context, keep []string) ([]string, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, p := range keep {
		keepSet[p] = true
	}

	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan path: %w", err)
		}
		if !keepSet[p] {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stale) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, p := range stale {
		if err := deletePath(ctx, tx, p); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return stale, nil
}

// SearchLinks returns links matching every non-empty filter in q, ordered by
// file path and line.
func (s *Store) SearchLinks(ctx context.Context, q LinkQuery) ([]LinkRecord, error) {
	var (
		where []string
		args  []any
	)
	if t := strings.TrimSpace(q.Text); t != "" {
		pat := likePattern(t)
		where = append(where, `(l.name LIKE ? ESCAPE '\' OR l.link LIKE ? ESCAPE '\'
			OR COALESCE(l.description, '') LIKE ? ESCAPE '\' OR l.breadcrumb_text LIKE ? ESCAPE '\')`)
		args = append(args, pat, pat, pat, pat)
	}
	if t := strings.TrimSpace(q.Tag); t != "" {
		where = append(where, `l.file_id IN (SELECT file_id FROM file_tags WHERE tag = ?)`)
		args = append(args, t)
	}
	if t := strings.TrimSpace(q.Likeability); t != "" {
		where = append(where, `COALESCE(l.likeability, '') LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(t))
	}
	if q.Unread {
		where = append(where, `l.read_till = 0`)
	}
	if p := strings.Trim(strings.TrimSpace(q.Path), "/"); p != "" {
		where = append(where, `(f.path = ? OR f.path LIKE ? ESCAPE '\')`)
		args = append(args, p, escapeLike(p)+"/%")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	query := `SELECT l.link_id, f.path, f.title, l.breadcrumb, l.name, l.link, l.description, l.likeability, l.read_till, l.line_number
		FROM links l JOIN files f ON f.file_id = l.file_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY f.path, l.line_number, l.position LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search links: %w", err)
	}
	defer rows.Close()

	out := []LinkRecord{}
	for rows.Next() {
		var (
			r          LinkRecord
			bc         string
			desc, like sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Path, &r.FileTitle, &bc, &r.Name, &r.Link, &desc, &like, &r.ReadTill, &r.LineNumber); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if err := json.Unmarshal([]byte(bc), &r.Breadcrumb); err != nil {
			return nil, fmt.Errorf("decode breadcrumb: %w", err)
		}
		if desc.Valid {
			r.Description = linkdata.StringPtr(desc.String)
		}
		if like.Valid {
			r.Likeability = linkdata.StringPtr(like.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Tags returns every file tag with its file count, most used first.
func (s *Store) Tags(ctx context.Context) ([]TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag, COUNT(*) FROM file_tags GROUP BY tag ORDER BY COUNT(*) DESC, tag`)
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}
	defer rows.Close()
	out := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Files); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// Stats returns index totals.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st      Stats
		indexed sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(headings), 0), COALESCE(SUM(links), 0), MAX(indexed_at) FROM files`).
		Scan(&st.Files, &st.Headings, &st.Links, &indexed)
	if err != nil {
		return st, fmt.Errorf("file stats: %w", err)
	}
	if indexed.Valid {
		st.LastIndexed, _ = time.Parse(time.RFC3339Nano, indexed.String)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE read_till = 0`).Scan(&st.Unread); err != nil {
		return st, fmt.Errorf("unread stats: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT tag) FROM file_tags`).Scan(&st.Tags); err != nil {
		return st, fmt.Errorf("tag stats: %w", err)
	}
	return st, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// likePattern builds a case-insensitive substring pattern for LIKE.
func likePattern(s string) string {
	return "%" + escapeLike(s) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// IsBusy reports whether err came from SQLite refusing a write because the
// database is locked by another connection or process.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
