// Package store persists imported catalogs in SQLite so lookups can be
// served without re-parsing documents.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/s0up4200/qbtlang/ts"
)

//go:embed schema.sql
var schema string

// CatalogInfo describes one imported catalog.
type CatalogInfo struct {
	ID             string    `json:"id"`
	Language       string    `json:"language"`
	Version        string    `json:"version"`
	SourceLanguage string    `json:"source_language,omitempty"`
	Path           string    `json:"path"`
	ImportedAt     time.Time `json:"imported_at"`
	Messages       int       `json:"messages"`
}

// Store is a SQLite-backed catalog repository.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// Open opens the database at path and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}

	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// database/sql pools connections; pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, sq: sq.StatementBuilder}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	return ctx.Err()
}

// ImportCatalog stores cat under a new id in one transaction.
func (s *Store) ImportCatalog(ctx context.Context, cat *ts.Catalog, path string) (CatalogInfo, error) {
	if err := s.ready(ctx); err != nil {
		return CatalogInfo{}, err
	}
	if cat == nil {
		return CatalogInfo{}, ts.ErrNilCatalog
	}

	info := CatalogInfo{
		ID:             uuid.NewString(),
		Language:       cat.Language,
		Version:        cat.Version,
		SourceLanguage: cat.SourceLanguage,
		Path:           path,
		ImportedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := s.sq.Insert("catalogs").
		Columns("id", "language", "version", "source_language", "path", "imported_at").
		Values(info.ID, info.Language, info.Version, info.SourceLanguage, info.Path, info.ImportedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return CatalogInfo{}, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return CatalogInfo{}, fmt.Errorf("insert catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (
		catalog_id, seq, context_index, context, source, comment, extra_comment,
		translator_comment, translation, type, numerus, numerus_forms, locations,
		message_id, attrs
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return CatalogInfo{}, fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	seq := 0
	for ci, c := range cat.Contexts {
		for _, m := range c.Messages {
			forms, err := json.Marshal(nonNil(m.NumerusForms))
			if err != nil {
				return CatalogInfo{}, err
			}
			locs, err := json.Marshal(nonNil(m.Locations))
			if err != nil {
				return CatalogInfo{}, err
			}
			attrs, err := json.Marshal(nonNil(m.Attrs))
			if err != nil {
				return CatalogInfo{}, err
			}
			if _, err := stmt.ExecContext(ctx,
				info.ID, seq, ci, c.Name, m.Source, m.Comment, m.ExtraComment,
				m.TranslatorComment, m.Translation, string(m.Type), m.Numerus,
				string(forms), string(locs), m.ID, string(attrs),
			); err != nil {
				return CatalogInfo{}, fmt.Errorf("insert message %s|%s: %w", c.Name, m.Source, err)
			}
			seq++
		}
	}
	info.Messages = seq

	if err := tx.Commit(); err != nil {
		return CatalogInfo{}, fmt.Errorf("commit import: %w", err)
	}
	return info, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Store) catalogQuery() sq.SelectBuilder {
	return s.sq.Select("c.id", "c.language", "c.version", "c.source_language", "c.path", "c.imported_at", "COUNT(m.seq)").
		From("catalogs c").
		LeftJoin("messages m ON m.catalog_id = c.id").
		GroupBy("c.id")
}

func scanInfo(row interface{ Scan(...any) error }) (CatalogInfo, error) {
	var info CatalogInfo
	var importedAt int64
	if err := row.Scan(&info.ID, &info.Language, &info.Version, &info.SourceLanguage, &info.Path, &importedAt, &info.Messages); err != nil {
		return CatalogInfo{}, err
	}
	info.ImportedAt = time.UnixMilli(importedAt).UTC()
	return info, nil
}

// ListCatalogs returns imported catalogs, newest first. An empty language
// lists all of them.
func (s *Store) ListCatalogs(ctx context.Context, language string) ([]CatalogInfo, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	q := s.catalogQuery().OrderBy("c.imported_at DESC", "c.rowid DESC")
	if language != "" {
		q = q.Where(sq.Eq{"c.language": language})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var out []CatalogInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Latest returns the most recent import for language.
func (s *Store) Latest(ctx context.Context, language string) (CatalogInfo, error) {
	if err := s.ready(ctx); err != nil {
		return CatalogInfo{}, err
	}
	query, args, err := s.catalogQuery().
		Where(sq.Eq{"c.language": language}).
		OrderBy("c.imported_at DESC", "c.rowid DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return CatalogInfo{}, err
	}
	info, err := scanInfo(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return CatalogInfo{}, fmt.Errorf("%w: language %s", ErrNotFound, language)
	}
	return info, err
}

// DeleteCatalog removes a catalog and its messages.
func (s *Store) DeleteCatalog(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	query, args, err := s.sq.Delete("catalogs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete catalog: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Translate looks up key in the newest catalog for language with the same
// fallback rules as ts.Index: the exact key, then the key without its
// comment, then the source text.
func (s *Store) Translate(ctx context.Context, language string, key ts.Key) (string, error) {
	info, err := s.Latest(ctx, language)
	if err != nil {
		return key.Source, err
	}

	m, ok, err := s.findMessage(ctx, info.ID, key)
	if err != nil {
		return key.Source, err
	}
	if !ok && key.Comment != "" {
		m, ok, err = s.findMessage(ctx, info.ID, ts.Key{Context: key.Context, Source: key.Source})
		if err != nil {
			return key.Source, err
		}
	}
	if !ok || !m.Finished() || m.Translation == "" {
		return key.Source, nil
	}
	return m.Translation, nil
}

func (s *Store) findMessage(ctx context.Context, catalogID string, key ts.Key) (ts.Message, bool, error) {
	query, args, err := s.sq.Select("translation", "type").
		From("messages").
		Where(sq.Eq{"catalog_id": catalogID, "context": key.Context, "source": key.Source, "comment": key.Comment}).
		OrderBy("seq").
		Limit(1).
		ToSql()
	if err != nil {
		return ts.Message{}, false, err
	}

	var m ts.Message
	var typ string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&m.Translation, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return ts.Message{}, false, nil
	}
	if err != nil {
		return ts.Message{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	m.Source = key.Source
	m.Comment = key.Comment
	m.Type = ts.TranslationType(typ)
	return m, true, nil
}

// LoadCatalog rebuilds the stored catalog in its original order.
func (s *Store) LoadCatalog(ctx context.Context, id string) (*ts.Catalog, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	query, args, err := s.sq.Select("language", "version", "source_language").
		From("catalogs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	cat := &ts.Catalog{}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&cat.Language, &cat.Version, &cat.SourceLanguage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", id, err)
	}

	query, args, err = s.sq.Select(
		"context_index", "context", "source", "comment", "extra_comment", "translator_comment",
		"translation", "type", "numerus", "numerus_forms", "locations", "message_id", "attrs",
	).From("messages").Where(sq.Eq{"catalog_id": id}).OrderBy("seq").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load messages %s: %w", id, err)
	}
	defer rows.Close()

	lastIndex := -1
	for rows.Next() {
		var (
			ctxIndex                         int
			ctxName, typ, forms, locs, attrs string
			m                                ts.Message
		)
		if err := rows.Scan(&ctxIndex, &ctxName, &m.Source, &m.Comment, &m.ExtraComment, &m.TranslatorComment,
			&m.Translation, &typ, &m.Numerus, &forms, &locs, &m.ID, &attrs); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Type = ts.TranslationType(typ)
		if err := json.Unmarshal([]byte(forms), &m.NumerusForms); err != nil {
			return nil, fmt.Errorf("decode numerus forms: %w", err)
		}
		if err := json.Unmarshal([]byte(locs), &m.Locations); err != nil {
			return nil, fmt.Errorf("decode locations: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &m.Attrs); err != nil {
			return nil, fmt.Errorf("decode attrs: %w", err)
		}
		if len(m.NumerusForms) == 0 {
			m.NumerusForms = nil
		}
		if len(m.Locations) == 0 {
			m.Locations = nil
		}
		if len(m.Attrs) == 0 {
			m.Attrs = nil
		}

		if ctxIndex != lastIndex {
			cat.Contexts = append(cat.Contexts, ts.Context{Name: ctxName})
			lastIndex = ctxIndex
		}
		last := &cat.Contexts[len(cat.Contexts)-1]
		last.Messages = append(last.Messages, m)
	}
	return cat, rows.Err()
}
