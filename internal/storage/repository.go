package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"agency/internal/docstore"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRepository is a docstore.Store backed by a single documents table.
// Bodies are JSON; ordering and filters use json_extract.
type SQLiteRepository struct {
	db *sql.DB
}

var _ docstore.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// NewFromDB wraps an already migrated database handle.
func NewFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Add implements docstore.Writer
func (r *SQLiteRepository) Add(ctx context.Context, collection string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return "", fmt.Errorf("document for %s is not a JSON object", collection)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)`,
		collection, id, string(body))
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	slog.DebugContext(ctx, "Document saved to SQLite",
		"collection", collection,
		"id", id,
		"size", len(body))

	return id, nil
}

// Get implements docstore.Reader
func (r *SQLiteRepository) Get(ctx context.Context, collection, id string) (docstore.Snapshot, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Snapshot{}, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return docstore.Snapshot{ID: id, Data: json.RawMessage(body)}, nil
}

// Query implements docstore.Reader
func (r *SQLiteRepository) Query(ctx context.Context, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := docstore.ValidateQuery(q); err != nil {
		return nil, err
	}
	stmt, args := buildQuery(q)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var out []docstore.Snapshot
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.Collection, err)
		}
		out = append(out, docstore.Snapshot{ID: id, Data: json.RawMessage(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.Collection, err)
	}
	return out, nil
}

// buildQuery renders q as SQL. Field names only ever travel as bound JSON paths.
func buildQuery(q docstore.Query) (string, []any) {
	var sb strings.Builder
	args := []any{q.Collection}
	sb.WriteString(`SELECT id, body FROM documents WHERE collection = ?`)

	for _, f := range q.Where {
		sb.WriteString(` AND json_extract(body, ?) = ?`)
		args = append(args, "$."+f.Field, f.Value)
	}

	sb.WriteString(` ORDER BY `)
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Direction == docstore.Desc {
			dir = "DESC"
		}
		// Timestamps order by (seconds, nanos); plain values by themselves.
		fmt.Fprintf(&sb, `json_extract(body, ?) %[1]s, json_extract(body, ?) %[1]s, json_extract(body, ?) %[1]s, `, dir)
		args = append(args,
			"$."+q.OrderBy+".seconds",
			"$."+q.OrderBy+".nanos",
			"$."+q.OrderBy)
	}
	sb.WriteString(`seq ASC`)

	return sb.String(), args
}

// Update implements docstore.Writer
func (r *SQLiteRepository) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(fields)*2+2)
	sb.WriteString(`UPDATE documents SET body = json_set(body`)
	for _, name := range sortedKeys(fields) {
		if err := docstore.ValidateField(name); err != nil {
			return err
		}
		raw, err := json.Marshal(fields[name])
		if err != nil {
			return fmt.Errorf("encode field %s: %w", name, err)
		}
		sb.WriteString(`, ?, json(?)`)
		args = append(args, "$."+name, string(raw))
	}
	sb.WriteString(`), updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`)
	args = append(args, collection, id)

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}

	slog.DebugContext(ctx, "Document patched in SQLite",
		"collection", collection,
		"id", id,
		"fields", len(fields))

	return nil
}

// Count returns the number of documents in a collection.
func (r *SQLiteRepository) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
