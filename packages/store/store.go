// Package store persists JSON documents in SQLite so that test runs can
// assert on what an API wrote, through a find-one boundary instead of
// raw SQL in test cases.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// Store is a document store backed by a single SQLite table. Documents
// are grouped into named collections and matched on top-level fields.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Open opens (creating if necessary) a store at the given SQLite path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			doc        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_collection
			ON documents (collection);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return &Store{
		db:           db,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert stores one document in a collection.
func (s *Store) Insert(ctx context.Context, collection string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc) VALUES (?, ?)`,
		collection, string(data))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// FindOne returns the most recently inserted document in the collection
// whose top-level fields match every entry of filter, or nil when no
// document matches. An empty filter matches any document.
func (s *Store) FindOne(ctx context.Context, collection string, filter map[string]any) (map[string]any, error) {
	query, args, err := buildFindQuery(collection, filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Count returns how many documents in the collection match the filter.
func (s *Store) Count(ctx context.Context, collection string, filter map[string]any) (int, error) {
	query, args, err := buildFindQuery(collection, filter)
	if err != nil {
		return 0, err
	}
	query = strings.Replace(query, "SELECT doc FROM", "SELECT COUNT(*) FROM", 1)
	query = strings.TrimSuffix(query, " ORDER BY id DESC LIMIT 1")

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	return n, nil
}

// buildFindQuery assembles a json_extract match over the filter's
// top-level fields. Filter keys are sorted so the generated SQL is
// stable for a given filter.
func buildFindQuery(collection string, filter map[string]any) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT doc FROM documents WHERE collection = ?`)
	args := []any{collection}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.ContainsAny(key, `'"$[]`) {
			return "", nil, fmt.Errorf("invalid filter field: %q", key)
		}
		value := filter[key]
		path := "'$." + key + "'"

		switch v := value.(type) {
		case nil:
			sb.WriteString(` AND json_extract(doc, ` + path + `) IS NULL`)
		case bool:
			// json_extract surfaces JSON booleans as 0/1.
			sb.WriteString(` AND json_extract(doc, ` + path + `) = ?`)
			if v {
				args = append(args, 1)
			} else {
				args = append(args, 0)
			}
		default:
			sb.WriteString(` AND json_extract(doc, ` + path + `) = ?`)
			args = append(args, v)
		}
	}

	sb.WriteString(` ORDER BY id DESC LIMIT 1`)
	return sb.String(), args, nil
}
