// Package postgres implements the document store on a single JSONB table.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/greenpoints/internal/docstore"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres-backed document persistence.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the documents table and its indexes when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// InsertOne implements docstore.Store.
func (s *Store) InsertOne(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	body := make(docstore.Document, len(doc))
	for k, v := range doc {
		if k == docstore.IDField {
			continue
		}
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	const stmt = `INSERT INTO documents (id, collection, body) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, stmt, id, collection, raw); err != nil {
		return "", err
	}
	return id, nil
}

// FindMany implements docstore.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter docstore.Filter, limit int) ([]docstore.Document, error) {
	containment, err := encodeFilter(filter)
	if err != nil {
		return nil, err
	}

	args := []interface{}{collection, containment}
	query := `SELECT id::text, body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY seq`
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]docstore.Document, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc := make(docstore.Document)
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", id, err)
		}
		doc[docstore.IDField] = id
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregate implements docstore.Store for pipelines shaped [Match] Group [Sort] [Limit].
func (s *Store) Aggregate(ctx context.Context, collection string, pipeline docstore.Pipeline) ([]docstore.Document, error) {
	plan, err := planAggregate(collection, pipeline)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, plan.query, plan.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]docstore.Document, 0)
	for rows.Next() {
		var key *string
		values := make([]int64, len(plan.columns))
		dest := make([]interface{}, 0, len(values)+1)
		dest = append(dest, &key)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		row := docstore.Document{docstore.IDField: nil}
		if key != nil {
			row[docstore.IDField] = *key
		}
		for i, col := range plan.columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping implements docstore.Inspector.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Collections implements docstore.Inspector.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func encodeFilter(filter docstore.Filter) ([]byte, error) {
	if len(filter) == 0 {
		return []byte(`{}`), nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return raw, nil
}
