// Package pgvector backs the vector store contract with PostgreSQL and the
// pgvector extension. All namespaces share a single table with a namespace
// column; inner-product ordering matches the index's dotproduct metric.
package pgvector

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/docchat/cli/internal/store"
)

// Store wraps a pgx connection pool over the records table.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and ensures the schema exists. Schema creation is
// check-then-create and idempotent, so concurrent starters only duplicate
// effort benignly.
func New(ctx context.Context, connString string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			namespace text NOT NULL,
			id text NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}',
			PRIMARY KEY (namespace, id)
		)`, store.Dimension),
		`CREATE INDEX IF NOT EXISTS records_namespace_idx ON records (namespace)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or overwrites the record keyed by (namespace, id).
func (s *Store) Upsert(ctx context.Context, namespace, id string, vector []float32, meta store.Metadata) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (namespace, id, embedding, metadata)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (namespace, id)
		 DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`,
		namespace, id, pgv.NewVector(vector), map[string]string(meta),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s into %s: %w", id, namespace, err)
	}
	return nil
}

// Query returns up to topK matches ordered by descending inner product.
// pgvector's <#> operator yields the negated inner product, so the score is
// its negation.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]store.Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata, -(embedding <#> $2) AS score
		 FROM records
		 WHERE namespace = $1
		 ORDER BY embedding <#> $2
		 LIMIT $3`,
		namespace, pgv.NewVector(vector), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", namespace, err)
	}
	defer rows.Close()

	var matches []store.Match
	for rows.Next() {
		var (
			id    string
			meta  map[string]string
			score float64
		)
		if err := rows.Scan(&id, &meta, &score); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, store.Match{ID: id, Score: float32(score), Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", namespace, err)
	}
	return matches, nil
}

// Scan lists every record in the namespace.
func (s *Store) Scan(ctx context.Context, namespace string) ([]store.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata FROM records WHERE namespace = $1`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", namespace, err)
	}
	defer rows.Close()

	var matches []store.Match
	for rows.Next() {
		var (
			id   string
			meta map[string]string
		)
		if err := rows.Scan(&id, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		matches = append(matches, store.Match{ID: id, Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", namespace, err)
	}
	return matches, nil
}

// DeleteNamespace removes every record in the namespace. Deleting an empty or
// unknown namespace succeeds silently.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM records WHERE namespace = $1`, namespace); err != nil {
		return fmt.Errorf("failed to delete namespace %s: %w", namespace, err)
	}
	return nil
}

// DescribeNamespaces returns existing namespace names with record counts.
func (s *Store) DescribeNamespaces(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT namespace, count(*) FROM records GROUP BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to describe namespaces: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan namespace row: %w", err)
		}
		out[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to describe namespaces: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
