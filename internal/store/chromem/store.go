// Package chromem adapts the embedded chromem-go database to the vector store
// contract. Each namespace maps to one chromem collection, which gives the
// backend native namespace listing without any external service.
package chromem

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/docchat/cli/internal/store"
)

// Store is a chromem-go backed vector store, persistent when given a path.
type Store struct {
	db *chromem.DB
}

// New opens (or creates) a persistent store at path. An empty path yields a
// purely in-memory database.
func New(path string) (*Store, error) {
	if path == "" {
		return &Store{db: chromem.NewDB()}, nil
	}
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return &Store{db: db}, nil
}

// Upsert inserts or overwrites a record within its namespace collection.
func (s *Store) Upsert(ctx context.Context, namespace, id string, vector []float32, meta store.Metadata) error {
	col, err := s.db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return fmt.Errorf("get collection %s: %w", namespace, err)
	}

	// chromem stores document content separately from metadata; mirror the
	// chunk text there so the records stay inspectable with chromem tooling.
	content := meta[store.KeyChunkText]
	if content == "" {
		content = meta[store.KeyFullTextChunk]
	}
	if content == "" {
		content = id
	}

	err = col.Add(ctx,
		[]string{id},
		[][]float32{vector},
		[]map[string]string{meta.Clone()},
		[]string{content},
	)
	if err != nil {
		return fmt.Errorf("upsert %s into %s: %w", id, namespace, err)
	}
	return nil
}

// Query returns up to topK matches, descending by cosine similarity.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]store.Match, error) {
	col := s.db.GetCollection(namespace, nil)
	if col == nil {
		return nil, nil
	}
	count := col.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", namespace, err)
	}

	matches := make([]store.Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, store.Match{
			ID:       res.ID,
			Score:    res.Similarity,
			Metadata: store.Metadata(res.Metadata).Clone(),
		})
	}
	return matches, nil
}

// Scan lists every record in the namespace. chromem has no direct listing
// primitive, so this queries with the fixed probe vector and the collection's
// own count as the result ceiling.
func (s *Store) Scan(ctx context.Context, namespace string) ([]store.Match, error) {
	col := s.db.GetCollection(namespace, nil)
	if col == nil {
		return nil, nil
	}
	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, store.ProbeVector(), count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", namespace, err)
	}
	matches := make([]store.Match, 0, len(results))
	for _, res := range results {
		matches = append(matches, store.Match{
			ID:       res.ID,
			Metadata: store.Metadata(res.Metadata).Clone(),
		})
	}
	return matches, nil
}

// DeleteNamespace drops the namespace collection. Deleting a namespace that
// never existed succeeds silently.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	if s.db.GetCollection(namespace, nil) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(namespace); err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	return nil
}

// DescribeNamespaces returns every collection name with its record count.
func (s *Store) DescribeNamespaces(ctx context.Context) (map[string]int, error) {
	cols := s.db.ListCollections()
	out := make(map[string]int, len(cols))
	for name, col := range cols {
		out[name] = col.Count()
	}
	return out, nil
}

// Close is a no-op; chromem persists on every write.
func (s *Store) Close() error { return nil }
