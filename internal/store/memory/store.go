// Package memory provides a brute-force in-process vector store. It backs
// tests and ephemeral sessions where nothing needs to survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docchat/cli/internal/store"
)

type record struct {
	id     string
	vector []float32
	meta   store.Metadata
}

// Store keeps all records in memory, partitioned by namespace.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{namespaces: make(map[string]map[string]record)}
}

// Upsert inserts or overwrites a record within its namespace.
func (s *Store) Upsert(ctx context.Context, namespace, id string, vector []float32, meta store.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]record)
		s.namespaces[namespace] = ns
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	ns[id] = record{id: id, vector: vec, meta: meta.Clone()}
	return nil
}

// Query scores every record in the namespace by inner product and returns the
// topK best, descending. An unknown namespace yields an empty result.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]store.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	if len(ns) == 0 || topK <= 0 {
		return nil, nil
	}

	matches := make([]store.Match, 0, len(ns))
	for _, rec := range ns {
		matches = append(matches, store.Match{
			ID:       rec.id,
			Score:    dot(vector, rec.vector),
			Metadata: rec.meta.Clone(),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Scan lists every record in the namespace.
func (s *Store) Scan(ctx context.Context, namespace string) ([]store.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	if len(ns) == 0 {
		return nil, nil
	}
	matches := make([]store.Match, 0, len(ns))
	for _, rec := range ns {
		matches = append(matches, store.Match{ID: rec.id, Metadata: rec.meta.Clone()})
	}
	return matches, nil
}

// DeleteNamespace drops the namespace and everything in it. Deleting a
// namespace that never existed succeeds silently.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

// DescribeNamespaces returns the record count per existing namespace.
func (s *Store) DescribeNamespaces(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.namespaces))
	for name, ns := range s.namespaces {
		out[name] = len(ns)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
