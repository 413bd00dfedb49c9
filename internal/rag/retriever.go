// Package rag implements context retrieval over a document's chunk namespace
// and full-document reconstruction from its raw-text namespace.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchat/cli/internal/store"
)

// DefaultTopK is how many context chunks a query retrieves.
const DefaultTopK = 3

// ScoredChunk is one retrieved context chunk with its relevance score.
type ScoredChunk struct {
	Text  string
	Score float32
}

// Retriever finds the chunks most relevant to a query embedding.
type Retriever struct {
	store store.Store
	topK  int
}

// NewRetriever creates a retriever returning at most topK chunks per query.
func NewRetriever(st store.Store, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{store: st, topK: topK}
}

// Retrieve returns ranked context chunks for the query vector, preserving the
// store's descending-relevance order. Records without chunk text (malformed,
// legacy, or empty-document markers) are skipped rather than failing the
// query. An empty namespace yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, queryVector []float32, namespace string) ([]ScoredChunk, error) {
	matches, err := r.store.Query(ctx, namespace, queryVector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query namespace %s: %w", namespace, err)
	}

	chunks := make([]ScoredChunk, 0, len(matches))
	for _, m := range matches {
		text, ok := m.Metadata[store.KeyChunkText]
		if !ok {
			continue
		}
		chunks = append(chunks, ScoredChunk{Text: text, Score: m.Score})
	}
	return chunks, nil
}

// JoinContext assembles the context block handed to the completion step:
// chunk texts joined by newlines, in retrieved order. No re-ranking, no
// deduplication.
func JoinContext(chunks []ScoredChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n")
}
