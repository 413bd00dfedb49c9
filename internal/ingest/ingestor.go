// Package ingest turns extracted document text into vector store records:
// token-bounded chunks with embeddings for retrieval, and size-bounded raw
// slices for full-document reconstruction.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/docchat/cli/internal/chunker"
	"github.com/docchat/cli/internal/llm"
	"github.com/docchat/cli/internal/store"
)

// Options control chunking bounds and whether the full-text path is stored.
type Options struct {
	MaxTokens int
	MaxChars  int
	// StoreFullText enables the raw-text namespace that NO_RAG answering
	// reconstructs from. Disabling it is a valid RAG-only configuration.
	StoreFullText bool
}

// Result reports what one ingestion stored.
type Result struct {
	Document   string
	NumChunks  int
	FullChunks int
}

// Ingestor writes documents into the vector store.
type Ingestor struct {
	store    store.Store
	embedder llm.Embedder
	enc      chunker.Encoding
	opts     Options
}

// New creates an ingestor. Zero-valued bounds fall back to the chunker
// defaults.
func New(st store.Store, embedder llm.Embedder, enc chunker.Encoding, opts Options) *Ingestor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = chunker.DefaultMaxTokens
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = chunker.DefaultMaxChars
	}
	return &Ingestor{store: st, embedder: embedder, enc: enc, opts: opts}
}

// Ingest stores the document text under name. Re-ingesting the same name
// overwrites record by record, since chunk ids are deterministic. On any
// embedding or store failure the error is returned and already-written
// records are left in place; a later re-ingest repairs them.
//
// Empty text is a valid zero-page document: a single marker record without
// chunk text is stored so the registry can list it, and retrieval's metadata
// filter keeps the marker out of every prompt.
func (ing *Ingestor) Ingest(ctx context.Context, name, text string) (*Result, error) {
	chunks := chunker.ByTokens(ing.enc, text, ing.opts.MaxTokens)

	docMeta := store.Metadata{
		store.KeyDocumentID: name,
		store.KeyTitle:      name,
		store.KeyUploadDate: time.Now().Format("2006-01-02 15:04:05"),
		store.KeyDocType:    DocType(name),
	}
	docMeta.SetInt(store.KeyNumPages, len(chunks))

	ragNS := store.RAGNamespace(name)
	if len(chunks) == 0 {
		if err := ing.store.Upsert(ctx, ragNS, store.ChunkID(name, 0), store.ProbeVector(), docMeta); err != nil {
			return nil, fmt.Errorf("store empty document %q: %w", name, err)
		}
		return &Result{Document: name}, nil
	}

	embeddings := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vec, err := ing.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %q: %w", i, name, err)
		}
		embeddings[i] = vec

		meta := docMeta.Clone()
		meta[store.KeyChunkText] = chunk
		meta.SetInt(store.KeyChunkIndex, i)
		if err := ing.store.Upsert(ctx, ragNS, store.ChunkID(name, i), vec, meta); err != nil {
			return nil, fmt.Errorf("store chunk %d of %q: %w", i, name, err)
		}
	}

	result := &Result{Document: name, NumChunks: len(chunks)}
	if !ing.opts.StoreFullText {
		return result, nil
	}

	// Full-text slices are not independently searchable; they reuse the first
	// chunk's embedding as a placeholder and are only ever read back by a
	// namespace scan.
	fullNS := store.FullNamespace(name)
	slices := chunker.BySize(text, ing.opts.MaxChars)
	for i, slice := range slices {
		meta := docMeta.Clone()
		meta[store.KeyFullTextChunk] = slice
		meta.SetInt(store.KeyChunkIndex, i)
		meta.SetInt(store.KeyTotalChunks, len(slices))
		if err := ing.store.Upsert(ctx, fullNS, store.FullChunkID(name, i), embeddings[0], meta); err != nil {
			return nil, fmt.Errorf("store full-text chunk %d of %q: %w", i, name, err)
		}
	}
	result.FullChunks = len(slices)
	return result, nil
}

// Delete removes every record of the document across both its namespaces.
// Deleting a document that was never ingested succeeds silently.
func (ing *Ingestor) Delete(ctx context.Context, name string) error {
	if err := ing.store.DeleteNamespace(ctx, store.RAGNamespace(name)); err != nil {
		return fmt.Errorf("delete namespace of %q: %w", name, err)
	}
	if err := ing.store.DeleteNamespace(ctx, store.FullNamespace(name)); err != nil {
		return fmt.Errorf("delete full-text namespace of %q: %w", name, err)
	}
	return nil
}
