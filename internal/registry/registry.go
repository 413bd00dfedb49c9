// Package registry derives the list of available documents from the vector
// store's namespaces. Document-level metadata is piggybacked on every chunk
// record, so one probe query per RAG namespace recovers it without a second
// metadata store.
package registry

import (
	"context"
	"fmt"

	"github.com/docchat/cli/internal/store"
)

// Document is what the listing surfaces for each ingested document.
type Document struct {
	ID         string
	Title      string
	UploadDate string
	NumPages   int
	Namespace  string
}

// Registry enumerates documents from vector store namespaces.
type Registry struct {
	store store.Store
}

// New creates a registry over the given store.
func New(st store.Store) *Registry {
	return &Registry{store: st}
}

// List returns every available document keyed by id. Full-text namespaces are
// filtered out by naming convention. No documents is an empty mapping, not an
// error; provider failures during enumeration are.
func (r *Registry) List(ctx context.Context) (map[string]Document, error) {
	namespaces, err := r.store.DescribeNamespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe namespaces: %w", err)
	}

	docs := make(map[string]Document)
	for ns, count := range namespaces {
		if store.IsFullNamespace(ns) || count == 0 {
			continue
		}

		// One representative record carries the document-level metadata.
		matches, err := r.store.Query(ctx, ns, store.ProbeVector(), 1)
		if err != nil {
			return nil, fmt.Errorf("probe namespace %s: %w", ns, err)
		}
		if len(matches) == 0 {
			continue
		}

		id := store.DocumentID(ns)
		meta := matches[0].Metadata
		doc := Document{
			ID:         id,
			Title:      meta[store.KeyTitle],
			UploadDate: meta[store.KeyUploadDate],
			Namespace:  ns,
		}
		if doc.Title == "" {
			doc.Title = id
		}
		if pages, ok := meta.Int(store.KeyNumPages); ok {
			doc.NumPages = pages
		}
		docs[id] = doc
	}
	return docs, nil
}
