// Package store defines the namespace-scoped vector index contract shared by
// every backend. A namespace partitions all operations for one document in one
// mode; records in one namespace are never visible from another.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Dimension is the fixed width of every stored embedding vector.
const Dimension = 1536

// Metadata is the flat string mapping attached to each vector record.
// Numeric fields travel as strings so all backends can carry them unchanged.
type Metadata map[string]string

// Metadata keys shared across the ingestion and retrieval paths. Document-level
// fields are duplicated onto every chunk record so a single probe query can
// recover them without a separate metadata store.
const (
	KeyDocumentID    = "document_id"
	KeyTitle         = "title"
	KeyUploadDate    = "upload_date"
	KeyNumPages      = "num_pages"
	KeyDocType       = "type"
	KeyChunkText     = "chunk_text"
	KeyChunkIndex    = "chunk_index"
	KeyFullTextChunk = "full_text_chunk"
	KeyTotalChunks   = "total_chunks"
)

// Int parses an integer-valued metadata field.
func (m Metadata) Int(key string) (int, bool) {
	s, ok := m[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetInt stores an integer under key.
func (m Metadata) SetInt(key string, n int) {
	m[key] = strconv.Itoa(n)
}

// Clone returns a copy safe to extend with per-chunk fields.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Match is one query hit with its provider-defined relevance score.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Store is a namespace-scoped nearest-neighbor index over
// (id, vector, metadata) records.
//
// Querying or deleting a namespace that holds no vectors is an empty success,
// not an error; provider failures are always surfaced as errors.
type Store interface {
	// Upsert inserts or overwrites the record keyed by id within namespace.
	Upsert(ctx context.Context, namespace, id string, vector []float32, meta Metadata) error

	// Query returns up to topK matches in descending relevance order.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)

	// Scan lists every record in the namespace, in no guaranteed order.
	Scan(ctx context.Context, namespace string) ([]Match, error)

	// DeleteNamespace removes all records in the namespace. Idempotent.
	DeleteNamespace(ctx context.Context, namespace string) error

	// DescribeNamespaces returns existing namespace names with record counts.
	DescribeNamespaces(ctx context.Context) (map[string]int, error)

	Close() error
}

const (
	ragSuffix  = "_namespace"
	fullSuffix = "_full_namespace"
)

// RAGNamespace is where a document's searchable chunks live.
func RAGNamespace(doc string) string { return doc + ragSuffix }

// FullNamespace is where a document's raw full-text slices live.
func FullNamespace(doc string) string { return doc + fullSuffix }

// IsFullNamespace reports whether ns holds full-text slices rather than
// searchable chunks.
func IsFullNamespace(ns string) bool { return strings.HasSuffix(ns, fullSuffix) }

// DocumentID recovers the document name from its RAG namespace.
func DocumentID(ragNamespace string) string { return strings.TrimSuffix(ragNamespace, ragSuffix) }

// ChunkID builds the deterministic record id for a searchable chunk, so
// re-ingesting a document overwrites in place.
func ChunkID(doc string, index int) string { return fmt.Sprintf("%s_chunk_%d", doc, index) }

// FullChunkID builds the deterministic record id for a full-text slice.
func FullChunkID(doc string, index int) string { return fmt.Sprintf("%s_full_%d", doc, index) }

// ProbeVector returns the fixed vector used for enumeration queries where
// similarity is meaningless (metadata probes, full-text scans). A unit basis
// vector keeps cosine backends well-defined, unlike an all-zero vector.
func ProbeVector() []float32 {
	v := make([]float32, Dimension)
	v[0] = 1
	return v
}
