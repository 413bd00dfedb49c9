package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/store"
	"github.com/docchat/cli/internal/store/memory"
)

// byteEncoding treats every byte as a token; lossless for ASCII test input.
type byteEncoding struct{}

func (byteEncoding) Encode(text string) []int {
	tokens := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		tokens[i] = int(text[i])
	}
	return tokens
}

func (byteEncoding) Decode(tokens []int) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte(byte(t))
	}
	return b.String()
}

// fakeEmbedder returns a distinct deterministic vector per call.
type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	v := make([]float32, store.Dimension)
	v[f.calls%store.Dimension] = 1
	f.calls++
	return v, nil
}

func newTestIngestor(st store.Store, emb *fakeEmbedder, opts Options) *Ingestor {
	return New(st, emb, byteEncoding{}, opts)
}

func TestIngestSingleChunkDocument(t *testing.T) {
	st := memory.New()
	emb := &fakeEmbedder{}
	ing := newTestIngestor(st, emb, Options{MaxTokens: 1000, StoreFullText: true})

	res, err := ing.Ingest(context.Background(), "manual.pdf", "A. B. C.")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumChunks)
	assert.Equal(t, 1, emb.calls)

	namespaces, err := st.DescribeNamespaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, namespaces[store.RAGNamespace("manual.pdf")])

	matches, err := st.Scan(context.Background(), store.RAGNamespace("manual.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	meta := matches[0].Metadata
	assert.Equal(t, "A. B. C.", meta[store.KeyChunkText])
	assert.Equal(t, "manual.pdf", meta[store.KeyDocumentID])
	pages, ok := meta.Int(store.KeyNumPages)
	require.True(t, ok)
	assert.Equal(t, 1, pages)
}

func TestIngestEmptyDocument(t *testing.T) {
	st := memory.New()
	emb := &fakeEmbedder{}
	ing := newTestIngestor(st, emb, Options{StoreFullText: true})

	res, err := ing.Ingest(context.Background(), "blank.pdf", "")
	require.NoError(t, err)
	assert.Zero(t, res.NumChunks)
	assert.Zero(t, emb.calls, "embedding must never run for an empty document")

	// listed with zero pages via its marker record
	matches, err := st.Scan(context.Background(), store.RAGNamespace("blank.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	pages, ok := matches[0].Metadata.Int(store.KeyNumPages)
	require.True(t, ok)
	assert.Zero(t, pages)
	_, hasText := matches[0].Metadata[store.KeyChunkText]
	assert.False(t, hasText)

	// no full-text records for an empty document
	full, err := st.Scan(context.Background(), store.FullNamespace("blank.pdf"))
	require.NoError(t, err)
	assert.Empty(t, full)
}

func TestIngestFullTextSlices(t *testing.T) {
	st := memory.New()
	ing := newTestIngestor(st, &fakeEmbedder{}, Options{MaxTokens: 4, MaxChars: 10, StoreFullText: true})

	text := strings.Repeat("abcde", 5) // 25 chars -> 3 slices of <= 10
	res, err := ing.Ingest(context.Background(), "doc.pdf", text)
	require.NoError(t, err)
	assert.Equal(t, 3, res.FullChunks)

	matches, err := st.Scan(context.Background(), store.FullNamespace("doc.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for _, m := range matches {
		total, ok := m.Metadata.Int(store.KeyTotalChunks)
		require.True(t, ok)
		assert.Equal(t, 3, total, "total is denormalized onto every slice")
	}

	// all slices share the placeholder embedding, so any query scores them equally
	hits, err := st.Query(context.Background(), store.FullNamespace("doc.pdf"), store.ProbeVector(), 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, hits[1].Score, hits[2].Score)
}

func TestIngestRAGOnlyConfiguration(t *testing.T) {
	st := memory.New()
	ing := newTestIngestor(st, &fakeEmbedder{}, Options{StoreFullText: false})

	_, err := ing.Ingest(context.Background(), "doc.pdf", "some document text")
	require.NoError(t, err)

	full, err := st.Scan(context.Background(), store.FullNamespace("doc.pdf"))
	require.NoError(t, err)
	assert.Empty(t, full)
}

func TestIngestEmbeddingFailureAborts(t *testing.T) {
	st := memory.New()
	ing := newTestIngestor(st, &fakeEmbedder{fail: true}, Options{StoreFullText: true})

	_, err := ing.Ingest(context.Background(), "doc.pdf", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed chunk")
}

func TestIngestNamespaceIsolationAndDelete(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ing := newTestIngestor(st, &fakeEmbedder{}, Options{MaxTokens: 4, StoreFullText: true})

	_, err := ing.Ingest(ctx, "a.pdf", "shared content here")
	require.NoError(t, err)
	_, err = ing.Ingest(ctx, "b.pdf", "shared content here")
	require.NoError(t, err)

	before, err := st.Scan(ctx, store.RAGNamespace("b.pdf"))
	require.NoError(t, err)

	require.NoError(t, ing.Delete(ctx, "a.pdf"))

	after, err := st.Scan(ctx, store.RAGNamespace("b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "deleting a must not touch b")

	gone, err := st.Scan(ctx, store.RAGNamespace("a.pdf"))
	require.NoError(t, err)
	assert.Empty(t, gone)

	// idempotent: deleting again, and deleting the never-ingested, both succeed
	require.NoError(t, ing.Delete(ctx, "a.pdf"))
	require.NoError(t, ing.Delete(ctx, "never-uploaded.pdf"))
}

func TestReingestOverwrites(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ing := newTestIngestor(st, &fakeEmbedder{}, Options{MaxTokens: 1000, StoreFullText: true})

	_, err := ing.Ingest(ctx, "doc.pdf", "first version")
	require.NoError(t, err)
	_, err = ing.Ingest(ctx, "doc.pdf", "second version")
	require.NoError(t, err)

	matches, err := st.Scan(ctx, store.RAGNamespace("doc.pdf"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "deterministic ids overwrite in place")
	assert.Equal(t, "second version", matches[0].Metadata[store.KeyChunkText])
}
