package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/store"
	"github.com/docchat/cli/internal/store/memory"
)

func putChunk(t *testing.T, st store.Store, doc string, index int, text string, vector []float32) {
	t.Helper()
	meta := store.Metadata{store.KeyChunkText: text}
	meta.SetInt(store.KeyChunkIndex, index)
	err := st.Upsert(context.Background(), store.RAGNamespace(doc),
		store.ChunkID(doc, index), vector, meta)
	require.NoError(t, err)
}

func axisVector(axis int, scale float32) []float32 {
	v := make([]float32, store.Dimension)
	v[axis] = scale
	return v
}

func TestRetrieveTopKDescending(t *testing.T) {
	st := memory.New()
	// five chunks with increasing relevance along axis 0
	for i := 0; i < 5; i++ {
		putChunk(t, st, "doc", i, string(rune('a'+i)), axisVector(0, float32(i+1)))
	}

	chunks, err := NewRetriever(st, 3).Retrieve(context.Background(), axisVector(0, 1), store.RAGNamespace("doc"))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "e", chunks[0].Text)
	assert.Equal(t, "d", chunks[1].Text)
	assert.Equal(t, "c", chunks[2].Text)
	assert.True(t, chunks[0].Score >= chunks[1].Score && chunks[1].Score >= chunks[2].Score)
}

func TestRetrieveSkipsRecordsWithoutChunkText(t *testing.T) {
	st := memory.New()
	putChunk(t, st, "doc", 0, "real chunk", axisVector(0, 1))

	// marker record for an empty document has no chunk_text
	marker := store.Metadata{store.KeyDocumentID: "doc"}
	require.NoError(t, st.Upsert(context.Background(), store.RAGNamespace("doc"),
		store.ChunkID("doc", 99), axisVector(0, 100), marker))

	chunks, err := NewRetriever(st, 5).Retrieve(context.Background(), axisVector(0, 1), store.RAGNamespace("doc"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "real chunk", chunks[0].Text)
}

func TestRetrieveEmptyNamespace(t *testing.T) {
	st := memory.New()
	chunks, err := NewRetriever(st, 3).Retrieve(context.Background(), axisVector(0, 1), store.RAGNamespace("nothing"))
	require.NoError(t, err, "no matches is a legitimate empty success")
	assert.Empty(t, chunks)
}

func TestJoinContext(t *testing.T) {
	joined := JoinContext([]ScoredChunk{{Text: "first"}, {Text: "second"}, {Text: "third"}})
	assert.Equal(t, "first\nsecond\nthird", joined)
	assert.Equal(t, "", JoinContext(nil))
}
