package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/store"
	"github.com/docchat/cli/internal/store/memory"
)

func putSlice(t *testing.T, st store.Store, doc string, index, total int, text string) {
	t.Helper()
	meta := store.Metadata{store.KeyFullTextChunk: text}
	meta.SetInt(store.KeyChunkIndex, index)
	meta.SetInt(store.KeyTotalChunks, total)
	err := st.Upsert(context.Background(), store.FullNamespace(doc),
		store.FullChunkID(doc, index), store.ProbeVector(), meta)
	require.NoError(t, err)
}

func TestReconstructOrdersByIndex(t *testing.T) {
	st := memory.New()
	// supplied out of order on purpose
	putSlice(t, st, "manual.pdf", 2, 3, "gamma")
	putSlice(t, st, "manual.pdf", 0, 3, "alpha")
	putSlice(t, st, "manual.pdf", 1, 3, "beta")

	text, err := NewReconstructor(st).Reconstruct(context.Background(), "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "alphabetagamma", text)
}

func TestReconstructFailsClosedOnMissingChunk(t *testing.T) {
	st := memory.New()
	putSlice(t, st, "manual.pdf", 0, 3, "alpha")
	putSlice(t, st, "manual.pdf", 2, 3, "gamma")

	text, err := NewReconstructor(st).Reconstruct(context.Background(), "manual.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Empty(t, text, "partial concatenation must never be returned")
}

func TestReconstructNotStored(t *testing.T) {
	st := memory.New()
	text, err := NewReconstructor(st).Reconstruct(context.Background(), "missing.pdf")
	require.NoError(t, err, "an absent document is not an integrity error")
	assert.Empty(t, text)
}

func TestReconstructMissingTotal(t *testing.T) {
	st := memory.New()
	meta := store.Metadata{store.KeyFullTextChunk: "alpha"}
	meta.SetInt(store.KeyChunkIndex, 0)
	require.NoError(t, st.Upsert(context.Background(), store.FullNamespace("x"),
		store.FullChunkID("x", 0), store.ProbeVector(), meta))

	_, err := NewReconstructor(st).Reconstruct(context.Background(), "x")
	assert.ErrorIs(t, err, ErrIncomplete)
}
