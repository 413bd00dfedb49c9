package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/store"
)

func vec(scale float32) []float32 {
	v := make([]float32, store.Dimension)
	v[0] = scale
	return v
}

func TestUpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Upsert(ctx, "ns", "id1", vec(1), store.Metadata{"k": "old"}))
	require.NoError(t, s.Upsert(ctx, "ns", "id1", vec(2), store.Metadata{"k": "new"}))

	matches, err := s.Scan(ctx, "ns")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Metadata["k"])
}

func TestQueryRanksAndLimits(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, scale := range []float32{3, 1, 5, 2, 4} {
		require.NoError(t, s.Upsert(ctx, "ns", store.ChunkID("d", i), vec(scale), nil))
	}

	matches, err := s.Query(ctx, "ns", vec(1), 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, float32(5), matches[0].Score)
	assert.Equal(t, float32(4), matches[1].Score)
	assert.Equal(t, float32(3), matches[2].Score)
}

func TestQueryEmptyNamespace(t *testing.T) {
	s := New()
	matches, err := s.Query(context.Background(), "nowhere", vec(1), 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	// identical content in both namespaces
	require.NoError(t, s.Upsert(ctx, "a_namespace", "a_chunk_0", vec(1), store.Metadata{"doc": "a"}))
	require.NoError(t, s.Upsert(ctx, "b_namespace", "b_chunk_0", vec(1), store.Metadata{"doc": "b"}))

	require.NoError(t, s.DeleteNamespace(ctx, "a_namespace"))

	matches, err := s.Scan(ctx, "b_namespace")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Metadata["doc"])

	gone, err := s.Query(ctx, "a_namespace", vec(1), 10)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.DeleteNamespace(ctx, "never_existed"))
	require.NoError(t, s.Upsert(ctx, "ns", "id", vec(1), nil))
	require.NoError(t, s.DeleteNamespace(ctx, "ns"))
	require.NoError(t, s.DeleteNamespace(ctx, "ns"))
}

func TestDescribeNamespaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Upsert(ctx, "x_namespace", "x_chunk_0", vec(1), nil))
	require.NoError(t, s.Upsert(ctx, "x_namespace", "x_chunk_1", vec(1), nil))
	require.NoError(t, s.Upsert(ctx, "x_full_namespace", "x_full_0", vec(1), nil))

	namespaces, err := s.DescribeNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x_namespace": 2, "x_full_namespace": 1}, namespaces)
}

func TestUpsertCopiesInputs(t *testing.T) {
	ctx := context.Background()
	s := New()
	v := vec(1)
	meta := store.Metadata{"k": "v"}
	require.NoError(t, s.Upsert(ctx, "ns", "id", v, meta))

	// mutating the caller's values must not reach the stored record
	v[0] = 99
	meta["k"] = "mutated"

	matches, err := s.Query(ctx, "ns", vec(1), 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, float32(1), matches[0].Score)
	assert.Equal(t, "v", matches[0].Metadata["k"])
}
