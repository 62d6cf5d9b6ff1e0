package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/story-validator/internal/types"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()

	err := store.IndexDocument(context.Background(), "CR-001", []types.CRChunk{
		{ID: "CR-001#s1", DocID: "CR-001", DocVersion: 2, SectionID: "s1", Source: types.SourceCR, Content: "payment retry flow"},
		{ID: "CR-001#s2", DocID: "CR-001", DocVersion: 2, SectionID: "s2", Source: types.SourceCR, Content: "refund handling"},
	}, [][]float32{{1, 0, 0}, {0, 1, 0}})
	require.NoError(t, err)

	err = store.IndexDocument(context.Background(), "CR-002", []types.CRChunk{
		{ID: "CR-002#s1", DocID: "CR-002", DocVersion: 1, SectionID: "s1", Source: types.SourceCR, Content: "payment retry policy"},
	}, [][]float32{{1, 0, 0}})
	require.NoError(t, err)

	return store
}

func TestMemoryStore_SearchOrdering(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.Search(context.Background(), []float32{1, 0, 0}, 10,
		Filter{AllowedDocIDs: []string{"CR-001", "CR-002"}})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// Two chunks tie at similarity 1.0; ties break by (doc id, section id)
	assert.Equal(t, "CR-001#s1", chunks[0].ID)
	assert.Equal(t, "CR-002#s1", chunks[1].ID)
	assert.Equal(t, "CR-001#s2", chunks[2].ID)
	assert.InDelta(t, 1.0, chunks[0].Relevance, 1e-9)
}

func TestMemoryStore_AllowedDocIDsHardFilter(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.Search(context.Background(), []float32{1, 0, 0}, 10,
		Filter{AllowedDocIDs: []string{"CR-001"}})
	require.NoError(t, err)

	for _, ch := range chunks {
		assert.Equal(t, "CR-001", ch.DocID)
	}
}

func TestMemoryStore_EmptyAllowedSetReturnsNothing(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.Search(context.Background(), []float32{1, 0, 0}, 10, Filter{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMemoryStore_TopK(t *testing.T) {
	store := seedStore(t)

	chunks, err := store.Search(context.Background(), []float32{1, 0, 0}, 1,
		Filter{AllowedDocIDs: []string{"CR-001", "CR-002"}})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	store := seedStore(t)

	err := store.UpdateDocument(context.Background(), "CR-001", []types.CRChunk{
		{ID: "CR-001#s1", DocID: "CR-001", DocVersion: 3, SectionID: "s1", Content: "updated"},
	}, [][]float32{{0, 0, 1}})
	require.NoError(t, err)

	chunks, err := store.FetchByDocID(context.Background(), "CR-001")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 3, chunks[0].DocVersion)

	require.NoError(t, store.DeleteByDocID(context.Background(), "CR-001"))
	chunks, err = store.FetchByDocID(context.Background(), "CR-001")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMemoryStore_IndexRejectsCountMismatch(t *testing.T) {
	store := NewMemoryStore()

	err := store.IndexDocument(context.Background(), "CR-001", []types.CRChunk{
		{ID: "CR-001#s1", DocID: "CR-001", SectionID: "s1"},
		{ID: "CR-001#s2", DocID: "CR-001", SectionID: "s2"},
	}, [][]float32{{1, 0, 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk/vector count mismatch")

	chunks, err := store.FetchByDocID(context.Background(), "CR-001")
	require.NoError(t, err)
	assert.Empty(t, chunks, "nothing is stored on mismatch")
}

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[0.5,1,-0.25]", VectorLiteral([]float32{0.5, 1, -0.25}))
	assert.Equal(t, "[]", VectorLiteral(nil))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
