package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/story-validator/internal/vectorstore"
)

type MockEmbedder struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	Calls     int
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *MockEmbedder) Close() error { return nil }

func TestChunkDocumentBuildsCitableChunks(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	chunks := ChunkDocument(doc)
	require.Len(t, chunks, 3)

	first := chunks[0]
	assert.Equal(t, "CR-2024-017#summary", first.ID)
	assert.Equal(t, "CR-2024-017", first.DocID)
	assert.Equal(t, 3, first.DocVersion)
	assert.Equal(t, "summary", first.SectionID)
	assert.Equal(t, "PRJ-billing", first.ProjectID)
	assert.Equal(t, []string{"TD-021", "NFR-004"}, first.Links)
	assert.True(t, strings.HasPrefix(first.Content, "Summary\n"), "heading is prepended to content")
	assert.Len(t, first.Checksum, 64)
}

func TestChunkDocumentChecksumIsStable(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	a := ChunkDocument(doc)
	b := ChunkDocument(doc)
	for i := range a {
		assert.Equal(t, a[i].Checksum, b[i].Checksum)
	}
	assert.NotEqual(t, a[0].Checksum, a[1].Checksum, "different sections get different checksums")
}

func TestIngestIndexesAllChunks(t *testing.T) {
	embedder := &MockEmbedder{}
	store := vectorstore.NewMemoryStore()
	ingestor := NewIngestor(embedder, store)

	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	count, err := ingestor.Ingest(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, embedder.Calls)

	stored, err := store.FetchByDocID(context.Background(), "CR-2024-017")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestIngestReplacesPreviousVersion(t *testing.T) {
	embedder := &MockEmbedder{}
	store := vectorstore.NewMemoryStore()
	ingestor := NewIngestor(embedder, store)

	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)
	_, err = ingestor.Ingest(context.Background(), doc)
	require.NoError(t, err)

	updated := *doc
	updated.Version = 4
	updated.Sections = doc.Sections[:1]
	_, err = ingestor.Ingest(context.Background(), &updated)
	require.NoError(t, err)

	stored, err := store.FetchByDocID(context.Background(), "CR-2024-017")
	require.NoError(t, err)
	require.Len(t, stored, 1, "old version chunks are gone")
	assert.Equal(t, 4, stored[0].DocVersion)
}

func TestIngestPropagatesEmbedFailure(t *testing.T) {
	embedder := &MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, assert.AnError
		},
	}
	ingestor := NewIngestor(embedder, vectorstore.NewMemoryStore())

	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	_, err = ingestor.Ingest(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed chunk")
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cr.html")
	require.NoError(t, os.WriteFile(path, []byte(sampleCR), 0o644))

	ingestor := NewIngestor(&MockEmbedder{}, vectorstore.NewMemoryStore())
	doc, count, err := ingestor.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "CR-2024-017", doc.DocID)
	assert.Equal(t, 3, count)
}

func TestIngestFileMissing(t *testing.T) {
	ingestor := NewIngestor(&MockEmbedder{}, vectorstore.NewMemoryStore())
	_, _, err := ingestor.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open document")
}
