package ingestion

import (
	"context"
	"fmt"
	"os"

	"github.com/marcus/story-validator/internal/embedding"
	"github.com/marcus/story-validator/internal/vectorstore"
)

// Ingestor embeds document chunks and writes them to the vector store.
type Ingestor struct {
	Embedder embedding.Embedder
	Store    vectorstore.Store
}

// NewIngestor wires an ingestor from its collaborators.
func NewIngestor(embedder embedding.Embedder, store vectorstore.Store) *Ingestor {
	return &Ingestor{Embedder: embedder, Store: store}
}

// IngestFile parses one HTML document from disk and indexes it.
// Returns the parsed document and the number of chunks written.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (*Document, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := ParseHTML(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	count, err := in.Ingest(ctx, doc)
	if err != nil {
		return nil, 0, err
	}
	return doc, count, nil
}

// Ingest embeds and indexes a parsed document. Re-ingesting a doc ID
// replaces its previous version entirely; retrieval never sees a
// mixed-version document.
func (in *Ingestor) Ingest(ctx context.Context, doc *Document) (int, error) {
	chunks := ChunkDocument(doc)

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := in.Embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
		}
		vectors[i] = vector
	}

	if err := in.Store.UpdateDocument(ctx, doc.DocID, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to index document %s: %w", doc.DocID, err)
	}
	return len(chunks), nil
}
