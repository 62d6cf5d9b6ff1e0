// Package vectorstore provides nearest-neighbor search over embedded CR
// chunks. The index internals are opaque to the validation path; both a
// pgvector-backed Postgres store and an in-memory store implement the
// same interface.
package vectorstore

import (
	"context"

	"github.com/marcus/story-validator/internal/types"
)

// Filter constrains a similarity search.
type Filter struct {
	// AllowedDocIDs is a hard filter: chunks outside it never appear in
	// results, regardless of relevance.
	AllowedDocIDs []string
	// ProjectID optionally restricts results to one project.
	ProjectID string
}

// Store is an opaque nearest-neighbor index over CR chunks. Ingestion
// methods (IndexDocument, UpdateDocument, DeleteByDocID) are driven by
// the offline ingestion pipeline, never by the validation path.
type Store interface {
	// Search returns up to topK chunks ranked by similarity to vector,
	// with per-query relevance scores populated.
	Search(ctx context.Context, vector []float32, topK int, filter Filter) ([]types.CRChunk, error)
	// FetchByDocID returns all chunks of one document, used for
	// metadata-linkage context expansion.
	FetchByDocID(ctx context.Context, docID string) ([]types.CRChunk, error)
	// IndexDocument stores chunks with their vectors for a document.
	IndexDocument(ctx context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error
	// UpdateDocument replaces a document's chunks with a new version.
	UpdateDocument(ctx context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error
	// DeleteByDocID removes every chunk of a document.
	DeleteByDocID(ctx context.Context, docID string) error
}
