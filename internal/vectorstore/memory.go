package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marcus/story-validator/internal/types"
)

// MemoryStore is a brute-force in-memory Store used in tests and small
// local setups. Ranking is deterministic: similarity descending, ties
// broken by (doc id, section id) ascending.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  map[string][]types.CRChunk // doc id -> chunks
	vectors map[string][][]float32     // doc id -> vectors, parallel to chunks
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:  make(map[string][]types.CRChunk),
		vectors: make(map[string][][]float32),
	}
}

// Search returns up to topK chunks ranked by cosine similarity.
func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int, filter Filter) ([]types.CRChunk, error) {
	if len(filter.AllowedDocIDs) == 0 {
		return nil, nil
	}
	allowed := make(map[string]bool, len(filter.AllowedDocIDs))
	for _, id := range filter.AllowedDocIDs {
		allowed[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []types.CRChunk
	for docID, docChunks := range s.chunks {
		if !allowed[docID] {
			continue
		}
		for i, ch := range docChunks {
			if filter.ProjectID != "" && ch.ProjectID != filter.ProjectID {
				continue
			}
			ch.Relevance = CosineSimilarity(vector, s.vectors[docID][i])
			scored = append(scored, ch)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Relevance != scored[j].Relevance {
			return scored[i].Relevance > scored[j].Relevance
		}
		if scored[i].DocID != scored[j].DocID {
			return scored[i].DocID < scored[j].DocID
		}
		return scored[i].SectionID < scored[j].SectionID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// FetchByDocID returns all chunks of one document ordered by section.
func (s *MemoryStore) FetchByDocID(_ context.Context, docID string) ([]types.CRChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docChunks, ok := s.chunks[docID]
	if !ok {
		return nil, nil
	}
	out := make([]types.CRChunk, len(docChunks))
	copy(out, docChunks)
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

// IndexDocument stores chunks with their vectors for a document. The
// two slices are parallel; a length mismatch would corrupt ranking.
func (s *MemoryStore) IndexDocument(_ context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch for %s: %d chunks, %d vectors", docID, len(chunks), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]types.CRChunk, len(chunks))
	copy(stored, chunks)
	vecs := make([][]float32, len(vectors))
	copy(vecs, vectors)

	s.chunks[docID] = stored
	s.vectors[docID] = vecs
	return nil
}

// UpdateDocument replaces a document's chunks.
func (s *MemoryStore) UpdateDocument(ctx context.Context, docID string, chunks []types.CRChunk, vectors [][]float32) error {
	if err := s.DeleteByDocID(ctx, docID); err != nil {
		return err
	}
	return s.IndexDocument(ctx, docID, chunks, vectors)
}

// DeleteByDocID removes every chunk of a document.
func (s *MemoryStore) DeleteByDocID(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, docID)
	delete(s.vectors, docID)
	return nil
}
