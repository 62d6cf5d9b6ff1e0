// Package retrieval selects and expands the CR context a validation run
// operates on.
package retrieval

import (
	"context"
	"sort"

	"github.com/marcus/story-validator/internal/types"
	"github.com/marcus/story-validator/internal/vectorstore"
)

// Default retrieval parameters
const (
	DefaultTopK      = 20
	DefaultThreshold = 0.55
)

// Retriever runs vector search over the caller-selected CR documents
// and expands the hits with related tech-doc/NFR content.
type Retriever struct {
	store     vectorstore.Store
	topK      int
	threshold float64
}

// New creates a retriever. Non-positive topK or threshold fall back to
// the defaults.
func New(store vectorstore.Store, topK int, threshold float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Retriever{store: store, topK: topK, threshold: threshold}
}

// Threshold returns the configured relevance threshold.
func (r *Retriever) Threshold() float64 { return r.threshold }

// Retrieve returns ranked chunks for the query vector, restricted to
// allowedDocIDs and to hits meeting the relevance threshold. The
// allow-list is a hard filter: the store applies it in the query and
// the result is checked again here so a chunk outside the caller's CR
// selection can never be cited. An empty result after thresholding is
// the "no applicable CR context" state.
func (r *Retriever) Retrieve(ctx context.Context, vector []float32, allowedDocIDs []string) ([]types.CRChunk, error) {
	if len(allowedDocIDs) == 0 {
		return nil, nil
	}

	chunks, err := r.store.Search(ctx, vector, r.topK, vectorstore.Filter{AllowedDocIDs: allowedDocIDs})
	if err != nil {
		return nil, &Error{Op: "search", Cause: err}
	}

	allowed := make(map[string]bool, len(allowedDocIDs))
	for _, id := range allowedDocIDs {
		allowed[id] = true
	}
	filtered := chunks[:0]
	for _, ch := range chunks {
		if allowed[ch.DocID] {
			filtered = append(filtered, ch)
		}
	}
	filtered = FilterByRelevance(filtered, r.threshold)

	sortChunks(filtered)
	return filtered, nil
}

// FilterByRelevance keeps chunks whose relevance meets the threshold.
// An empty result is a valid "no applicable CR context" state.
func FilterByRelevance(chunks []types.CRChunk, threshold float64) []types.CRChunk {
	var kept []types.CRChunk
	for _, ch := range chunks {
		if ch.Relevance >= threshold {
			kept = append(kept, ch)
		}
	}
	return kept
}

// ExpandContext builds the final context: the relevant chunks plus
// related tech-doc/NFR chunks pulled in via metadata linkage rather
// than vector similarity, deduplicated by (doc id, section id).
// Expansion chunks follow the ranked set, ordered by (doc id,
// section id) for determinism.
func (r *Retriever) ExpandContext(ctx context.Context, chunks []types.CRChunk) (*types.ExpandedContext, error) {
	seen := make(map[string]bool)
	ordered := make([]types.CRChunk, 0, len(chunks))
	for _, ch := range chunks {
		key := types.ChunkID(ch.DocID, ch.SectionID)
		if seen[key] {
			continue
		}
		seen[key] = true
		ordered = append(ordered, ch)
	}

	// Collect linked doc IDs not already represented in the context.
	presentDocs := make(map[string]bool)
	for _, ch := range ordered {
		presentDocs[ch.DocID] = true
	}
	linkedSet := make(map[string]bool)
	var linked []string
	for _, ch := range ordered {
		for _, docID := range ch.Links {
			if presentDocs[docID] || linkedSet[docID] {
				continue
			}
			linkedSet[docID] = true
			linked = append(linked, docID)
		}
	}
	sort.Strings(linked)

	var expansion []types.CRChunk
	for _, docID := range linked {
		related, err := r.store.FetchByDocID(ctx, docID)
		if err != nil {
			return nil, &Error{Op: "expand", Cause: err}
		}
		for _, ch := range related {
			// Only supporting document types surface requirements the
			// story's embedding would miss.
			if ch.Source != types.SourceTechDoc && ch.Source != types.SourceNFR {
				continue
			}
			key := types.ChunkID(ch.DocID, ch.SectionID)
			if seen[key] {
				continue
			}
			seen[key] = true
			expansion = append(expansion, ch)
		}
	}

	sort.Slice(expansion, func(i, j int) bool {
		if expansion[i].DocID != expansion[j].DocID {
			return expansion[i].DocID < expansion[j].DocID
		}
		return expansion[i].SectionID < expansion[j].SectionID
	})

	return &types.ExpandedContext{Chunks: append(ordered, expansion...)}, nil
}

// sortChunks orders by relevance descending, ties broken by (doc id,
// section id) ascending.
func sortChunks(chunks []types.CRChunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].Relevance != chunks[j].Relevance {
			return chunks[i].Relevance > chunks[j].Relevance
		}
		if chunks[i].DocID != chunks[j].DocID {
			return chunks[i].DocID < chunks[j].DocID
		}
		return chunks[i].SectionID < chunks[j].SectionID
	})
}
