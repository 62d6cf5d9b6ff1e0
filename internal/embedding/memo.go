package embedding

import (
	"context"
	"strings"
	"sync"
)

// Memoizer caches embeddings for the lifetime of one validation run so
// identical text never issues a second provider request. The cache is
// keyed on normalized text and is not persisted; the orchestrator
// creates a fresh Memoizer per invocation.
type Memoizer struct {
	inner Embedder

	mu    sync.Mutex
	cache map[string][]float32
}

// NewMemoizer wraps inner with a run-scoped cache.
func NewMemoizer(inner Embedder) *Memoizer {
	return &Memoizer{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

// normalizeKey lowercases and collapses whitespace so trivially
// different renderings of the same text share one cache entry.
func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Embed returns the cached vector when the normalized text was embedded
// before in this run, otherwise delegates to the wrapped embedder.
// Failed embeddings are not cached.
func (m *Memoizer) Embed(ctx context.Context, text string) ([]float32, error) {
	key := normalizeKey(text)

	m.mu.Lock()
	if vec, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return vec, nil
	}
	m.mu.Unlock()

	vec, err := m.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[key] = vec
	m.mu.Unlock()
	return vec, nil
}

// Close delegates to the wrapped embedder.
func (m *Memoizer) Close() error {
	return m.inner.Close()
}
