package types

// ExpandedContext is the ordered sequence of CR chunks a validation run
// operates on, after relevance filtering and related-document expansion.
// Chunks are unique by (doc id, section id). An empty context is a valid
// "no applicable CR context" state, not an error.
type ExpandedContext struct {
	Chunks []CRChunk `json:"chunks"`
}

// Empty reports whether the context contains no chunks.
func (c *ExpandedContext) Empty() bool {
	return c == nil || len(c.Chunks) == 0
}

// Contains reports whether a chunk with the given ID is present.
func (c *ExpandedContext) Contains(chunkID string) bool {
	if c == nil {
		return false
	}
	for _, ch := range c.Chunks {
		if ch.ID == chunkID {
			return true
		}
	}
	return false
}

// ChunkIDs returns the IDs of all chunks in context order.
func (c *ExpandedContext) ChunkIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Chunks))
	for _, ch := range c.Chunks {
		ids = append(ids, ch.ID)
	}
	return ids
}

// DocVersions returns the highest version seen per document ID. Used to
// pin CR selections in the validation result.
func (c *ExpandedContext) DocVersions() map[string]int {
	versions := make(map[string]int)
	if c == nil {
		return versions
	}
	for _, ch := range c.Chunks {
		if v, ok := versions[ch.DocID]; !ok || ch.DocVersion > v {
			versions[ch.DocID] = ch.DocVersion
		}
	}
	return versions
}
