package ingestion

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/marcus/story-validator/internal/types"
)

// ChunkDocument turns a parsed document into retrievable chunks, one
// per section. The heading is prepended to the content so embeddings
// capture what the section is about even when its body is terse.
func ChunkDocument(doc *Document) []types.CRChunk {
	chunks := make([]types.CRChunk, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		content := section.Content
		if section.Heading != "" {
			content = section.Heading + "\n" + content
		}

		chunks = append(chunks, types.CRChunk{
			ID:         types.ChunkID(doc.DocID, section.ID),
			DocID:      doc.DocID,
			DocVersion: doc.Version,
			SectionID:  section.ID,
			ProjectID:  doc.ProjectID,
			Source:     doc.Source,
			Content:    content,
			Checksum:   checksum(content),
			Links:      doc.Links,
		})
	}
	return chunks
}

// checksum fingerprints chunk content so re-ingestion can detect
// unchanged sections.
func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
