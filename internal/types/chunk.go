package types

import "fmt"

// SourceType identifies the kind of document a chunk was extracted from.
type SourceType string

// Source type constants for CR and related documents
const (
	SourceCR          SourceType = "cr"
	SourceTechDoc     SourceType = "tech_doc"
	SourceNFR         SourceType = "nfr"
	SourceDefect      SourceType = "defect"
	SourceReleaseNote SourceType = "release_note"
)

// IsValid reports whether the source type is one of the known values.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceCR, SourceTechDoc, SourceNFR, SourceDefect, SourceReleaseNote:
		return true
	}
	return false
}

// CRChunk is a retrievable unit of CR, tech-doc, NFR, defect or release
// text. Relevance is attached per-query by retrieval, not intrinsic to
// the chunk.
type CRChunk struct {
	ID         string     `json:"id"`
	DocID      string     `json:"doc_id"`
	DocVersion int        `json:"doc_version"`
	SectionID  string     `json:"section_id"`
	ProjectID  string     `json:"project_id,omitempty"`
	Source     SourceType `json:"source_type"`
	Content    string     `json:"content"`
	Checksum   string     `json:"checksum"`
	// Links holds doc IDs of related tech-doc/NFR documents used for
	// context expansion via metadata linkage.
	Links     []string `json:"links,omitempty"`
	Relevance float64  `json:"relevance,omitempty"`
}

// ChunkID builds the canonical chunk identifier from its document and
// section IDs. Findings cite chunks by this identifier.
func ChunkID(docID, sectionID string) string {
	return fmt.Sprintf("%s#%s", docID, sectionID)
}
