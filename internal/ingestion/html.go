// Package ingestion parses CR, tech-doc and NFR documents exported as
// HTML, chunks them by section, and indexes them into the vector store.
// It runs offline; the validation path only ever reads the index.
package ingestion

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/marcus/story-validator/internal/types"
)

var (
	// ErrMissingDocID is returned when a document carries no doc-id meta tag.
	ErrMissingDocID = fmt.Errorf("document has no doc-id")
	// ErrNoSections is returned when no headed sections could be extracted.
	ErrNoSections = fmt.Errorf("document has no sections")
)

// Section is one headed passage of a document.
type Section struct {
	ID      string
	Heading string
	Content string
}

// Document is a parsed CR-style document ready for chunking. Identity
// and linkage come from meta tags in the HTML head:
//
//	<meta name="doc-id" content="CR-2024-017">
//	<meta name="doc-version" content="3">
//	<meta name="project-id" content="PRJ-billing">
//	<meta name="source-type" content="cr">
//	<meta name="doc-links" content="TD-021,NFR-004">
type Document struct {
	DocID     string
	Version   int
	ProjectID string
	Source    types.SourceType
	Title     string
	Links     []string
	Sections  []Section
}

// ParseHTML extracts a Document from exported HTML. Sections split on
// h1/h2/h3 headings; content between headings belongs to the preceding
// one. Headings without an id attribute get positional IDs (s1, s2...).
func ParseHTML(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	parsed := &Document{
		DocID:     metaContent(doc, "doc-id"),
		ProjectID: metaContent(doc, "project-id"),
		Source:    types.SourceCR,
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Version:   1,
	}
	if parsed.DocID == "" {
		return nil, ErrMissingDocID
	}

	if raw := metaContent(doc, "doc-version"); raw != "" {
		version, err := strconv.Atoi(raw)
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid doc-version %q", raw)
		}
		parsed.Version = version
	}

	if raw := metaContent(doc, "source-type"); raw != "" {
		source := types.SourceType(raw)
		if !source.IsValid() {
			return nil, fmt.Errorf("unknown source-type %q", raw)
		}
		parsed.Source = source
	}

	for _, link := range strings.Split(metaContent(doc, "doc-links"), ",") {
		if link = strings.TrimSpace(link); link != "" {
			parsed.Links = append(parsed.Links, link)
		}
	}

	// Noise elements never carry requirement text.
	doc.Find("nav, footer, header, script, style, noscript").Remove()

	doc.Find("h1, h2, h3").Each(func(i int, heading *goquery.Selection) {
		sectionID, ok := heading.Attr("id")
		if !ok || sectionID == "" {
			sectionID = fmt.Sprintf("s%d", i+1)
		}

		content := heading.NextUntil("h1, h2, h3").Text()
		content = CleanText(content)
		if content == "" {
			return
		}

		parsed.Sections = append(parsed.Sections, Section{
			ID:      sectionID,
			Heading: strings.TrimSpace(heading.Text()),
			Content: content,
		})
	})

	if len(parsed.Sections) == 0 {
		return nil, ErrNoSections
	}

	return parsed, nil
}

func metaContent(doc *goquery.Document, name string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().Attr("content")
	return strings.TrimSpace(content)
}
