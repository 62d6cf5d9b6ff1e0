package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/story-validator/internal/types"
)

const sampleCR = `<!DOCTYPE html>
<html>
<head>
  <title>CR-2024-017: Billing retry policy</title>
  <meta name="doc-id" content="CR-2024-017">
  <meta name="doc-version" content="3">
  <meta name="project-id" content="PRJ-billing">
  <meta name="source-type" content="cr">
  <meta name="doc-links" content="TD-021, NFR-004">
</head>
<body>
  <nav>Home | Documents</nav>
  <h1 id="summary">Summary</h1>
  <p>Failed card charges must retry up to three times with backoff.</p>
  <h2 id="acceptance">Acceptance Criteria</h2>
  <ul>
    <li>Retries stop after the third failure.</li>
    <li>The customer is notified after the final failure.</li>
  </ul>
  <h2>Out of Scope</h2>
  <p>Manual retry from the support console.</p>
  <footer>Generated by DocTool</footer>
</body>
</html>`

func TestParseHTMLExtractsMetadataAndSections(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	assert.Equal(t, "CR-2024-017", doc.DocID)
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, "PRJ-billing", doc.ProjectID)
	assert.Equal(t, types.SourceCR, doc.Source)
	assert.Equal(t, []string{"TD-021", "NFR-004"}, doc.Links)

	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "summary", doc.Sections[0].ID)
	assert.Equal(t, "Summary", doc.Sections[0].Heading)
	assert.Contains(t, doc.Sections[0].Content, "retry up to three times")

	assert.Equal(t, "acceptance", doc.Sections[1].ID)
	assert.Contains(t, doc.Sections[1].Content, "notified after the final failure")
}

func TestParseHTMLAssignsPositionalSectionIDs(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	// The third heading has no id attribute.
	assert.Equal(t, "s3", doc.Sections[2].ID)
	assert.Equal(t, "Out of Scope", doc.Sections[2].Heading)
}

func TestParseHTMLStripsNoiseElements(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(sampleCR))
	require.NoError(t, err)

	for _, section := range doc.Sections {
		assert.NotContains(t, section.Content, "Home | Documents")
		assert.NotContains(t, section.Content, "Generated by DocTool")
	}
}

func TestParseHTMLRequiresDocID(t *testing.T) {
	html := `<html><head></head><body><h1>Summary</h1><p>text</p></body></html>`
	_, err := ParseHTML(strings.NewReader(html))
	assert.ErrorIs(t, err, ErrMissingDocID)
}

func TestParseHTMLRequiresSections(t *testing.T) {
	html := `<html><head><meta name="doc-id" content="CR-1"></head><body><p>no headings here</p></body></html>`
	_, err := ParseHTML(strings.NewReader(html))
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestParseHTMLRejectsBadVersion(t *testing.T) {
	html := `<html><head>
		<meta name="doc-id" content="CR-1">
		<meta name="doc-version" content="zero">
	</head><body><h1>Summary</h1><p>text</p></body></html>`
	_, err := ParseHTML(strings.NewReader(html))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid doc-version")
}

func TestParseHTMLRejectsUnknownSourceType(t *testing.T) {
	html := `<html><head>
		<meta name="doc-id" content="CR-1">
		<meta name="source-type" content="wiki">
	</head><body><h1>Summary</h1><p>text</p></body></html>`
	_, err := ParseHTML(strings.NewReader(html))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source-type")
}

func TestParseHTMLDefaultsVersionAndSource(t *testing.T) {
	html := `<html><head><meta name="doc-id" content="NFR-004"></head>
		<body><h2 id="latency">Latency</h2><p>P99 under 300ms.</p></body></html>`
	doc, err := ParseHTML(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, types.SourceCR, doc.Source)
	assert.Empty(t, doc.Links)
}

func TestCleanTextCollapsesBlankLines(t *testing.T) {
	input := "  line one  \r\n\r\n\r\n\r\n\tline two\t\n"
	assert.Equal(t, "line one\n\nline two", CleanText(input))
}
