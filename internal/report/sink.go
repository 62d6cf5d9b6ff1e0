package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marcus/story-validator/internal/types"
)

// Sink persists rendered reports and returns a stable reference to the
// stored artifact.
type Sink interface {
	Store(result *types.ValidationResult, html []byte) (string, error)
}

// FSSink writes reports to a directory on the local filesystem. Now is
// injectable so tests get deterministic file names.
type FSSink struct {
	Dir string
	Now func() time.Time
}

// NewFSSink creates a filesystem sink rooted at dir.
func NewFSSink(dir string) *FSSink {
	return &FSSink{Dir: dir, Now: time.Now}
}

// Store writes the report as {storyID}_{validationID}_{timestamp}.html
// under the sink directory and returns the full path.
func (s *FSSink) Store(result *types.ValidationResult, html []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	name := fmt.Sprintf("%s_%s_%s.html",
		sanitize(result.StoryID),
		result.ID.String(),
		now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.Dir, name)

	if err := os.WriteFile(path, html, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// sanitize strips path separators from an externally supplied story ID
// so it cannot escape the report directory.
func sanitize(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch r {
		case '/', '\\', '.', ' ':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
