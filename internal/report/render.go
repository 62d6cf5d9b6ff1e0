// Package report renders a validation result into a standalone HTML
// report and persists it through a Sink.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/marcus/story-validator/internal/types"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"title":   titleCase,
	"percent": func(f float64) string { return fmt.Sprintf("%.0f", f) },
	"fixed":   func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"dict":    dict,
}).Parse(reportTemplate))

// dict builds a map from alternating key/value arguments so nested
// templates can receive more than one value.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// reportData is the template's view of one validation run.
type reportData struct {
	Result      *types.ValidationResult
	Story       *types.Story
	GeneratedAt string
	BandClass   string
}

// Render produces the full HTML report for a completed validation.
func Render(result *types.ValidationResult, story *types.Story) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("nil validation result")
	}
	data := reportData{
		Result:      result,
		Story:       story,
		GeneratedAt: result.CreatedAt.UTC().Format(time.RFC3339),
		BandClass:   strings.ToLower(string(result.RiskBand)),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		if w == "ac" || w == "nfr" {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
