package phases

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	schemaCache   = make(map[Phase]*gojsonschema.Schema)
	schemaCacheMu sync.Mutex
)

// loadSchema compiles and caches the response schema for a phase.
func loadSchema(phase Phase) (*gojsonschema.Schema, error) {
	schemaCacheMu.Lock()
	defer schemaCacheMu.Unlock()

	if schema, ok := schemaCache[phase]; ok {
		return schema, nil
	}

	data, err := schemaFiles.ReadFile(fmt.Sprintf("schemas/%s.json", phase))
	if err != nil {
		return nil, fmt.Errorf("no response schema for phase %s: %w", phase, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for phase %s: %w", phase, err)
	}

	schemaCache[phase] = schema
	return schema, nil
}

// validateResponse checks a raw LLM JSON response against the phase's
// schema. A malformed response is treated like a provider failure so
// the orchestrator's retry policy applies.
func validateResponse(phase Phase, raw string) error {
	schema, err := loadSchema(phase)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("response failed schema validation: %s", strings.Join(details, "; "))
	}
	return nil
}
