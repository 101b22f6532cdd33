// Package schema carries the published schema documents for the JSONL and
// XML output formats. They are fixed, versioned templates — an external
// contract — not derived from parsed data.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// Published schema locations, referenced from the artifacts themselves.
const (
	JSONSchemaURI = "https://raw.githubusercontent.com/arjoma/scheinfirmen-at/main/data/scheinfirmen.json-schema.json"
	XSDURI        = "https://raw.githubusercontent.com/arjoma/scheinfirmen-at/main/data/scheinfirmen.xsd"
)

//go:embed scheinfirmen.json-schema.json
var jsonSchema []byte

//go:embed scheinfirmen.xsd
var xsdSchema []byte

// JSONSchema returns the raw JSON Schema document describing one JSONL record.
func JSONSchema() []byte { return jsonSchema }

// XSD returns the raw XML Schema document describing the XML output.
func XSD() []byte { return xsdSchema }

// WriteJSONSchema writes the JSON Schema artifact, creating parent
// directories as needed.
func WriteJSONSchema(path string) error {
	return writeArtifact(path, jsonSchema)
}

// WriteXSD writes the XSD artifact, creating parent directories as needed.
func WriteXSD(path string) error {
	return writeArtifact(path, xsdSchema)
}

func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
