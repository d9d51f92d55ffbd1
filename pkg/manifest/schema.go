package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/apm-tool/apm/pkg/logger"
)

var schemaLog = logger.New("manifest:schema")

//go:embed schemas/apm_manifest_schema.json
var apmManifestSchemaJSON string

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func getCompiledManifestSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiledSchema, compiledSchemaErr = compileSchema(apmManifestSchemaJSON, "https://apm-tool.dev/schemas/apm_manifest.json")
	})
	return compiledSchema, compiledSchemaErr
}

func compileSchema(schemaJSON, schemaURL string) (*jsonschema.Schema, error) {
	schemaLog.Printf("Compiling JSON schema: %s", schemaURL)

	compiler := jsonschema.NewCompiler()

	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return schema, nil
}

// ValidateStructure runs the apm.yml content through the JSON Schema that
// governs its overall shape (required fields, enum constraints on `target`
// and `type`, `dependencies`/`scripts`/`compilation` block shapes), catching
// structural mistakes ParseManifest's typed decode alone would not surface
// (unknown `dependencies` sub-keys, a `target` outside the three supported
// values, and similar), per spec.md §3.
func ValidateStructure(content []byte) error {
	var doc any
	if err := yamlToJSONCompatible(content, &doc); err != nil {
		return fmt.Errorf("manifest schema validation: failed to parse document: %w", err)
	}

	schema, err := getCompiledManifestSchema()
	if err != nil {
		return fmt.Errorf("manifest schema validation error: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return nil
}
