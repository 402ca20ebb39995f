package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/pytyper/internal/errors"
)

const schemaURL = "pytyper.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Schema reflects the JSON Schema of the config file from Config.
func Schema() *invopop.Schema {
	r := &invopop.Reflector{
		FieldNameTag:              "yaml",
		ExpandedStruct:            true,
		DoNotReference:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: false,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "pytyper configuration"
	schema.Description = "Schema for .pytyper.yml"
	return schema
}

// SchemaJSON returns the indented config schema.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		data, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("marshaling config schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("reading config schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("adding config schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ValidateYAML checks YAML config data against the config schema.
// An empty document is valid.
func ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.NewConfigError("failed to parse config file", err)
	}
	if doc == nil {
		return nil
	}

	// Round-trip through JSON so numbers reach the validator as json.Number.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.NewConfigError("config file is not representable as JSON", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return errors.NewConfigError("config file is not representable as JSON", err)
	}

	schema, err := compiled()
	if err != nil {
		return errors.NewConfigError("failed to compile config schema", err)
	}
	if err := schema.Validate(inst); err != nil {
		return errors.NewConfigError(fmt.Sprintf("config file does not match schema: %v", err), err)
	}
	return nil
}
