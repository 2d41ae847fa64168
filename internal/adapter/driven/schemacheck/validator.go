// Package schemacheck validates structured generator output with JSON Schema.
package schemacheck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SchemaValidator = (*Validator)(nil)

// Validator compiles each driven.Schema once and validates documents against it.
type Validator struct {
	mu       sync.Mutex
	compiled map[*driven.Schema]*jsonschema.Schema
	seq      int
}

// NewValidator creates an empty Validator.
func NewValidator() *Validator {
	return &Validator{compiled: make(map[*driven.Schema]*jsonschema.Schema)}
}

// Validate checks raw against schema. It fails on invalid JSON and on any
// shape mismatch.
func (v *Validator) Validate(schema *driven.Schema, raw []byte) error {
	sch, err := v.compile(schema)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	return nil
}

func (v *Validator) compile(schema *driven.Schema) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[schema]; ok {
		return sch, nil
	}

	encoded, err := json.Marshal(ToJSONSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}

	v.seq++
	url := fmt.Sprintf("https://gitmomentum.local/schemas/%d.json", v.seq)

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	v.compiled[schema] = sch
	return sch, nil
}

// ToJSONSchema renders a driven.Schema as a JSON Schema document.
func ToJSONSchema(s *driven.Schema) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = ToJSONSchema(p)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if s.Items != nil {
		out["items"] = ToJSONSchema(s.Items)
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	return out
}
