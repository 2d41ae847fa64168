package driven

import "context"

// Schema types understood by every generator backend.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Schema is a backend-neutral description of structured model output.
// It maps onto both the Gemini responseSchema and JSON Schema.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

// GenerateRequest is one single-turn generation call.
type GenerateRequest struct {
	Model  string
	Prompt string
	// Schema, when set, asks the backend for JSON output of this shape.
	Schema *Schema
}

// TextGenerator defines the driven port for the generative-AI service.
type TextGenerator interface {
	// Generate returns the concatenated text of the first candidate.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// SchemaValidator checks a raw JSON document against a Schema.
type SchemaValidator interface {
	Validate(schema *Schema, raw []byte) error
}
