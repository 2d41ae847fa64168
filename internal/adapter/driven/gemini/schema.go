package gemini

import (
	"strings"

	"google.golang.org/genai"

	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// toGenaiSchema maps the port schema onto the OpenAPI subset the API accepts
// as responseSchema. Enums are strings with format "enum".
func toGenaiSchema(s *driven.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
		Enum:        s.Enum,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}
