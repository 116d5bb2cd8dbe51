package driven

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrAssistantDisabled is returned by Assistant implementations that were
// constructed without an API key.
var ErrAssistantDisabled = errors.New("assistant disabled: set PINVAULT_GEMINI_API_KEY")

// ResponseSchema describes the JSON shape the assistant must answer with. It
// follows the OpenAPI subset accepted by structured-output LLM endpoints.
type ResponseSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]ResponseSchema `json:"properties,omitempty"`
	Items      *ResponseSchema           `json:"items,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// Assistant defines the driven port for the external language model. The
// returned payload is raw JSON expected to match schema; callers must treat
// any error, or a payload that does not decode, as a failed call.
type Assistant interface {
	Generate(ctx context.Context, prompt string, schema ResponseSchema) (json.RawMessage, error)
}
