package stream

import (
	"encoding/json"
	"strings"

	"github.com/invopop/jsonschema"
)

// Payload is the JSON record carried after "data: ".
type Payload struct {
	Type     string          `json:"type" jsonschema:"enum=thinking,enum=content,enum=tool_call,enum=tool_result,enum=done,enum=error,description=Event kind. Unknown kinds are ignored"`
	Content  string          `json:"content,omitempty" jsonschema:"description=Text delta of thinking and content events"`
	ToolName string          `json:"tool_name,omitempty" jsonschema:"description=Tool name of tool_call and tool_result events"`
	ToolArgs json.RawMessage `json:"tool_args,omitempty" jsonschema:"description=Arguments of a tool_call event"`
	Result   json.RawMessage `json:"result,omitempty" jsonschema:"description=Result of a tool_result event"`
	Success  *bool           `json:"success,omitempty" jsonschema:"description=Whether the tool succeeded. Defaults to true unless error is set"`
	Error    json.RawMessage `json:"error,omitempty" jsonschema:"description=Error message of an error or tool_result event"`
}

// errorText accepts "error" as a string or as an object with a message field.
func (p *Payload) errorText() string {
	if len(p.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(p.Error, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(p.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	if string(p.Error) == "null" {
		return ""
	}

	return string(p.Error)
}

// PayloadSchema describes the wire record as JSON Schema.
func PayloadSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	s := reflector.Reflect(&Payload{})
	s.Title = "stream event payload"
	return s
}
