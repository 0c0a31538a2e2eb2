package stream

import "encoding/json"

type EventType string

const (
	EventThinking   EventType = "thinking"
	EventContent    EventType = "content"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

func (t EventType) String() string {
	return string(t)
}

// ErrorKind tells apart recoverable decode errors from the ones that end a stream.
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	// a single data line failed to parse, decoding continues
	ErrorKindMalformed
	// nested tool call, unmatched tool result, unknown type in strict mode
	ErrorKindProtocol
	// the backend reported an error
	ErrorKindBackend
	// the transport ended without a terminal event
	ErrorKindTruncated
	// the transport failed while reading
	ErrorKindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindProtocol:
		return "protocol"
	case ErrorKindBackend:
		return "backend"
	case ErrorKindTruncated:
		return "truncated"
	case ErrorKindTransport:
		return "transport"
	}
	return "none"
}

func (k ErrorKind) Terminal() bool {
	return k == ErrorKindBackend || k == ErrorKindTruncated || k == ErrorKindTransport
}

// Event is one decoded unit of a stream. Only the fields of its Type are set.
type Event struct {
	Type EventType `json:"type"`

	// thinking, content
	Text string `json:"text,omitempty"`

	// tool_call, tool_result
	ToolName  string          `json:"tool_name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Success   bool            `json:"success,omitempty"`

	// tool_result error or error message
	Error string    `json:"error,omitempty"`
	Kind  ErrorKind `json:"-"`
}

// MarshalJSON always writes success for tool results, false included, and
// leaves it out for every other type.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	out := struct {
		plain
		Success *bool `json:"success,omitempty"`
	}{plain: plain(e)}

	if e.Type == EventToolResult {
		out.Success = &e.Success
	}
	return json.Marshal(out)
}

func Thinking(text string) Event {
	return Event{Type: EventThinking, Text: text}
}

func Content(text string) Event {
	return Event{Type: EventContent, Text: text}
}

func ToolCallStarted(name string, args json.RawMessage) Event {
	return Event{Type: EventToolCall, ToolName: name, Arguments: args}
}

func ToolCallResult(name string, result json.RawMessage, success bool, errMsg string) Event {
	return Event{
		Type:     EventToolResult,
		ToolName: name,
		Result:   result,
		Success:  success,
		Error:    errMsg,
	}
}

func Done() Event {
	return Event{Type: EventDone}
}

func Failure(kind ErrorKind, message string) Event {
	return Event{Type: EventError, Kind: kind, Error: message}
}

// Message returns the error message of an error event.
func (e Event) Message() string {
	if e.Type == EventError {
		return e.Error
	}
	return ""
}

func (e Event) IsDelta() bool {
	return e.Type == EventThinking || e.Type == EventContent
}

func (e Event) IsError() bool {
	return e.Type == EventError
}

func (e Event) IsTerminal() bool {
	switch e.Type {
	case EventDone:
		return true
	case EventError:
		return e.Kind.Terminal()
	}
	return false
}

// ToolCall is a started tool invocation waiting for its result.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolExchange is a tool call matched with its result.
type ToolExchange struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
}

// Message is the assistant message accumulated over a whole stream.
type Message struct {
	Thinking  string         `json:"thinking,omitempty"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []ToolExchange `json:"tool_calls,omitempty"`
}

func (m *Message) IsEmpty() bool {
	return m.Thinking == "" && m.Content == "" && len(m.ToolCalls) == 0
}
