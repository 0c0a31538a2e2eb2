package types

import "time"

// MessageRole represents the role of a message sender
type MessageRole int

const (
	RoleUser MessageRole = iota
	RoleAssistant
	RoleToolCall
	RoleError
)

// ToolStatus is the state of a tool badge
type ToolStatus int

const (
	ToolPending ToolStatus = iota
	ToolSucceeded
	ToolFailed
)

// Message represents a chat message in the UI
type Message struct {
	Role             MessageRole
	Content          string
	ReasoningContent string
	Timestamp        time.Time

	// assistant content of a finished turn is rendered as markdown
	Final bool

	// For tool calls (only when Role == RoleToolCall)
	ToolName      string
	ToolArguments string
	ToolResult    string
	ToolStatus    ToolStatus
	ToolError     string
}

// IsUser returns true if message is from user
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if message is from assistant
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// IsToolCall returns true if message is a tool call
func (m *Message) IsToolCall() bool {
	return m.Role == RoleToolCall
}

func (m *Message) IsError() bool {
	return m.Role == RoleError
}
