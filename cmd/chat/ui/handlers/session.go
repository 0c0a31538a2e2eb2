package handlers

import (
	"context"
	"time"

	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
	"github.com/ryanreadbooks/tokkistream/store"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const toolSummaryLen = 100

// SessionHandler handles chat session interactions
type SessionHandler struct {
	session *chat.Session
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *chat.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

// SendMessage sends a message and returns the streaming turn
func (h *SessionHandler) SendMessage(ctx context.Context, content string) (*chat.Turn, error) {
	return h.session.Send(ctx, content)
}

func (h *SessionHandler) ConversationID() string {
	return h.session.ConversationID()
}

func (h *SessionHandler) Files() *store.OpenFileStore {
	return h.session.Files()
}

// NextFile makes the next open file active
func (h *SessionHandler) NextFile() (store.OpenFile, bool) {
	return h.session.Files().Next()
}

// NewConversation switches to a fresh conversation
func (h *SessionHandler) NewConversation() (string, error) {
	return h.session.NewConversation()
}

// LoadHistory loads conversation history
func (h *SessionHandler) LoadHistory() ([]types.Message, error) {
	history, err := h.session.History()
	if err != nil {
		return nil, err
	}

	messages := make([]types.Message, 0, len(history))
	for _, item := range history {
		messages = append(messages, convertStoredMessage(item)...)
	}

	return messages, nil
}

// convertStoredMessage converts a stored message to UI messages.
// Returns multiple messages when assistant has tool calls
func convertStoredMessage(item store.Message) []types.Message {
	timestamp := time.Unix(item.Created, 0)

	switch item.Role {
	case store.RoleUser:
		return []types.Message{{
			Role:      types.RoleUser,
			Content:   item.Content,
			Timestamp: timestamp,
		}}

	case store.RoleError:
		return []types.Message{{
			Role:      types.RoleError,
			Content:   item.Content,
			Timestamp: timestamp,
		}}

	case store.RoleAssistant:
		// Order: thinking -> tool calls -> content
		var messages []types.Message
		hasToolCalls := len(item.ToolCalls) > 0

		if hasToolCalls && item.Thinking != "" {
			messages = append(messages, types.Message{
				Role:             types.RoleAssistant,
				ReasoningContent: item.Thinking,
				Timestamp:        timestamp,
			})
		}

		for _, tc := range item.ToolCalls {
			messages = append(messages, ToolCallMessage(tc, timestamp))
		}

		content := types.Message{
			Role:      types.RoleAssistant,
			Content:   item.Content,
			Timestamp: timestamp,
			Final:     true,
		}
		if !hasToolCalls {
			// No tool calls - show content and reasoning together
			content.ReasoningContent = item.Thinking
		}
		if content.Content != "" || content.ReasoningContent != "" {
			messages = append(messages, content)
		}

		return messages
	}

	return nil
}

// ToolCallMessage renders a resolved tool exchange as a badge message
func ToolCallMessage(tc stream.ToolExchange, timestamp time.Time) types.Message {
	status := types.ToolSucceeded
	if !tc.Success {
		status = types.ToolFailed
	}

	return types.Message{
		Role:          types.RoleToolCall,
		ToolName:      tc.Name,
		ToolArguments: string(tc.Arguments),
		ToolResult:    types.FormatToolResult(tc.Result, toolSummaryLen),
		ToolStatus:    status,
		ToolError:     tc.Error,
		Timestamp:     timestamp,
	}
}
