package components

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
)

const noResultError = "no result"

// ChatComponent handles the chat message display area
type ChatComponent struct {
	viewport viewport.Model
	messages []types.Message
	theme    *styles.Theme
	width    int
	height   int

	markdown *glamour.TermRenderer
	// message index -> rendered markdown of a final assistant message
	rendered map[int]string
}

// NewChatComponent creates a new chat component
func NewChatComponent(theme *styles.Theme) *ChatComponent {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.KeyMap = viewport.DefaultKeyMap()

	c := &ChatComponent{
		viewport: vp,
		messages: make([]types.Message, 0),
		theme:    theme,
		width:    80,
		height:   20,
		rendered: make(map[int]string),
	}
	c.markdown = newMarkdownRenderer(c.width)

	return c
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-8, 20)),
		glamour.WithEmoji(),
	)
	if err != nil {
		slog.Warn("[tui] failed to create markdown renderer", "error", err)
		return nil
	}
	return r
}

// Update handles component updates
func (c *ChatComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

// View renders the component
func (c *ChatComponent) View() string {
	return c.viewport.View()
}

func (c *ChatComponent) Messages() []types.Message {
	return c.messages
}

// AddMessage adds a new message to the chat
func (c *ChatComponent) AddMessage(msg types.Message) {
	c.messages = append(c.messages, msg)
	c.refresh()
}

// AddError shows an error inline
func (c *ChatComponent) AddError(text string) {
	c.AddMessage(types.Message{
		Role:      types.RoleError,
		Content:   text,
		Timestamp: time.Now(),
	})
}

// AppendDelta extends the streaming assistant message. A delta after a tool
// badge or an error starts a new assistant message.
func (c *ChatComponent) AppendDelta(content, reasoningContent string) {
	idx := len(c.messages) - 1
	if idx < 0 || !c.messages[idx].IsAssistant() || c.messages[idx].Final {
		c.messages = append(c.messages, types.Message{
			Role:      types.RoleAssistant,
			Timestamp: time.Now(),
		})
		idx++
	}

	c.messages[idx].Content += content
	c.messages[idx].ReasoningContent += reasoningContent
	c.refresh()
}

// AddToolCall adds a pending tool badge
func (c *ChatComponent) AddToolCall(name string, args json.RawMessage) {
	c.AddMessage(types.Message{
		Role:          types.RoleToolCall,
		ToolName:      name,
		ToolArguments: string(args),
		ToolStatus:    types.ToolPending,
		Timestamp:     time.Now(),
	})
}

// ResolveToolCall marks the last pending badge of the tool as finished
func (c *ChatComponent) ResolveToolCall(name, result string, success bool, errMsg string) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := &c.messages[i]
		if !m.IsToolCall() || m.ToolName != name || m.ToolStatus != types.ToolPending {
			continue
		}

		m.ToolResult = result
		m.ToolError = errMsg
		m.ToolStatus = types.ToolFailed
		if success {
			m.ToolStatus = types.ToolSucceeded
		}
		c.refresh()
		return
	}
}

// FinalizeTurn renders the assistant messages of the last turn as markdown
// and fails badges that never got a result.
func (c *ChatComponent) FinalizeTurn() {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := &c.messages[i]
		if m.IsUser() {
			break
		}

		switch {
		case m.IsAssistant():
			m.Final = true
		case m.IsToolCall() && m.ToolStatus == types.ToolPending:
			m.ToolStatus = types.ToolFailed
			m.ToolError = noResultError
		}
	}
	c.refresh()
}

// SetSize updates the component size
func (c *ChatComponent) SetSize(width, height int) {
	if width != c.width {
		c.markdown = newMarkdownRenderer(width)
		clear(c.rendered)
	}

	c.width = width
	c.height = height
	c.viewport.Width = width
	c.viewport.Height = height
	c.refresh()
}

// LoadMessages loads initial messages
func (c *ChatComponent) LoadMessages(messages []types.Message) {
	c.messages = messages
	clear(c.rendered)
	c.refresh()
}

// refresh updates the viewport content
func (c *ChatComponent) refresh() {
	content := c.renderMessages()
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(content))
	c.viewport.GotoBottom()
}

// renderMessages renders all messages
func (c *ChatComponent) renderMessages() string {
	if len(c.messages) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, msg := range c.messages {
		switch msg.Role {
		case types.RoleUser:
			sb.WriteString(c.renderUserMessage(msg.Content))
		case types.RoleAssistant:
			if msg.ReasoningContent != "" {
				sb.WriteString(c.renderThinkingMessage(msg.ReasoningContent))
			}
			if msg.Content != "" {
				sb.WriteString(c.renderAssistantMessage(i, &msg))
			}
		case types.RoleToolCall:
			sb.WriteString(renderToolBadge(c.theme, &msg))
		case types.RoleError:
			sb.WriteString(c.renderErrorMessage(msg.Content))
		}
	}

	return sb.String()
}

func (c *ChatComponent) boxWidth() int {
	// Account for padding and border
	return max(c.viewport.Width-4, 20)
}

// renderUserMessage renders a user message
func (c *ChatComponent) renderUserMessage(content string) string {
	header := c.theme.User.HeaderStyle.Render("You:")
	body := c.theme.User.BodyStyle.Render(content)

	box := c.theme.User.BoxStyle.Width(c.boxWidth()).Render(header + "\n" + body)
	return box + "\n"
}

// renderAssistantMessage renders an assistant message, as markdown once the
// turn is over
func (c *ChatComponent) renderAssistantMessage(idx int, msg *types.Message) string {
	header := c.theme.Assistant.HeaderStyle.Render("Assistant:")

	var body string
	if msg.Final {
		body = c.renderMarkdown(idx, msg.Content)
	} else {
		body = c.theme.Assistant.BodyStyle.Render(msg.Content)
	}

	box := c.theme.Assistant.BoxStyle.Width(c.boxWidth()).Render(header + "\n" + body)
	return box + "\n"
}

func (c *ChatComponent) renderMarkdown(idx int, content string) string {
	if out, ok := c.rendered[idx]; ok {
		return out
	}

	if c.markdown == nil {
		return c.theme.Assistant.BodyStyle.Render(content)
	}

	out, err := c.markdown.Render(content)
	if err != nil {
		slog.Warn("[tui] failed to render markdown", "error", err)
		return c.theme.Assistant.BodyStyle.Render(content)
	}

	out = strings.Trim(out, "\n")
	c.rendered[idx] = out
	return out
}

// renderThinkingMessage renders a thinking message
func (c *ChatComponent) renderThinkingMessage(content string) string {
	header := c.theme.Thinking.HeaderStyle.Render("Thinking:")
	body := c.theme.Thinking.BodyStyle.Render(content)
	return header + "\n" + body + "\n"
}

func (c *ChatComponent) renderErrorMessage(content string) string {
	header := c.theme.Error.HeaderStyle.Render("Error:")
	body := c.theme.Error.BodyStyle.Render(content)
	return c.theme.Error.BoxStyle.Render(header+" "+body) + "\n"
}
