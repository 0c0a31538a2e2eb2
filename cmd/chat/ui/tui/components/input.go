package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxInputHistory = 100

// InputComponent is the message textarea. Up on the first line and down on
// the last line walk through the messages sent before.
type InputComponent struct {
	textarea textarea.Model
	height   int

	history []string
	// position in history while recalling, len(history) when editing a draft
	cursor int
	draft  string
}

func NewInputComponent(height int) *InputComponent {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or /open a file"
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(height)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	// enter submits
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &InputComponent{
		textarea: ta,
		height:   height,
	}
}

func (c *InputComponent) Init() tea.Cmd {
	return textarea.Blink
}

func (c *InputComponent) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && c.textarea.Focused() {
		switch {
		case key.Type == tea.KeyUp && c.textarea.Line() == 0:
			if c.recall(-1) {
				return nil
			}
		case key.Type == tea.KeyDown && c.textarea.Line() == c.textarea.LineCount()-1:
			if c.recall(1) {
				return nil
			}
		}
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

// recall moves through the history by delta and reports whether it moved.
func (c *InputComponent) recall(delta int) bool {
	next := c.cursor + delta
	if next < 0 || next > len(c.history) {
		return false
	}

	if c.cursor == len(c.history) {
		c.draft = c.textarea.Value()
	}
	c.cursor = next

	if next == len(c.history) {
		c.textarea.SetValue(c.draft)
	} else {
		c.textarea.SetValue(c.history[next])
	}
	return true
}

// Remember appends a sent message to the history. Repeats are kept once.
func (c *InputComponent) Remember(text string) {
	if text == "" {
		return
	}
	if n := len(c.history); n == 0 || c.history[n-1] != text {
		c.history = append(c.history, text)
		if len(c.history) > maxInputHistory {
			c.history = c.history[len(c.history)-maxInputHistory:]
		}
	}
	c.cursor = len(c.history)
	c.draft = ""
}

func (c *InputComponent) View() string {
	return c.textarea.View()
}

// Value returns the trimmed input
func (c *InputComponent) Value() string {
	return strings.TrimSpace(c.textarea.Value())
}

// Reset clears the input and refocuses
func (c *InputComponent) Reset() {
	c.textarea.Reset()
	c.textarea.Focus()
	c.cursor = len(c.history)
}

func (c *InputComponent) SetWidth(width int) {
	c.textarea.SetWidth(width)
}

func (c *InputComponent) Focus() tea.Cmd {
	return c.textarea.Focus()
}

func (c *InputComponent) Blur() {
	c.textarea.Blur()
}

func (c *InputComponent) Focused() bool {
	return c.textarea.Focused()
}
