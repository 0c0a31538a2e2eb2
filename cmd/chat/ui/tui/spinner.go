package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/handlers"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/tokkistream/keymap"
	"github.com/ryanreadbooks/tokkistream/stream"
)

// SpinnerModel is a simple model showing a spinner while the reply streams
type SpinnerModel struct {
	spinner spinner.Model
	keys    *keymap.Map
	turn    *chat.Turn

	// what the backend is doing right now
	activity string
	done     bool
	result   chat.Result
}

// resultMsg carries the finished turn
type resultMsg chat.Result

// NewSpinnerModel creates a new spinner model
func NewSpinnerModel(turn *chat.Turn, keys *keymap.Map) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorSpinner)

	return SpinnerModel{
		spinner:  s,
		keys:     keys,
		turn:     turn,
		activity: "Waiting for reply...",
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		s, ok := m.keys.Dispatch(keymap.FromTea(msg), keymap.FocusNone)
		if ok && (s.Name == ActionQuit || s.Name == ActionStop) {
			m.turn.Cancel()
		}
		return m, nil

	case StreamEventMsg:
		switch msg.Event.Type {
		case stream.EventThinking:
			m.activity = "Thinking..."
		case stream.EventContent:
			m.activity = "Writing..."
		case stream.EventToolCall:
			m.activity = "Calling " + msg.Event.ToolName + "..."
		}
		return m, nil

	case resultMsg:
		m.done = true
		m.result = chat.Result(msg)
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.activity)
}

// RunWithSpinner sends one message and prints the final answer
func RunWithSpinner(ctx context.Context, handler *handlers.SessionHandler, keys *keymap.Map, message string) error {
	turn, err := handler.SendMessage(ctx, message)
	if err != nil {
		return err
	}

	model := NewSpinnerModel(turn, keys)
	program := tea.NewProgram(model)

	// Consume the stream in background
	go func() {
		for ev := range turn.Events {
			program.Send(StreamEventMsg{Event: ev})
		}
		program.Send(resultMsg(turn.Wait()))
	}()

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(SpinnerModel)
	if !ok {
		return nil
	}

	switch m.result.Outcome {
	case chat.OutcomeCancelled:
		return errors.New("cancelled")
	case chat.OutcomeFailed:
		return fmt.Errorf("reply failed: %s", m.result.Error)
	}

	fmt.Println(renderFinal(m.result.Message.Content))
	return nil
}

// renderFinal renders markdown for the terminal, falling back to the raw text
func renderFinal(content string) string {
	out, err := glamour.Render(content, "dark")
	if err != nil {
		return content
	}
	return out
}
