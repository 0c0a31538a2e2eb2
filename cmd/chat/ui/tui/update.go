package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/handlers"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
	"github.com/ryanreadbooks/tokkistream/keymap"
	"github.com/ryanreadbooks/tokkistream/pkg/process"
	"github.com/ryanreadbooks/tokkistream/pkg/safe"
	"github.com/ryanreadbooks/tokkistream/stream"
)

const quitWhileStreaming = "A reply is still streaming. Quit anyway?"

// Update handles all model updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle specific messages first
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		// Shortcuts and enter first, everything else goes to the focused
		// component
		newModel, cmd, handled := m.handleKeyPress(msg)
		if handled {
			return newModel, cmd
		}
		if newModel.input.Focused() {
			return newModel, newModel.input.Update(msg)
		}
		return newModel, newModel.chat.Update(msg)

	case tea.MouseMsg:
		// Pass mouse events to chat for scrolling
		return m, m.chat.Update(msg)

	case StreamEventMsg:
		return m.handleStreamEvent(msg), nil

	case TurnEndMsg:
		return m.handleTurnEnd(msg), nil
	}

	// For other messages (like blink and spinner ticks)
	return m, tea.Batch(m.input.Update(msg), m.status.Update(msg))
}

// handleWindowSize handles window resize events
func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	return m
}

func (m Model) layout() {
	m.input.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.help.SetWidth(m.width)
	m.confirm.SetWidth(m.width)

	// input, status line and help footer
	reservedHeight := inputHeight + 1 + lineCount(m.help.View()) + 2
	m.chat.SetSize(m.width, max(m.height-reservedHeight, 5))
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// Handle quit confirmation if visible
	if m.confirm.IsVisible() {
		switch msg.Type {
		case tea.KeyEnter:
			m.confirm.Hide()
			m.stopTurn()
			return m, tea.Quit, true
		case tea.KeyEsc, tea.KeyCtrlC:
			m.confirm.Hide()
		}
		// Ignore other keys during confirmation
		return m, nil, true
	}

	if s, ok := m.keys.Dispatch(keymap.FromTea(msg), m.focus()); ok {
		slog.Debug("[tui] shortcut", "action", s.Name)
		model, cmd := m.runAction(s.Name)
		return model, cmd, true
	}

	if msg.Type == tea.KeyEnter && m.input.Focused() {
		model, cmd := m.submit()
		return model, cmd, true
	}

	return m, nil, false
}

func (m Model) runAction(action string) (Model, tea.Cmd) {
	switch action {
	case ActionQuit:
		if m.streaming() {
			m.confirm.Show(quitWhileStreaming)
			return m, nil
		}
		return m, tea.Quit

	case ActionStop:
		if m.streaming() {
			m.stopTurn()
			m.status.SetNotice("stopping...")
		}

	case ActionNew:
		id, err := m.handler.NewConversation()
		if err != nil {
			m.status.SetNotice(err.Error())
			return m, nil
		}
		m.chat.LoadMessages(nil)
		m.status.SetConversation(id)
		m.status.SetNotice("new conversation")

	case ActionNextFile:
		if f, ok := m.handler.NextFile(); ok {
			m.status.SetNotice("active file " + f.Path)
		}
		m.refreshFiles()

	case ActionFocus:
		if m.input.Focused() {
			m.input.Blur()
			return m, nil
		}
		return m, m.input.Focus()

	case ActionHelp:
		m.help.Toggle()
		m.layout()
	}

	return m, nil
}

func (m Model) stopTurn() {
	if m.turn != nil {
		m.turn.Cancel()
	}
}

// submit sends the input as a message or runs it as a slash command
func (m Model) submit() (Model, tea.Cmd) {
	userInput := m.input.Value()
	if userInput == "" {
		return m, nil
	}

	if handlers.IsCommand(userInput) {
		m.input.Remember(userInput)
		m.input.Reset()
		return m.runCommand(userInput), nil
	}

	if m.streaming() {
		m.status.SetNotice(chat.ErrTurnInProgress.Error())
		return m, nil
	}

	// Add user message
	m.chat.AddMessage(types.Message{
		Role:      types.RoleUser,
		Content:   userInput,
		Timestamp: time.Now(),
	})

	m.input.Remember(userInput)
	turn, err := m.handler.SendMessage(m.ctx, userInput)
	if err != nil {
		slog.Warn("[tui] failed to send message", "error", err)
		m.chat.AddError(err.Error())
		m.input.Reset()
		return m, nil
	}

	// Add assistant placeholder
	m.chat.AddMessage(types.Message{
		Role:      types.RoleAssistant,
		Timestamp: time.Now(),
	})

	m.turnSeq++
	m.turn = turn
	m.status.SetStreaming(true)
	m.status.SetNotice("")
	m.consume(m.turnSeq, turn)

	// Reset input (this will refocus automatically)
	m.input.Reset()

	return m, m.input.Init()
}

// consume forwards the events of turn to the program. The root wait group
// keeps the process alive until the turn has been saved.
func (m Model) consume(seq int, turn *chat.Turn) {
	program := m.program
	wg := process.GetRootWaitGroup(m.ctx)
	if wg != nil {
		wg.Add(1)
	}

	safe.Go(func() {
		if wg != nil {
			defer wg.Done()
		}
		for ev := range turn.Events {
			program.Send(StreamEventMsg{Turn: seq, Event: ev})
		}
		program.Send(TurnEndMsg{Turn: seq, Result: turn.Wait()})
	})
}

func (m Model) runCommand(input string) Model {
	res, err := m.handler.RunCommand(input)
	if err != nil {
		if errors.Is(err, chat.ErrTurnInProgress) {
			m.status.SetNotice(err.Error())
		} else {
			m.chat.AddError(err.Error())
		}
		return m
	}

	if res.Reset {
		history, err := m.handler.LoadHistory()
		if err != nil {
			slog.Warn("[tui] failed to load history", "error", err)
		}
		m.chat.LoadMessages(history)
		m.status.SetConversation(m.handler.ConversationID())
	}

	m.status.SetNotice(res.Notice)
	m.refreshFiles()
	return m
}

// handleStreamEvent applies one decoded event to the chat
func (m Model) handleStreamEvent(msg StreamEventMsg) Model {
	if msg.Turn != m.turnSeq {
		// late event of an old turn
		return m
	}

	ev := msg.Event
	switch ev.Type {
	case stream.EventThinking:
		m.chat.AppendDelta("", ev.Text)
	case stream.EventContent:
		m.chat.AppendDelta(ev.Text, "")
	case stream.EventToolCall:
		m.chat.AddToolCall(ev.ToolName, ev.Arguments)
	case stream.EventToolResult:
		m.chat.ResolveToolCall(ev.ToolName, types.FormatToolResult(ev.Result, 100), ev.Success, ev.Error)
	case stream.EventError:
		// recoverable ones are shown inline and the stream goes on
		m.chat.AddError(ev.Message())
	}

	return m
}

// handleTurnEnd finalizes the turn
func (m Model) handleTurnEnd(msg TurnEndMsg) Model {
	if msg.Turn != m.turnSeq {
		return m
	}

	m.turn = nil
	m.chat.FinalizeTurn()
	m.status.SetStreaming(false)

	switch msg.Result.Outcome {
	case chat.OutcomeCancelled:
		m.status.SetNotice("stopped")
	case chat.OutcomeCompleted:
		m.status.SetNotice(fmt.Sprintf("done in %s, ~%d tokens",
			msg.Result.Elapsed.Round(100*time.Millisecond), msg.Result.ReplyTokens))
	}

	return m
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
