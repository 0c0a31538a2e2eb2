package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ryanreadbooks/tokkistream/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/handlers"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/components"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
	"github.com/ryanreadbooks/tokkistream/keymap"
)

const (
	inputHeight = 2
)

// Model is the main TUI model
type Model struct {
	// Context and dependencies
	ctx     context.Context
	handler *handlers.SessionHandler
	theme   *styles.Theme
	program *tea.Program
	keys    *keymap.Map

	// Components
	chat    *components.ChatComponent
	input   *components.InputComponent
	status  *components.StatusComponent
	help    *components.HelpComponent
	confirm *components.ConfirmDialog

	// State
	width  int
	height int
	// the streaming turn, nil when idle
	turn    *chat.Turn
	turnSeq int
}

// New creates a new TUI model
func New(
	ctx context.Context,
	handler *handlers.SessionHandler,
	keys *keymap.Map,
	initMessages []types.Message,
) Model {
	theme := styles.DefaultTheme()

	// Create components
	chatView := components.NewChatComponent(theme)
	chatView.LoadMessages(initMessages)

	status := components.NewStatusComponent(theme)
	status.SetConversation(handler.ConversationID())

	m := Model{
		ctx:     ctx,
		handler: handler,
		theme:   theme,
		keys:    keys,
		chat:    chatView,
		input:   components.NewInputComponent(inputHeight),
		status:  status,
		help:    components.NewHelpComponent(keys),
		confirm: components.NewConfirmDialog(theme),
		width:   80,
		height:  24,
	}
	m.refreshFiles()

	return m
}

// SetProgram sets the tea program reference
func (m *Model) SetProgram(program *tea.Program) {
	m.program = program
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.status.Init(),
	)
}

func (m Model) focus() keymap.Focus {
	if m.input.Focused() {
		return keymap.FocusTextInput
	}
	return keymap.FocusNone
}

func (m Model) streaming() bool {
	return m.turn != nil
}

func (m Model) refreshFiles() {
	files := m.handler.Files()
	active, _ := files.Active()
	m.status.SetFiles(files.Len(), active.Path)
}
