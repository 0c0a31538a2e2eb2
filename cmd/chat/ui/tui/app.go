package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/handlers"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
	"github.com/ryanreadbooks/tokkistream/keymap"
)

// Run starts the TUI application
func Run(
	ctx context.Context,
	handler *handlers.SessionHandler,
	keys *keymap.Map,
) error {
	// Load history
	history, err := handler.LoadHistory()
	if err != nil {
		slog.Warn("[tui] failed to load history", "error", err)
		history = []types.Message{}
	}

	// Create model
	model := New(ctx, handler, keys, history)

	// Create program
	program := tea.NewProgram(&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Set program reference for callbacks
	model.SetProgram(program)

	// Run
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
