package tui

import (
	"log/slog"

	"github.com/ryanreadbooks/tokkistream/keymap"
)

// Shortcut actions, also the names used in the keys section of the config
const (
	ActionQuit     = "quit"
	ActionStop     = "stop"
	ActionNew      = "new"
	ActionNextFile = "next_file"
	ActionFocus    = "focus"
	ActionHelp     = "help"
)

// DefaultKeys returns the default shortcuts in priority order.
func DefaultKeys() *keymap.Map {
	return keymap.New(
		keymap.Shortcut{Name: ActionQuit, Help: "quit", Key: "c", Ctrl: keymap.On},
		keymap.Shortcut{Name: ActionStop, Help: "stop", Key: keymap.KeyEscape},
		keymap.Shortcut{Name: ActionNew, Help: "new chat", Key: "n", Ctrl: keymap.On},
		keymap.Shortcut{Name: ActionNextFile, Help: "next file", Key: "o", Ctrl: keymap.On},
		keymap.Shortcut{Name: ActionFocus, Help: "focus", Key: "t", Ctrl: keymap.On},
		// plain key, only fires while the history has focus
		keymap.Shortcut{Name: ActionHelp, Help: "help", Key: "?"},
	)
}

// LoadKeys applies config overrides on top of the defaults. Bad entries are
// logged and skipped.
func LoadKeys(overrides map[string]string) *keymap.Map {
	keys := DefaultKeys()
	for action, binding := range overrides {
		if err := keys.Rebind(action, binding); err != nil {
			slog.Warn("[tui] ignoring key override", "action", action, "key", binding, "error", err)
		}
	}
	return keys
}
