package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	ErrInvalidShortcut = errors.New("invalid shortcut")
	ErrUnknownAction   = errors.New("unknown shortcut action")
)

var keyAliases = map[string]string{
	"escape":   KeyEscape,
	"return":   "enter",
	"del":      "delete",
	"pageup":   "pgup",
	"pagedown": "pgdown",
}

func normalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	lower := strings.ToLower(k)
	if alias, ok := keyAliases[lower]; ok {
		return alias
	}
	return lower
}

// Parse reads a shortcut such as "ctrl+shift+k", "cmd+s", "esc" or "?".
// Modifiers that are named are required, absent ones are don't care.
// "ctrl", "cmd", "meta" and "super" all mean the command modifier.
func Parse(binding string) (Shortcut, error) {
	binding = strings.TrimSpace(binding)
	if binding == "" {
		return Shortcut{}, fmt.Errorf("%w: empty", ErrInvalidShortcut)
	}

	var keyPart, mods string
	switch {
	case binding == "+":
		keyPart = "+"
	case strings.HasSuffix(binding, "++"):
		// "ctrl++" binds the plus key
		keyPart, mods = "+", binding[:len(binding)-2]
	default:
		if i := strings.LastIndex(binding, "+"); i >= 0 {
			keyPart, mods = binding[i+1:], binding[:i]
		} else {
			keyPart = binding
		}
	}

	if keyPart == "" {
		return Shortcut{}, fmt.Errorf("%w: %q has no key", ErrInvalidShortcut, binding)
	}

	var parts []string
	if mods != "" {
		parts = strings.Split(mods, "+")
	}

	s := Shortcut{Key: normalizeKey(keyPart)}
	for _, mod := range parts {
		switch strings.ToLower(strings.TrimSpace(mod)) {
		case "ctrl", "control":
			s.Ctrl = On
		case "cmd", "meta", "super":
			s.Meta = On
		case "shift":
			s.Shift = On
		case "alt", "option", "opt":
			s.Alt = On
		default:
			return Shortcut{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidShortcut, mod, binding)
		}
	}

	return s, nil
}

// String formats the shortcut the way Parse reads it.
func (s *Shortcut) String() string {
	var sb strings.Builder
	if s.requiresCommand() {
		sb.WriteString("ctrl+")
	}
	if s.Alt == On {
		sb.WriteString("alt+")
	}
	if s.Shift == On {
		sb.WriteString("shift+")
	}
	sb.WriteString(s.Key)
	return sb.String()
}

// FromTea converts a bubbletea key message. Terminals report no Meta key,
// Ctrl stands for both.
func FromTea(msg tea.KeyMsg) KeyEvent {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		r := msg.Runes[0]
		return KeyEvent{
			Key:   string(r),
			Alt:   msg.Alt,
			Shift: unicode.IsUpper(r),
		}
	}

	var ev KeyEvent
	name := msg.String()
	for {
		mod, rest, ok := strings.Cut(name, "+")
		// a lone "+" or a name ending in "+" is the plus key itself
		if !ok || rest == "" {
			break
		}
		switch mod {
		case "ctrl":
			ev.Ctrl = true
		case "alt":
			ev.Alt = true
		case "shift":
			ev.Shift = true
		default:
			ev.Key = name
			return ev
		}
		name = rest
	}

	if name == " " {
		name = "space"
	}
	if utf8.RuneCountInString(name) == 1 {
		ev.Shift = ev.Shift || unicode.IsUpper([]rune(name)[0])
	}
	ev.Key = name
	return ev
}
