// Package keymap matches key presses against an ordered list of shortcuts.
//
// Ctrl and Meta are interchangeable so the same shortcut works with Ctrl on
// Linux/Windows and Cmd on macOS. While a text input has focus only Escape and
// Ctrl/Meta shortcuts fire, plain keys are left to the input.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

const KeyEscape = "esc"

// Flag is a modifier requirement. The zero value means don't care.
type Flag int8

const (
	Any Flag = iota
	On
	Off
)

func (f Flag) accepts(held bool) bool {
	switch f {
	case On:
		return held
	case Off:
		return !held
	}
	return true
}

type Focus int

const (
	FocusNone Focus = iota
	FocusTextInput
)

// KeyEvent is one physical key press.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

type Shortcut struct {
	// action name, used for config overrides
	Name string
	Help string

	Key   string
	Ctrl  Flag
	Shift Flag
	Alt   Flag
	Meta  Flag

	Handler func()
}

// requiresCommand reports whether the shortcut needs Ctrl or Meta held.
func (s *Shortcut) requiresCommand() bool {
	return s.commandFlag() == On
}

// commandFlag merges Ctrl and Meta into one requirement, On winning over Off.
// Ctrl On with Meta Off therefore means either key, not neither.
func (s *Shortcut) commandFlag() Flag {
	switch {
	case s.Ctrl == On || s.Meta == On:
		return On
	case s.Ctrl == Off || s.Meta == Off:
		return Off
	}
	return Any
}

// Matches compares the key case-insensitively and checks every modifier flag
// that is set.
func Matches(s *Shortcut, ev KeyEvent) bool {
	if !strings.EqualFold(normalizeKey(s.Key), normalizeKey(ev.Key)) {
		return false
	}

	return s.commandFlag().accepts(ev.Ctrl || ev.Meta) &&
		s.Shift.accepts(ev.Shift) &&
		s.Alt.accepts(ev.Alt)
}

// Allowed applies the focus policy. It holds no state.
func Allowed(s *Shortcut, ev KeyEvent, focus Focus) bool {
	if focus != FocusTextInput {
		return true
	}

	return normalizeKey(ev.Key) == KeyEscape || s.requiresCommand()
}

// Map is an ordered list of shortcuts, earlier entries win.
type Map struct {
	shortcuts []Shortcut
}

func New(shortcuts ...Shortcut) *Map {
	return &Map{shortcuts: shortcuts}
}

func (m *Map) Add(s Shortcut) {
	m.shortcuts = append(m.shortcuts, s)
}

func (m *Map) Shortcuts() []Shortcut {
	return m.shortcuts
}

// Find returns the first shortcut that matches ev and may fire under focus.
func (m *Map) Find(ev KeyEvent, focus Focus) (*Shortcut, bool) {
	for i := range m.shortcuts {
		s := &m.shortcuts[i]
		if Matches(s, ev) && Allowed(s, ev, focus) {
			return s, true
		}
	}
	return nil, false
}

// Dispatch runs the handler of the first allowed match, once.
func (m *Map) Dispatch(ev KeyEvent, focus Focus) (Shortcut, bool) {
	s, ok := m.Find(ev, focus)
	if !ok {
		return Shortcut{}, false
	}

	if s.Handler != nil {
		s.Handler()
	}
	return *s, true
}

// Rebind replaces the key and modifiers of the named shortcut, keeping its
// handler and position.
func (m *Map) Rebind(name, binding string) error {
	parsed, err := Parse(binding)
	if err != nil {
		return err
	}

	for i := range m.shortcuts {
		s := &m.shortcuts[i]
		if s.Name != name {
			continue
		}
		s.Key, s.Ctrl, s.Shift, s.Alt, s.Meta = parsed.Key, parsed.Ctrl, parsed.Shift, parsed.Alt, parsed.Meta
		return nil
	}

	return ErrUnknownAction
}

// Binding renders the shortcut for bubbles/help.
func (s *Shortcut) Binding() key.Binding {
	keyStr := s.String()
	return key.NewBinding(
		key.WithKeys(keyStr),
		key.WithHelp(keyStr, s.Help),
	)
}

func (m *Map) ShortHelp() []key.Binding {
	bindings := make([]key.Binding, 0, len(m.shortcuts))
	for i := range m.shortcuts {
		if m.shortcuts[i].Help == "" {
			continue
		}
		bindings = append(bindings, m.shortcuts[i].Binding())
	}
	return bindings
}

func (m *Map) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}
