package keymap

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func mustParse(t *testing.T, binding string) Shortcut {
	t.Helper()
	s, err := Parse(binding)
	if err != nil {
		t.Fatalf("parse %q: %v", binding, err)
	}
	return s
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name    string
		binding string
		ev      KeyEvent
		want    bool
	}{
		{"case insensitive key", "k", KeyEvent{Key: "K"}, true},
		{"unset modifiers are don't care", "k", KeyEvent{Key: "k", Ctrl: true, Alt: true}, true},
		{"ctrl satisfied by ctrl", "ctrl+s", KeyEvent{Key: "s", Ctrl: true}, true},
		{"ctrl satisfied by meta", "ctrl+s", KeyEvent{Key: "s", Meta: true}, true},
		{"meta satisfied by ctrl", "cmd+s", KeyEvent{Key: "s", Ctrl: true}, true},
		{"ctrl required", "ctrl+s", KeyEvent{Key: "s"}, false},
		{"shift required", "shift+tab", KeyEvent{Key: "tab"}, false},
		{"shift held", "shift+tab", KeyEvent{Key: "tab", Shift: true}, true},
		{"alt required", "alt+enter", KeyEvent{Key: "enter", Shift: true}, false},
		{"different key", "ctrl+s", KeyEvent{Key: "d", Ctrl: true}, false},
		{"escape alias", "escape", KeyEvent{Key: "esc"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := mustParse(t, c.binding)
			if got := Matches(&s, c.ev); got != c.want {
				t.Errorf("Matches(%q, %+v) = %v, want %v", c.binding, c.ev, got, c.want)
			}
		})
	}
}

func TestOffFlag(t *testing.T) {
	s := Shortcut{Key: "n", Ctrl: Off}
	if Matches(&s, KeyEvent{Key: "n", Meta: true}) {
		t.Errorf("meta should count as ctrl for an Off flag")
	}
	if !Matches(&s, KeyEvent{Key: "n"}) {
		t.Errorf("plain key should match")
	}
}

func TestCommandFlagsCombine(t *testing.T) {
	// On wins, so the command modifier is required and either key gives it
	s := Shortcut{Key: "s", Ctrl: On, Meta: Off}
	for _, ev := range []KeyEvent{{Key: "s", Ctrl: true}, {Key: "s", Meta: true}} {
		if !Matches(&s, ev) {
			t.Errorf("Matches(%+v) = false", ev)
		}
	}
	if Matches(&s, KeyEvent{Key: "s"}) {
		t.Errorf("plain key should not match")
	}
	if !s.requiresCommand() {
		t.Errorf("shortcut should require the command modifier")
	}
}

func TestTextInputSuppression(t *testing.T) {
	var fired []string
	record := func(name string) func() {
		return func() { fired = append(fired, name) }
	}

	m := New(
		Shortcut{Name: "help", Key: "?", Handler: record("help")},
		Shortcut{Name: "save", Key: "s", Ctrl: On, Handler: record("save")},
		Shortcut{Name: "stop", Key: KeyEscape, Handler: record("stop")},
	)

	if _, ok := m.Dispatch(KeyEvent{Key: "?"}, FocusTextInput); ok {
		t.Errorf("plain shortcut fired while typing")
	}
	if _, ok := m.Dispatch(KeyEvent{Key: "?"}, FocusNone); !ok {
		t.Errorf("plain shortcut blocked outside input")
	}
	if _, ok := m.Dispatch(KeyEvent{Key: "s", Meta: true}, FocusTextInput); !ok {
		t.Errorf("command shortcut blocked while typing")
	}
	if _, ok := m.Dispatch(KeyEvent{Key: "esc"}, FocusTextInput); !ok {
		t.Errorf("escape blocked while typing")
	}

	want := []string{"help", "save", "stop"}
	if len(fired) != len(want) {
		t.Fatalf("fired %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired %v, want %v", fired, want)
		}
	}
}

func TestFirstMatchWins(t *testing.T) {
	var first, second int
	m := New(
		Shortcut{Name: "first", Key: "k", Ctrl: On, Handler: func() { first++ }},
		Shortcut{Name: "second", Key: "k", Handler: func() { second++ }},
	)

	s, ok := m.Dispatch(KeyEvent{Key: "k", Ctrl: true}, FocusNone)
	if !ok || s.Name != "first" {
		t.Fatalf("dispatched %+v %v", s, ok)
	}
	if first != 1 || second != 0 {
		t.Fatalf("handlers ran first=%d second=%d", first, second)
	}

	// inside the input the ctrl shortcut still wins, the plain one never fires
	m.Dispatch(KeyEvent{Key: "k"}, FocusTextInput)
	if second != 0 {
		t.Fatalf("plain shortcut fired while typing")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		binding string
		want    Shortcut
	}{
		{"ctrl+shift+K", Shortcut{Key: "k", Ctrl: On, Shift: On}},
		{"cmd+s", Shortcut{Key: "s", Meta: On}},
		{"alt+Enter", Shortcut{Key: "enter", Alt: On}},
		{"Escape", Shortcut{Key: "esc"}},
		{"?", Shortcut{Key: "?"}},
		{"ctrl++", Shortcut{Key: "+", Ctrl: On}},
		{"+", Shortcut{Key: "+"}},
	}

	for _, c := range cases {
		got := mustParse(t, c.binding)
		if got.Key != c.want.Key || got.Ctrl != c.want.Ctrl || got.Meta != c.want.Meta ||
			got.Shift != c.want.Shift || got.Alt != c.want.Alt {
			t.Errorf("Parse(%q) = %+v, want %+v", c.binding, got, c.want)
		}
	}

	for _, bad := range []string{"", "hyper+x", "ctrl+shift+"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidShortcut) {
			t.Errorf("Parse(%q) err = %v", bad, err)
		}
	}
}

func TestRebind(t *testing.T) {
	called := false
	m := New(Shortcut{Name: "stop", Key: KeyEscape, Help: "stop", Handler: func() { called = true }})

	if err := m.Rebind("stop", "ctrl+g"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if _, ok := m.Dispatch(KeyEvent{Key: "esc"}, FocusNone); ok {
		t.Errorf("old key still bound")
	}
	if _, ok := m.Dispatch(KeyEvent{Key: "g", Ctrl: true}, FocusNone); !ok || !called {
		t.Errorf("new key not bound")
	}

	if err := m.Rebind("nope", "x"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("rebind unknown action: %v", err)
	}

	help := m.ShortHelp()
	if len(help) != 1 || help[0].Help().Key != "ctrl+g" {
		t.Errorf("help bindings %+v", help)
	}
}

func TestFromTea(t *testing.T) {
	cases := []struct {
		msg  tea.KeyMsg
		want KeyEvent
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlC}, KeyEvent{Key: "c", Ctrl: true}},
		{tea.KeyMsg{Type: tea.KeyEsc}, KeyEvent{Key: "esc"}},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, KeyEvent{Key: "tab", Shift: true}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}, KeyEvent{Key: "?"}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'N'}}, KeyEvent{Key: "N", Shift: true}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, KeyEvent{Key: "x", Alt: true}},
		{tea.KeyMsg{Type: tea.KeySpace}, KeyEvent{Key: "space"}},
	}

	for _, c := range cases {
		if got := FromTea(c.msg); got != c.want {
			t.Errorf("FromTea(%q) = %+v, want %+v", c.msg.String(), got, c.want)
		}
	}
}
