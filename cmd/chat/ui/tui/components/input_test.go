package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(c *InputComponent, text string) {
	for _, r := range text {
		c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInputHistory(t *testing.T) {
	c := NewInputComponent(2)
	c.SetWidth(80)

	for _, sent := range []string{"first", "second", "second"} {
		c.Remember(sent)
	}
	c.Reset()

	typeText(c, "draft")

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	c.Update(up)
	if got := c.Value(); got != "second" {
		t.Fatalf("first up = %q", got)
	}
	c.Update(up)
	if got := c.Value(); got != "first" {
		t.Fatalf("second up = %q", got)
	}
	// repeats were stored once, so this is the oldest
	c.Update(up)
	if got := c.Value(); got != "first" {
		t.Fatalf("past the oldest = %q", got)
	}

	c.Update(down)
	c.Update(down)
	if got := c.Value(); got != "draft" {
		t.Errorf("back to draft = %q", got)
	}
}

func TestInputHistoryBlurred(t *testing.T) {
	c := NewInputComponent(2)
	c.Remember("hello")
	c.Reset()
	c.Blur()

	c.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := c.Value(); got != "" {
		t.Errorf("blurred input recalled %q", got)
	}
}
