package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/ryanreadbooks/tokkistream/keymap"
)

// HelpComponent renders the shortcut footer
type HelpComponent struct {
	help help.Model
	keys *keymap.Map
}

func NewHelpComponent(keys *keymap.Map) *HelpComponent {
	return &HelpComponent{
		help: help.New(),
		keys: keys,
	}
}

func (c *HelpComponent) View() string {
	return c.help.View(c.keys)
}

// Toggle switches between the one line and the full help
func (c *HelpComponent) Toggle() {
	c.help.ShowAll = !c.help.ShowAll
}

func (c *HelpComponent) SetWidth(width int) {
	c.help.Width = width
}

func (c *HelpComponent) ShowingAll() bool {
	return c.help.ShowAll
}
