package components

import (
	"fmt"

	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
)

// ConfirmDialog displays a yes/no question
type ConfirmDialog struct {
	theme   *styles.Theme
	message string
	visible bool
	width   int
}

// NewConfirmDialog creates a new confirmation dialog
func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{
		theme: theme,
		width: 80,
	}
}

// View renders the component
func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	boxWidth := max(c.width-4, 40)
	confirmText := fmt.Sprintf("%s\n\n[Enter] Yes  [Esc] No", c.message)

	return c.theme.Confirm.BoxStyle.Width(boxWidth).Render(confirmText)
}

// Show displays the confirmation dialog
func (c *ConfirmDialog) Show(message string) {
	c.message = message
	c.visible = true
}

// Hide hides the confirmation dialog
func (c *ConfirmDialog) Hide() {
	c.visible = false
	c.message = ""
}

// IsVisible returns whether the dialog is visible
func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

// SetWidth sets the dialog width
func (c *ConfirmDialog) SetWidth(width int) {
	c.width = width
}
