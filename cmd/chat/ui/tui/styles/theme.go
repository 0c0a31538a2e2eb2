package styles

import "github.com/charmbracelet/lipgloss"

// MessageTheme defines styling for a message type
type MessageTheme struct {
	HeaderStyle lipgloss.Style
	BodyStyle   lipgloss.Style
	BoxStyle    lipgloss.Style
}

// ToolCallTheme defines styling for tool badges
type ToolCallTheme struct {
	NameStyle      lipgloss.Style
	ArgsStyle      lipgloss.Style
	SucceededStyle lipgloss.Style
	FailedStyle    lipgloss.Style
}

// StatusTheme defines styling for the status line
type StatusTheme struct {
	TextStyle      lipgloss.Style
	StreamingStyle lipgloss.Style
	NoticeStyle    lipgloss.Style
}

// ConfirmTheme defines styling for confirmation dialog
type ConfirmTheme struct {
	BoxStyle  lipgloss.Style
	TextStyle lipgloss.Style
}

// Theme contains all UI styling
type Theme struct {
	User      MessageTheme
	Assistant MessageTheme
	Thinking  MessageTheme
	Error     MessageTheme
	ToolCall  ToolCallTheme
	Status    StatusTheme
	Confirm   ConfirmTheme
}

// DefaultTheme returns the default theme
func DefaultTheme() *Theme {
	return &Theme{
		User: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorUserPrimary).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorUserPrimary).
				AlignHorizontal(lipgloss.Left),
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true, true, true, true).
				BorderForeground(ColorUserPrimary).
				Padding(0, 1).
				MarginBottom(1),
		},
		Assistant: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorAssistantPrimary).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorAssistantPrimary).
				AlignHorizontal(lipgloss.Left),
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true, true, true, true).
				BorderForeground(ColorAssistantPrimary).
				Padding(0, 1).
				MarginBottom(1),
		},
		Thinking: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorAssistantThinking),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorAssistantThinking).
				AlignHorizontal(lipgloss.Left),
			BoxStyle: lipgloss.NewStyle(),
		},
		Error: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorError),
			BoxStyle: lipgloss.NewStyle().
				MarginBottom(1),
		},
		ToolCall: ToolCallTheme{
			NameStyle: lipgloss.NewStyle().
				Foreground(ColorToolCall).
				Italic(true).
				Bold(true),
			ArgsStyle: lipgloss.NewStyle().
				Foreground(ColorToolCallArgs),
			SucceededStyle: lipgloss.NewStyle().
				Foreground(ColorToolSucceeded),
			FailedStyle: lipgloss.NewStyle().
				Foreground(ColorToolFailed),
		},
		Status: StatusTheme{
			TextStyle: lipgloss.NewStyle().
				Foreground(ColorStatus),
			StreamingStyle: lipgloss.NewStyle().
				Foreground(ColorStreaming).
				Bold(true),
			NoticeStyle: lipgloss.NewStyle().
				Foreground(ColorStatus).
				Italic(true),
		},
		Confirm: ConfirmTheme{
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorError).
				Padding(1, 2),
			TextStyle: lipgloss.NewStyle(),
		},
	}
}
