package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions
var (
	ColorUserPrimary       = lipgloss.Color("#937dd8")
	ColorAssistantPrimary  = lipgloss.Color("#0f8b56")
	ColorAssistantThinking = lipgloss.Color("#5e5e5e") // neutral gray
	ColorToolCall          = lipgloss.Color("#6b7b8c") // blue-gray
	ColorToolCallArgs      = lipgloss.Color("#5e6e7e")
	ColorToolSucceeded     = lipgloss.Color("#2ECC71")
	ColorToolFailed        = lipgloss.Color("#e67e22")
	ColorError             = lipgloss.Color("#ff6b6b")
	ColorStatus            = lipgloss.Color("#808080")
	ColorStreaming         = lipgloss.Color("#e6ca3d")
	ColorSpinner           = lipgloss.Color("#2ECC71")
)
