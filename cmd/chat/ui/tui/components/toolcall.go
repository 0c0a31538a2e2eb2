package components

import (
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/types"
)

const badgeArgsLen = 100

// renderToolBadge renders a tool call as a one or two line badge, no box
func renderToolBadge(theme *styles.Theme, msg *types.Message) string {
	var state string
	switch msg.ToolStatus {
	case types.ToolPending:
		state = theme.ToolCall.ArgsStyle.Render("⟳ running")
	case types.ToolSucceeded:
		state = theme.ToolCall.SucceededStyle.Render("✓ done")
	case types.ToolFailed:
		state = theme.ToolCall.FailedStyle.Render("✗ failed")
	}

	header := theme.ToolCall.NameStyle.Render("🔧 "+msg.ToolName) + " " + state
	body := theme.ToolCall.ArgsStyle.Render(types.FormatToolCallArgs(msg.ToolArguments, badgeArgsLen))

	switch {
	case msg.ToolStatus == types.ToolFailed && msg.ToolError != "":
		body += "\n" + theme.ToolCall.FailedStyle.Render("  "+msg.ToolError)
	case msg.ToolResult != "":
		body += "\n" + theme.ToolCall.ArgsStyle.Render("  → "+msg.ToolResult)
	}

	return header + "\n" + body + "\n"
}
