package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui/styles"
)

const shortIdLen = 8

// StatusComponent is the line under the input: streaming indicator, open
// files, conversation id and the last notice.
type StatusComponent struct {
	spinner spinner.Model
	theme   *styles.Theme
	width   int

	streaming      bool
	conversationID string
	files          int
	activeFile     string
	notice         string
}

// NewStatusComponent creates a new status component
func NewStatusComponent(theme *styles.Theme) *StatusComponent {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.ColorSpinner)

	return &StatusComponent{
		spinner: sp,
		theme:   theme,
		width:   80,
	}
}

// Init initializes the component
func (c *StatusComponent) Init() tea.Cmd {
	return c.spinner.Tick
}

// Update handles component updates
func (c *StatusComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return cmd
}

// View renders the component
func (c *StatusComponent) View() string {
	var parts []string

	if c.streaming {
		parts = append(parts, c.spinner.View()+c.theme.Status.StreamingStyle.Render("streaming (esc to stop)"))
	}

	if c.files > 0 {
		parts = append(parts, c.theme.Status.TextStyle.Render(
			fmt.Sprintf("files: %d [%s]", c.files, filepath.Base(c.activeFile))))
	}

	if c.conversationID != "" {
		id := c.conversationID
		if len(id) > shortIdLen {
			id = id[:shortIdLen]
		}
		parts = append(parts, c.theme.Status.TextStyle.Render("conv "+id))
	}

	if c.notice != "" {
		parts = append(parts, c.theme.Status.NoticeStyle.Render(c.notice))
	}

	return c.theme.Status.TextStyle.MaxWidth(c.width).Render(strings.Join(parts, "  ·  "))
}

func (c *StatusComponent) SetStreaming(streaming bool) {
	c.streaming = streaming
}

func (c *StatusComponent) Streaming() bool {
	return c.streaming
}

func (c *StatusComponent) SetConversation(id string) {
	c.conversationID = id
}

func (c *StatusComponent) SetFiles(count int, active string) {
	c.files = count
	c.activeFile = active
}

func (c *StatusComponent) SetNotice(notice string) {
	c.notice = notice
}

// SetWidth sets the component width
func (c *StatusComponent) SetWidth(width int) {
	c.width = width
}
