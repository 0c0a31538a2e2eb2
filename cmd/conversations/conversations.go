package conversations

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var ConversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Inspect saved conversations.",
	Long:    "Inspect saved conversations.",
}

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.ConversationStore) error {
				return listConversations(cmd.OutOrStdout(), s)
			})
		},
	}

	showCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation as yaml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.ConversationStore) error {
				return showConversation(cmd.OutOrStdout(), s, args[0])
			})
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete conversations.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.ConversationStore) error {
				for _, id := range args {
					if err := s.Delete(id); err != nil {
						return fmt.Errorf("failed to delete %s: %w", id, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				}
				return nil
			})
		},
	}
)

func init() {
	ConversationsCmd.AddCommand(listCmd, showCmd, deleteCmd)
}

func withStore(fn func(s *store.ConversationStore) error) error {
	s, err := store.OpenConversationStore(config.GetConversationsDir())
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func listConversations(w io.Writer, s *store.ConversationStore) error {
	convs := s.List()
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tTITLE")
	for _, c := range convs {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Id, time.Unix(c.Updated, 0).Format(time.DateTime), title)
	}

	return tw.Flush()
}

// shownMessage is the yaml shape of a stored message
type shownMessage struct {
	Role      string      `yaml:"role"`
	Created   string      `yaml:"created"`
	Thinking  string      `yaml:"thinking,omitempty"`
	Content   string      `yaml:"content,omitempty"`
	ToolCalls []shownTool `yaml:"tool_calls,omitempty"`
}

type shownTool struct {
	Name      string `yaml:"name"`
	Arguments string `yaml:"arguments,omitempty"`
	Result    string `yaml:"result,omitempty"`
	Success   bool   `yaml:"success"`
	Error     string `yaml:"error,omitempty"`
}

type shownConversation struct {
	Id       string         `yaml:"id"`
	Title    string         `yaml:"title"`
	Created  string         `yaml:"created"`
	Messages []shownMessage `yaml:"messages"`
}

func showConversation(w io.Writer, s *store.ConversationStore, id string) error {
	conv, err := s.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", id, err)
	}

	out := shownConversation{
		Id:      conv.Id,
		Title:   conv.Title,
		Created: time.Unix(conv.Created, 0).Format(time.DateTime),
	}
	for _, m := range conv.Messages {
		shown := shownMessage{
			Role:     string(m.Role),
			Created:  time.Unix(m.Created, 0).Format(time.DateTime),
			Thinking: m.Thinking,
			Content:  strings.TrimSpace(m.Content),
		}
		for _, tc := range m.ToolCalls {
			shown.ToolCalls = append(shown.ToolCalls, shownTool{
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
				Result:    string(tc.Result),
				Success:   tc.Success,
				Error:     tc.Error,
			})
		}
		out.Messages = append(out.Messages, shown)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	return enc.Close()
}
