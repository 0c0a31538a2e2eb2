package chat

import (
	"context"
	"fmt"

	"github.com/ryanreadbooks/tokkistream/cmd/chat/ui/tui"

	"github.com/spf13/cobra"
)

var (
	resumeConversationId string
	oneTimeQuestion      string
	openFiles            []string
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the backend in a terminal UI.",
	Long:  "Chat with the backend in a terminal UI. Replies stream in live and finished turns are saved locally.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if oneTimeQuestion != "" {
			return runChatOnce(cmd.Context(), oneTimeQuestion)
		}

		return runChat(cmd.Context())
	},
}

func init() {
	ChatCmd.Flags().StringVar(&resumeConversationId, "resume", "", "To resume an existing conversation, provide the conversation id.")
	ChatCmd.Flags().StringVar(&oneTimeQuestion, "message", "", "To ask a one-time question, provide the message.")
	ChatCmd.Flags().StringArrayVar(&openFiles, "file", nil, "Open a file and attach it to every message. Repeatable.")
}

func runChatOnce(ctx context.Context, message string) error {
	env, err := prepareSession(ctx, resumeConversationId, openFiles)
	if err != nil {
		return fmt.Errorf("failed to prepare session: %w", err)
	}
	defer env.Close()

	// Run with spinner
	return tui.RunWithSpinner(ctx, env.handler, env.keys, message)
}

func runChat(ctx context.Context) error {
	env, err := prepareSession(ctx, resumeConversationId, openFiles)
	if err != nil {
		return fmt.Errorf("failed to prepare session: %w", err)
	}
	defer env.Close()

	// Run TUI
	if err := tui.Run(ctx, env.handler, env.keys); err != nil {
		return err
	}

	fmt.Printf("\nBye, use --resume %s to continue this conversation\n", env.handler.ConversationID())

	return nil
}
