package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ryanreadbooks/tokkistream/cmd/chat"
	"github.com/ryanreadbooks/tokkistream/cmd/conversations"
	"github.com/ryanreadbooks/tokkistream/cmd/health"
	"github.com/ryanreadbooks/tokkistream/cmd/onboard"
	"github.com/ryanreadbooks/tokkistream/cmd/replay"
	"github.com/ryanreadbooks/tokkistream/cmd/schema"
	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/pkg/process"
	"github.com/spf13/cobra"
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:           "tokkistream",
	Short:         "Terminal client for a streaming chat backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := config.SetupLogger(config.GetConfig().Log)
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
}

func init() {
	config.Init()

	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(replay.ReplayCmd)
	rootCmd.AddCommand(conversations.ConversationsCmd)
	rootCmd.AddCommand(schema.SchemaCmd)
	rootCmd.AddCommand(health.HealthCmd)
	rootCmd.AddCommand(onboard.OnboardCmd)
}

func main() {
	ctx, cancel, wait := process.GetRootContext()
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	wait()
	if logCloser != nil {
		logCloser.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
