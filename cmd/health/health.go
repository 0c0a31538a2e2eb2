package health

import (
	"fmt"
	"time"

	"github.com/ryanreadbooks/tokkistream/config"
	"github.com/ryanreadbooks/tokkistream/pkg/xmap"
	"github.com/ryanreadbooks/tokkistream/transport"
	"github.com/spf13/cobra"
)

var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is up.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		h, err := transport.CheckHealth(cmd.Context(), cfg.Backend)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %d %s (%s)\n", cfg.Backend.BaseURL, h.StatusCode, h.Status, h.Latency.Round(time.Millisecond))
		for _, k := range xmap.SortedKeys(h.Fields) {
			if k == "status" {
				continue
			}
			fmt.Fprintf(out, "  %s: %v\n", k, h.Fields[k])
		}

		if !h.Healthy() {
			return fmt.Errorf("backend is not healthy")
		}
		return nil
	},
}
