package schema

import (
	"encoding/json"
	"fmt"

	"github.com/ryanreadbooks/tokkistream/stream"

	"github.com/spf13/cobra"
)

var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a stream event payload.",
	Long:  "Print the JSON Schema of the record carried by every \"data: \" line of a stream.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(stream.PayloadSchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
