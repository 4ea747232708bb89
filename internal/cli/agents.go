package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/infofact/internal/agent"
)

var agentsJSON bool

// agentsCmd lists the registry; no credentials are needed for that
var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List available agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := agent.Default().Info()
		out := cmd.OutOrStdout()

		if agentsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintln(out, "Available agents:")
		for _, a := range info {
			fmt.Fprintf(out, "%s - %s\n", a.Name, a.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
	agentsCmd.Flags().BoolVar(&agentsJSON, "json", false, "print as JSON")
}
