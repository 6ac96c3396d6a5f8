package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artemk/scriba/internal/device"
)

func newDevicesCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Report compute device availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, capability := range device.Capabilities(cmd.Context(), app.cudaProber) {
				status := "unavailable"
				if capability.Available {
					status = "available"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %s\n", capability.Name, status)
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	return cmd
}
