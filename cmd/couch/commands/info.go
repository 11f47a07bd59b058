package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display server information",
		Long:  "Display the welcome document of the CouchDB server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cleanup, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := client.ServerInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get server info: %w", err)
			}

			rows := [][2]string{
				{"CouchDB", info.CouchDB},
				{"Version", orNotAvailable(info.Version)},
				{"Git SHA", orNotAvailable(info.GitSHA)},
				{"UUID", orNotAvailable(info.UUID)},
				{"Vendor", orNotAvailable(info.Vendor["name"])},
			}

			if len(info.Features) > 0 {
				rows = append(rows, [2]string{"Features", strings.Join(info.Features, "\n")})
			}

			return render(cmd.OutOrStdout(), info, propertyTable(rows))
		},
	}
}
