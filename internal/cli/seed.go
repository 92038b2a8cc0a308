//go:build fixtures

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/memberimport/internal/database/fixtures"
	"github.com/mrlokans/memberimport/internal/entrypoint"
)

func init() {
	extraCommands = append(extraCommands, newSeedCommand)
}

func newSeedCommand(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store a registration period to import against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(app *entrypoint.App) error {
				period, err := fixtures.Seed(cmd.Context(), app.Database.DB, app.Config.Import.OrganizationID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "period %s (%s) with %d groups\n", period.ID, period.Name, len(period.Groups))
				return nil
			})
		},
	}
}
