package cli

import (
	"actionitems/config/database"
	"actionitems/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the action_items table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Init()
			defer logger.Sync()

			db, err := database.Connect(app.Config)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(cmd.Context(), db)
		},
	}
}
