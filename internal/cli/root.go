package cli

import (
	"strings"

	"actionitems/config"

	"github.com/spf13/cobra"
)

type App struct {
	Config config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "actionitems",
		Short:        "Action items service and terminal client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create the table, then run the service
  actionitems migrate
  actionitems serve --addr :8080

  # Mint a development token and open a notebook's action items
  export ACTIONITEMS_TOKEN=$(actionitems token --user 3f1e...)
  actionitems tui --notebook nb-42
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.Config = config.Load()
		return nil
	}

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newTokenCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}
