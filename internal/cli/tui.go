package cli

import (
	"context"
	"fmt"

	"actionitems/config/database"
	"actionitems/internal/actionitem/query"
	"actionitems/internal/actionitem/repository"
	"actionitems/internal/actionitem/service"
	"actionitems/internal/tui"
	"actionitems/pkg/client"
	"actionitems/pkg/identity"
	"actionitems/pkg/logger"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	var notebookID string
	var userID string
	var token string
	var apiURL string
	var direct bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit a notebook's action items in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if token == "" {
				token = cfg.Token
			}
			if apiURL == "" {
				apiURL = cfg.APIURL
			}

			logger.InitFile(cfg.LogFile)
			defer logger.Sync()

			if userID == "" && token != "" {
				sub, err := identity.FromToken(token)
				if err != nil {
					return fmt.Errorf("read user from token: %w", err)
				}
				userID = sub
			}
			scope := query.Scope{NotebookID: notebookID, UserID: userID}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if direct {
				return runDirect(ctx, app, scope)
			}

			c := client.New(apiURL, token)
			logger.Sugar.Infof("TUI session %s for notebook %s against %s", c.SessionID, notebookID, apiURL)
			return tui.Run(ctx, query.New(c), c, scope)
		},
	}

	cmd.Flags().StringVar(&notebookID, "notebook", "", "Notebook ID whose action items to show")
	cmd.Flags().StringVar(&userID, "user", "", "User ID (default: the token's sub claim)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token (overrides ACTIONITEMS_TOKEN)")
	cmd.Flags().StringVar(&apiURL, "api", "", "Service base URL (overrides ACTIONITEMS_API_URL)")
	cmd.Flags().BoolVar(&direct, "direct", false, "Talk to Postgres directly instead of the HTTP service")
	return cmd
}

// runDirect embeds the service in-process. There is no change feed in this
// mode.
func runDirect(ctx context.Context, app *App, scope query.Scope) error {
	db, err := database.Connect(app.Config)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewActionItemService(repository.NewActionItemRepository(db), nil)
	return tui.Run(ctx, query.New(svc), nil, scope)
}
