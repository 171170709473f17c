package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/storybook/internal/config"
	"github.com/mrlokans/storybook/internal/entrypoint"
)

func newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storybook web server",
		Long: `Starts the web interface. Configuration comes from the environment (or a .env file):

  PORT, HOST                     listen address (default 0.0.0.0:8189)
  SESSION_STORE                  memory (default) or sqlite
  SESSION_DB_PATH                SQLite file for SESSION_STORE=sqlite
  SESSION_SECRET                 CSRF key material; random per process when unset
  SECURE_COOKIES                 set to false for local development over plain HTTP
  GEMINI_PROMPT_MODEL            model writing illustration briefs
  GEMINI_IMAGE_MODEL             model drawing the illustrations
  MAX_UPLOAD_MB                  image upload limit
  LOG_FILE                       also write logs to this rotated file`,
		Example: `  # Start on the default port
  storybook serve

  # Local development without HTTPS
  SECURE_COOKIES=false PORT=3000 storybook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cmd.Context(), config.NewConfig(), version)
		},
	}
}
