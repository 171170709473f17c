// Package cli holds the storybook command tree.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running the binary without a subcommand serves
// the web application.
func NewRootCmd(version string) *cobra.Command {
	serve := newServeCmd(version)

	cmd := &cobra.Command{
		Use:   "storybook",
		Short: "Create illustrated children's storybooks in the browser",
		Long: `Storybook is a small web application for assembling picture books: add pages
with text and images, illustrate them with Google Gemini and read the result as a book.

Everything a visitor creates lives in their browser session only.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newRenderCmd())

	return cmd
}
