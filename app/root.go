// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Directory containing main.toml")
}

var rootCmd = &cobra.Command{
	Use:   "idam",
	Short: "idam is the identity administration backend",
	Long: `idam keeps local user records in sync with the external identity provider,
manages website role assignments and projects user claims for relying parties.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
