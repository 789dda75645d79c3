// Package commands implements the relaybot CLI commands with cobra.
package commands

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "./config.yaml"

// NewRootCmd creates the root command with every subcommand registered.
// Running it without a subcommand starts the bot.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relaybot",
		Short: "Telegram relay bot backed by Gemini and SerpAPI",
		Long: `relaybot answers Telegram messages with Google Gemini, describes
uploaded photos and documents, summarizes web searches and records every
interaction in SQLite or MongoDB.

Examples:
  relaybot serve --config ./config.yaml
  relaybot migrate`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "path to the configuration file")

	return rootCmd
}

func configPath(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return defaultConfigPath
	}
	return path
}
