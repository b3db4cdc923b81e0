// Package app implements the rosterd commands.
package app

import (
	"github.com/spf13/cobra"
)

var (
	configPath string // directory holding main.toml

	rootCmd = &cobra.Command{
		Use:   "rosterd",
		Short: "rosterd manages groups, events, signups and check-ins",
		Long: `rosterd is a web service for classes and volunteer organizations:
members join groups, sign up for events and check in with authorization codes.`,
		Args: cobra.OnlyValidArgs,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
