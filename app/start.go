package app

import (
	"github.com/spf13/cobra"

	"github.com/rosterd/rosterd/internal/config"
	"github.com/rosterd/rosterd/internal/daemon"
	"github.com/rosterd/rosterd/internal/logger"
)

const (
	flagDev    = "dev"
	flagBrowse = "browse"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().Bool(flagDev, false, "run in dev mode: reload templates from disk and seed an admin user")
	startCmd.Flags().Bool(flagBrowse, false, "allow directory listings under /static")

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the rosterd web service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := startConfig(cmd)
		if err != nil {
			return err
		}

		if err = logger.Init(cfg.Log); err != nil {
			return err
		}

		d, err := daemon.New(&cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}

// startConfig reads the configuration and applies the command line overrides.
func startConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return cfg, err
	}

	if dev, _ := cmd.Flags().GetBool(flagDev); dev {
		cfg.DevMode = true
	}

	if browse, _ := cmd.Flags().GetBool(flagBrowse); browse {
		cfg.Webserver.BrowseStatic = true
	}

	return cfg, nil
}
