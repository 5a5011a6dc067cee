package app

import (
	"github.com/spf13/cobra"

	"github.com/idam-admin/idam/internal/config"
	"github.com/idam-admin/idam/internal/daemon"
	"github.com/idam-admin/idam/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	configPath string // Path to the configuration file

	cfg     config.Config
	err     error
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the identity administration web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			return logger.Init(cfg.Log)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			return d.Start(cmd.Context())
		},
	}
)
