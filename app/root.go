// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/config"
	"github.com/motoworks/motoworks-rbac/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "motoworks-rbac",
	Short: "MotoWorks RBAC resolves staff permissions for the workshop",
	Long: `MotoWorks RBAC answers "may this user do this?" for the motorcycle sales and
service workshop. Access comes from the roles a user holds plus per-user grant
or deny overrides, and an override always wins over the roles.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		return logger.Init(cfg.Log)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
