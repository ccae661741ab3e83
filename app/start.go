package app

import (
	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/daemon"
)

var devMode bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the web service",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if devMode {
			cfg.DevMode = true
		}

		d, err := daemon.New(&cfg)
		if err != nil {
			return err
		}

		return d.Run()
	},
}

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (insecure cookies, fast shutdown)")

	rootCmd.AddCommand(startCmd)
}
