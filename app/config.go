package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/config"
)

const secretMask = "********"

var dumpJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := dumpConfig(cfg, dumpJSON)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), out)

		return err
	},
}

func dumpConfig(c config.Config, asJSON bool) (string, error) {
	if c.DB.Password != "" {
		c.DB.Password = secretMask
	}

	if c.Seed.AdminPassword != "" {
		c.Seed.AdminPassword = secretMask
	}

	if asJSON {
		return config.DumpConfigJSON(c)
	}

	return config.DumpConfig(c)
}

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&dumpJSON, "json", false, "Print JSON instead of TOML")

	rootCmd.AddCommand(configCmd)
}
