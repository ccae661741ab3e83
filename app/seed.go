package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/daemon"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the built-in permission catalog, roles and bootstrap admin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		res, err := daemon.Seed(db, cfg.Seed)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "permissions created: %d\nroles created: %d\n", res.Permissions, res.Roles)

		if res.AdminCreated {
			_, _ = fmt.Fprintf(out, "admin created: %s\n", cfg.Seed.AdminUsername)
		}

		if res.AdminPassword != "" {
			_, _ = fmt.Fprintf(out, "admin password: %s\n", res.AdminPassword)
		}

		return nil
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}
