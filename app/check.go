package app

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/daemon"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
)

var checkCmd = &cobra.Command{
	Use:   "check <username> <permission>",
	Short: "Explain whether a user holds a permission",
	Long: `Prints the decision for one permission as JSON: the effective answer, every
held role that grants it and the user override, if any.`,
	Args: cobra.ExactArgs(2), //nolint:mnd
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		u, err := user.GetByUsername(db, args[0])
		if err != nil {
			return err
		}

		d, err := daemon.NewAuthService(&cfg, db).Decide(context.Background(), u.ID, args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(d)
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(checkCmd)
}
