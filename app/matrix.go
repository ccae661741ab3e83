package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/motoworks/motoworks-rbac/internal/auth"
	"github.com/motoworks/motoworks-rbac/internal/daemon"
	"github.com/motoworks/motoworks-rbac/internal/db/controller/user"
)

var grantedOnly bool

var matrixCmd = &cobra.Command{
	Use:   "matrix <username>",
	Short: "Print the effective permission matrix of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		u, err := user.GetByUsername(db, args[0])
		if err != nil {
			return err
		}

		m, err := daemon.NewAuthService(&cfg, db).BuildEffectiveMatrix(context.Background(), u.ID)
		if err != nil {
			return err
		}

		return printMatrix(cmd, m)
	},
}

func printMatrix(cmd *cobra.Command, m *auth.Matrix) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd

	_, _ = fmt.Fprintln(w, "PERMISSION\tEFFECTIVE\tOVERRIDE\tROLES")

	for _, row := range m.Grid() {
		for _, d := range row.Actions {
			if grantedOnly && !d.Effective {
				continue
			}

			_, _ = fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", d.Permission, d.Effective, d.Override, strings.Join(d.Roles, ","))
		}
	}

	return w.Flush()
}

func init() { //nolint: gochecknoinits
	matrixCmd.Flags().BoolVar(&grantedOnly, "granted", false, "Only list granted permissions")

	rootCmd.AddCommand(matrixCmd)
}
