// Package initdb creates the database schema and seeds default categories
package initdb

import (
	"fmt"

	"fjacquet/finance-analyzer/cmd/root"
	"fjacquet/finance-analyzer/internal/container"

	"github.com/spf13/cobra"
)

// Cmd represents the init-db command
var Cmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database and seed the default categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := root.LoadConfig()
		if err != nil {
			return err
		}
		c, err := container.NewContainer(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		cats, err := c.GetDB().ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s with %d categories\n", cfg.Database.Path, len(cats))
		return nil
	},
}
