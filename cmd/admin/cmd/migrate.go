package cmd

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(_ *config.Config, db *sql.DB) error {
				if err := newMigrator().RunMigrations(cmd.Context(), db); err != nil {
					return fmt.Errorf("migration error: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(_ *config.Config, db *sql.DB) error {
				return newMigrator().MigrationStatus(cmd.Context(), db)
			})
		},
	})

	return migrate
}
