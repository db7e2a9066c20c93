// Package cmd implements stockkeeper-admin, the operator CLI for tasks that
// do not belong behind the HTTP API.
package cmd

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/stockkeeper/internal/server"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

type migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	MigrationStatus(ctx context.Context, db *sql.DB) error
}

// Seams replaced in tests.
var (
	loadConfig = config.Load
	openDB     = server.OpenDB
)

var newMigrator = func() migrator {
	return repomanager.NewPostgresRepositoryManager()
}

type rootOptions struct {
	configFile string
	dsn        string
}

func (o *rootOptions) load() (*config.Config, error) {
	var args []string
	if o.configFile != "" {
		args = append(args, "-c", o.configFile)
	}
	c, err := loadConfig(args)
	if err != nil {
		return nil, err
	}
	if o.dsn != "" {
		c.DatabaseDSN = o.dsn
	}
	return c, nil
}

// withDB loads the configuration, opens the database and hands both to fn.
func (o *rootOptions) withDB(ctx context.Context, fn func(c *config.Config, db *sql.DB) error) error {
	c, err := o.load()
	if err != nil {
		return err
	}
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(c, db)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "stockkeeper-admin",
		Short:         "Administrative tasks for the stockkeeper backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "JSON config file")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN, overrides the configuration")

	root.AddCommand(newMigrateCmd(opts), newUserCmd(opts), newImageCmd(opts), newGenSecretCmd())
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
