package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"perfumery/internal/config"
	appdb "perfumery/internal/db"
	applog "perfumery/internal/log"
)

// openDatabase connects to the configured database without migrating it.
var openDatabase = func(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return appdb.Initialize(cfg.Database)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "perfumectl",
		Short:        "Administer the perfumery database",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCommand(), newUsersCommand(), newInventoryCommand())
	return root
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			if err := appdb.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			applog.Info(cmd.Context(), "schema migrated", "models", len(appdb.Models()))
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%d tables).\n", len(appdb.Models()))
			return nil
		},
	}
}
