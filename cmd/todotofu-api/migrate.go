package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/todotofu/todotofu/backend/internal/config"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/repository/mongostore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database indexes",
	Long: `Create the MongoDB indexes used by range queries, username lookups and idempotency expiry.

The supabase driver has nothing to create here. Its schema is managed in
Postgres, and tasks.date must be a timestamptz holding the UTC instant of
the task's local midnight, since day and week ranges are compared as
instants.`,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg)

	if cfg.Storage.Driver != config.DriverMongo {
		logger.Info("nothing to migrate; the supabase schema is managed by SQL migrations",
			logger.String("driver", cfg.Storage.Driver),
			logger.String("tasks.date", "timestamptz"))
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Mongo.Timeout)
	defer cancel()

	client, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongostore.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Info("indexes created", logger.String("database", cfg.Mongo.Database))
	return nil
}
