package main

import (
	"context"
	"fmt"

	"github.com/todotofu/todotofu/backend/internal/config"
	"github.com/todotofu/todotofu/backend/internal/logger"
	"github.com/todotofu/todotofu/backend/internal/repository"
	"github.com/todotofu/todotofu/backend/internal/repository/mongostore"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

// openStore builds the repositories of the configured driver. The returned
// closer releases its connections.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(context.Context), error) {
	var (
		store   *repository.Store
		closers []func(context.Context)
	)

	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, nil, err
		}
		store = mongostore.New(client.Database(cfg.Mongo.Database))
		closers = append(closers, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("mongo disconnect failed", logger.Err(err))
			}
		})
		logger.Info("connected to mongo", logger.String("database", cfg.Mongo.Database))
	case config.DriverSupabase:
		store = repository.NewSupabaseStore(supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey))
		logger.Info("using supabase storage", logger.String("url", cfg.Supabase.URL))
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled {
		rdb, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			for _, c := range closers {
				c(ctx)
			}
			return nil, nil, err
		}
		store.Idempotency = repository.NewRedisIdempotencyRepository(rdb, repository.IdempotencyTTL)
		closers = append(closers, func(context.Context) { _ = rdb.Close() })
		logger.Info("idempotency keys stored in redis")
	}

	closeAll := func(ctx context.Context) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](ctx)
		}
	}
	return store, closeAll, nil
}

func setupLogger(cfg *config.Config) {
	logger.SetDefault(logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
	}))
}
