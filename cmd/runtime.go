package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/medload/internal/config"
	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/Lumos-Labs-HQ/medload/internal/logging"
	"github.com/Lumos-Labs-HQ/medload/internal/seeder"
	"github.com/rs/zerolog"
)

var healthcareTables = seeder.HealthcareTables()


// runtime is what every database command needs: validated config, a
// logger, an open pool and the seeder wired to them.
type runtime struct {
	cfg    *config.Config
	log    zerolog.Logger
	pool   database.Pool
	seeder *seeder.Seeder
}

func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.Stderr(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPool(ctx, cfg.Database.Provider, cfg.Database.Driver, dbURL, cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Debug().
		Str("provider", cfg.Database.Provider).
		Int("max_conns", cfg.Database.MaxConns).
		Msg("connected")

	s, err := seeder.NewSeeder(pool, seeder.NewDataGenerator(cfg.Seed.RandomSeed), log, healthcareTables)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, pool: pool, seeder: s}, nil
}

func (r *runtime) Close() error {
	return r.pool.Close()
}

func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newRuntime(ctx, cfg)
}
