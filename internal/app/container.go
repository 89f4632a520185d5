package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"skill-swap/internal/config"
	"skill-swap/internal/database/migration"
	dbpostgres "skill-swap/internal/database/postgres"
	"skill-swap/internal/database/seeder"
	"skill-swap/internal/infrastructure/cache"
	"skill-swap/internal/infrastructure/notify"
	"skill-swap/internal/pkg/jwt"
	"skill-swap/internal/pkg/tracing"
	"skill-swap/internal/pkg/workerpool"
	"skill-swap/internal/repository"
	"skill-swap/internal/usecase"
	"skill-swap/internal/ws"
	"skill-swap/migrations"
)

// Container owns every long-lived dependency of the server process.
type Container struct {
	Config config.Config
	Logger *log.Logger

	// DB is nil when no database is configured and the in-memory stores serve.
	DB    *dbpostgres.Pool
	Redis *cache.Redis

	JWT   *jwt.HMACService
	Hub   *ws.Hub
	Pool  *workerpool.Pool
	Relay *notify.Relay
	Swaps usecase.SwapUsecase

	shutdownTracing func(context.Context) error
}

func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	shutdown, err := tracing.Setup(ctx, cfg.App.AppName, cfg.App.Environment, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	c.shutdownTracing = shutdown

	var (
		swaps  repository.SwapRepository
		users  repository.UserRepository
		skills repository.UserSkillRepository
	)
	if cfg.Database.Enabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := dbpostgres.Connect(connectCtx, cfg.Database, dbpostgres.WithQueryLogger(logger))
		cancel()
		if err != nil {
			_ = c.Close(ctx)
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.DB = db

		if err := c.prepareDatabase(ctx); err != nil {
			_ = c.Close(ctx)
			return nil, err
		}

		swaps = repository.NewPostgresSwapRepository(db).WithMaxTries(cfg.Database.StoreRetryTries)
		users = repository.NewPostgresUserRepository(db)
		skills = repository.NewPostgresUserSkillRepository(db)
		logger.Printf("[App] storage=postgres host=%s db=%s", cfg.Database.DBHost, cfg.Database.DBName)
	} else {
		dir := repository.NewMemoryDirectory()
		seeder.LoadMemory(dir)
		swaps = repository.NewMemorySwapRepository()
		users = dir
		skills = dir
		logger.Printf("[App] storage=memory demo_users=%d", len(seeder.DemoUsers))
	}

	c.Redis = cache.NewRedis(cfg.Redis, logger)
	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
		jwt.WithIssuer(cfg.App.AppName),
	)
	c.Hub = ws.NewHub(logger)
	c.Pool = workerpool.New(cfg.Notify.Workers, cfg.Notify.QueueSize)
	c.Relay = notify.NewRelay(c.Redis, c.Hub, cfg.Redis.EventChannel, logger)
	dispatcher := notify.NewDispatcher(c.Pool, c.Redis, c.Hub, cfg.Redis.EventChannel, logger).WithRelay(c.Relay)

	c.Swaps = usecase.NewSwapUsecase(usecase.SwapDeps{
		Swaps:    swaps,
		Users:    users,
		Skills:   skills,
		Cache:    c.Redis,
		Notifier: dispatcher,
		Logger:   logger,
		CacheTTL: cfg.Redis.TTL,
	})

	return c, nil
}

func (c *Container) prepareDatabase(ctx context.Context) error {
	cfg := c.Config.Database
	if cfg.AutoMigrate {
		// An explicit directory overrides the embedded set.
		r := migration.Runner{Dir: cfg.MigrationsDir, Logger: c.Logger}
		if cfg.MigrationsDir == "" {
			r.FS = migrations.FS
		}
		applied, err := r.Run(ctx, c.DB.SQLDB())
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		c.Logger.Printf("[App] migrations applied=%d", len(applied))
	}
	if cfg.SeedDemo {
		if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger}).Run(ctx, c.DB); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if c.shutdownTracing != nil {
		if err := c.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
