package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/fleetwatch/monitor-service/internal/api/http"
	"github.com/fleetwatch/monitor-service/internal/api/http/handlers"
	"github.com/fleetwatch/monitor-service/internal/auth"
	"github.com/fleetwatch/monitor-service/internal/config"
	"github.com/fleetwatch/monitor-service/internal/events"
	"github.com/fleetwatch/monitor-service/internal/observability"
	"github.com/fleetwatch/monitor-service/internal/persistence"
	"github.com/fleetwatch/monitor-service/internal/repository"
	"github.com/fleetwatch/monitor-service/internal/service"
	"github.com/fleetwatch/monitor-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	adapter := credentialAdapter(cfg, pg, redis, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger, metrics)

	tokenService := auth.NewService(adapter, events.NewAuditPublisher(dispatcher), auth.Options{
		UserTokenTTL:          cfg.Auth.UserTokenTTL(),
		ServiceTokenTTL:       cfg.Auth.ServiceTokenTTL(),
		APIKeyTTL:             cfg.Auth.APIKeyTTL(),
		RefreshTokenTTL:       cfg.Auth.RefreshTokenTTL(),
		ReportPath:            cfg.Auth.ReportPathClassifier(),
		AutoProvisionMachines: cfg.Auth.AutoProvisionMachines,
	})

	// Reconcile durable state before the first request: warm the cache and
	// drop rows that expired while the process was down.
	if err := tokenService.WarmStart(ctx); err != nil {
		logger.Fatal("failed to warm token cache", zap.Error(err))
	}

	purger := auth.NewPurger(tokenService, cfg.Auth.PurgeInterval(), logger)
	go purger.Run(ctx)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	machineRepo := repository.NewMachineRepository(pool)

	authService := service.NewAuthService(*cfg, userRepo, tokenService)
	machineService := service.NewMachineService(machineRepo, tokenService, cfg.Auth.AutoProvisionMachines)
	authMiddleware := auth.NewMiddleware(tokenService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Machines:       handlers.NewMachinesHandler(machineService),
		APIKeys:        handlers.NewAPIKeysHandler(machineService),
		Reports:        handlers.NewReportsHandler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

// credentialAdapter picks the durable credential store for the token service.
func credentialAdapter(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) auth.PersistenceAdapter {
	switch cfg.Auth.StoreBackend {
	case "redis":
		logger.Info("using redis credential store")
		return repository.NewRedisCredentialRepository(redis.Client)
	case "memory":
		logger.Warn("using in-memory credential store; tokens will not survive restarts")
		return repository.NewMemoryCredentialRepository()
	default:
		logger.Info("using postgres credential store")
		return repository.NewPostgresCredentialRepository(pg.PoolHandle())
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
