package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-admin/internal/api/http"
	"github.com/spec-kit/commerce-admin/internal/api/http/handlers"
	"github.com/spec-kit/commerce-admin/internal/auth"
	"github.com/spec-kit/commerce-admin/internal/config"
	"github.com/spec-kit/commerce-admin/internal/events"
	"github.com/spec-kit/commerce-admin/internal/observability"
	"github.com/spec-kit/commerce-admin/internal/persistence"
	"github.com/spec-kit/commerce-admin/internal/ratelimit"
	"github.com/spec-kit/commerce-admin/internal/repository"
	"github.com/spec-kit/commerce-admin/internal/service"
	"github.com/spec-kit/commerce-admin/internal/worker"
)

type repositories struct {
	users     repository.UserRepository
	carts     repository.CartRepository
	discounts repository.DiscountRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handlers.Pinger{}
	var repos repositories

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := repository.NewMemoryStore()
		repos = repositories{
			users:     repository.NewMemoryUserRepository(store),
			carts:     repository.NewMemoryCartRepository(store),
			discounts: repository.NewMemoryDiscountRepository(store),
		}
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
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

		pool := pg.PoolHandle()
		repos = repositories{
			users:     repository.NewUserRepository(pool),
			carts:     repository.NewCartRepository(pool),
			discounts: repository.NewDiscountRepository(pool),
		}
		checks["postgres"] = pg
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()
	checks["redis"] = rdb

	var cmd redis.Cmdable
	if client := rdb.Handle(); client != nil {
		cmd = client
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, cmd, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   repos.users,
		Dispatcher: dispatcher,
		Hasher:     auth.NewHasher(cfg.Auth.BcryptCost),
		Superuser:  cfg.Superuser,
		Logger:     logger,
	})
	cartService := service.NewCartService(service.CartDependencies{
		CartRepo: repos.carts,
		UserRepo: repos.users,
		Logger:   logger,
	})
	discountService := service.NewDiscountService(repos.discounts, logger)

	if created, err := userService.BootstrapSuperuser(ctx); err != nil {
		logger.Fatal("failed to bootstrap superuser", zap.Error(err))
	} else if created {
		logger.Info("superuser account created", zap.String("email", cfg.Superuser.Email))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Users:     handlers.NewUsersHandler(userService),
		Carts:     handlers.NewCartsHandler(cartService),
		Discounts: handlers.NewDiscountsHandler(discountService),
		Metrics:   metrics,
		RequestLimit: httptransport.RequestLimit{
			Limiter:  ratelimit.NewLimiter(cmd, "ratelimit:", logger),
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window(),
		},
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
