package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tour-marketplace/internal/api/http"
	"github.com/spec-kit/tour-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/cache"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/observability"
	"github.com/spec-kit/tour-marketplace/internal/persistence"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	"github.com/spec-kit/tour-marketplace/internal/repository/memory"
	"github.com/spec-kit/tour-marketplace/internal/service"
	"github.com/spec-kit/tour-marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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

	if pg.Configured() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		if err := persistence.VerifySchema(ctx, pg.PoolHandle(), persistence.RequiredSchemaVersion); err != nil {
			logger.Fatal("schema check failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
		historyRepo repository.ProductHistoryRepository
	)
	if pg.Configured() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		productRepo = repository.NewProductRepository(pool)
		historyRepo = repository.NewProductHistoryRepository(pool)
	} else {
		store := memory.NewStore()
		userRepo, productRepo, historyRepo = store.Users(), store.Products(), store.History()
	}

	var catalogCache cache.CatalogCache = cache.NoopCatalogCache{}
	if redis.Configured() {
		catalogCache = cache.NewRedisCatalogCache(redis.Client, "catalog:", cfg.Catalog.CacheTTL(), logger)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		TokenManager: tokens,
		Logger:       logger,
	})
	roleResolver := service.NewRoleResolver(userRepo, tokens, dispatcher)
	userService := service.NewUserService(*cfg, userRepo, logger)
	productService := service.NewProductService(*cfg, service.ProductDependencies{
		ProductRepo: productRepo,
		HistoryRepo: historyRepo,
		Catalog:     catalogCache,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	catalogService := service.NewCatalogService(productRepo, catalogCache)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	if cfg.Bootstrap.Enabled() {
		if err := authService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			logger.Fatal("failed to bootstrap super admin", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Dependency{
			"postgres": pg,
			"redis":    redis,
		}),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService, roleResolver),
		Tours:          handlers.NewToursHandler(productService),
		AdminTours:     handlers.NewAdminToursHandler(productService),
		AdminUsers:     handlers.NewAdminUsersHandler(userService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
