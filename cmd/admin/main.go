package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/vinmart/admin-console/internal/api/http"
	"github.com/vinmart/admin-console/internal/api/http/handlers"
	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/config"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/observability"
	"github.com/vinmart/admin-console/internal/persistence"
	"github.com/vinmart/admin-console/internal/repository"
	"github.com/vinmart/admin-console/internal/service"
	"github.com/vinmart/admin-console/internal/session"
	"github.com/vinmart/admin-console/internal/views"
	"github.com/vinmart/admin-console/internal/worker"
	"github.com/vinmart/admin-console/web"
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

	var (
		redis *persistence.Redis
		store session.Store
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		store = session.NewRedisStore(redis.Client)
	default:
		logger.Warn("sessions are kept in memory and are lost on restart")
		store = session.NewMemoryStore()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var auditRepo repository.AuditRepository
	if pg.Enabled() {
		auditRepo = repository.NewAuditRepository(pg.PoolHandle())
	}
	auditService := service.NewAuditService(dispatcher, auditRepo, logger)
	worker.StartAuditWorker(auditService)

	sessions := session.NewManager(store, cfg.Session.TTL())
	tokens := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL())
	guard := auth.NewGuard(tokens, sessions, auth.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, logger)
	observer := session.NewObserver(sessions, dispatcher, logger)

	client, err := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTokenSource(session.ContextTokenSource{}),
		apiclient.WithObserver(metrics),
		apiclient.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to build api client", zap.Error(err))
	}

	validator := views.NewFormValidator()
	page := handlers.NewPage(guard, observer, dispatcher, logger)

	engine := web.NewEngine(cfg.App.Env == "development")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Views:        engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.API.BaseURL, pg, redis),
		Auth:          handlers.NewAuthHandler(page, client.Auth, sessions, validator),
		Dashboard:     handlers.NewDashboardHandler(page, client.Dashboard, client.Auth, sessions, auditService),
		Vendors:       handlers.NewVendorsHandler(page, views.NewVendorService(client.Vendors, validator, dispatcher, logger)),
		Products:      handlers.NewProductsHandler(page, client.Products, validator),
		Orders:        handlers.NewOrdersHandler(page, client.Orders, validator),
		Subscriptions: handlers.NewSubscriptionsHandler(page, client.Subscriptions),
		Users:         handlers.NewUsersHandler(page, client.Users),
		Guard:         guard,
		Metrics:       metrics,
	})

	go func() {
		logger.Info("admin console listening", zap.String("addr", cfg.App.Addr()), zap.String("api", client.BaseURL()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
