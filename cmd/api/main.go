package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/guide-store/internal/api/http"
	"github.com/spec-kit/guide-store/internal/api/http/handlers"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/config"
	"github.com/spec-kit/guide-store/internal/events"
	"github.com/spec-kit/guide-store/internal/observability"
	"github.com/spec-kit/guide-store/internal/payments"
	"github.com/spec-kit/guide-store/internal/persistence"
	"github.com/spec-kit/guide-store/internal/repository"
	"github.com/spec-kit/guide-store/internal/service"
	"github.com/spec-kit/guide-store/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	guideRepo := repository.NewGuideRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	revoker := auth.NewRedisTokenRevoker(redis.Client)
	gateway := payments.NewStripeGateway(cfg.Stripe)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Revoker:    revoker,
		Dispatcher: dispatcher,
	})
	purchaseService := service.NewPurchaseService(service.PurchaseDependencies{
		UserRepo:     userRepo,
		GuideRepo:    guideRepo,
		PurchaseRepo: purchaseRepo,
		Gateway:      gateway,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	guideService := service.NewGuideService(guideRepo, purchaseService)
	checkoutService := service.NewCheckoutService(guideRepo, purchaseRepo, gateway, cfg.App.PublicBaseURL)

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, revoker)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.OAuth),
		Guides:         handlers.NewGuidesHandler(guideService),
		Checkout:       handlers.NewCheckoutHandler(checkoutService),
		Webhooks:       handlers.NewWebhookHandler(purchaseService),
		Dashboard:      handlers.NewDashboardHandler(purchaseService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
