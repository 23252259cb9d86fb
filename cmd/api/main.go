package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bookswap-service/internal/api/http"
	"github.com/spec-kit/bookswap-service/internal/api/http/handlers"
	"github.com/spec-kit/bookswap-service/internal/auth"
	"github.com/spec-kit/bookswap-service/internal/config"
	"github.com/spec-kit/bookswap-service/internal/events"
	"github.com/spec-kit/bookswap-service/internal/observability"
	"github.com/spec-kit/bookswap-service/internal/persistence"
	"github.com/spec-kit/bookswap-service/internal/repository"
	"github.com/spec-kit/bookswap-service/internal/service"
	"github.com/spec-kit/bookswap-service/internal/worker"
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

	executor := persistence.NewExecutor(pg.PoolHandle(), cfg.Postgres.QueryTimeout())

	userRepo := repository.NewUserRepository(executor)
	activityRepo := repository.NewActivityRepository(executor)
	bookRepo := repository.NewBookRepository(executor)
	exchangeRepo := repository.NewExchangeRepository(executor, bookRepo)
	messageRepo := repository.NewMessageRepository(executor)
	statsRepo := repository.NewStatsRepository(executor)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Logger:       logger,
	})
	bookService := service.NewBookService(service.BookDependencies{
		BookRepo:     bookRepo,
		ExchangeRepo: exchangeRepo,
		StatsRepo:    statsRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Cache:        redis,
		Logger:       logger,
	})
	exchangeService := service.NewExchangeService(service.ExchangeDependencies{
		ExchangeRepo: exchangeRepo,
		BookRepo:     bookRepo,
		StatsRepo:    statsRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo:  messageRepo,
		ExchangeRepo: exchangeRepo,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Profile:        handlers.NewProfileHandler(authService, statsRepo, activityRepo),
		Books:          handlers.NewBooksHandler(bookService),
		Exchanges:      handlers.NewExchangesHandler(exchangeService),
		Messages:       handlers.NewMessagesHandler(messageService),
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
