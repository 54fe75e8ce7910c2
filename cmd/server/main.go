package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Diyorbek0204/dern-support/internal/config"
	"github.com/Diyorbek0204/dern-support/internal/database"
	"github.com/Diyorbek0204/dern-support/internal/handler"
	"github.com/Diyorbek0204/dern-support/internal/middleware"
	"github.com/Diyorbek0204/dern-support/internal/queue"
	"github.com/Diyorbek0204/dern-support/internal/repository"
	"github.com/Diyorbek0204/dern-support/internal/router"
	"github.com/Diyorbek0204/dern-support/internal/service"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// run owns every resource of the process so that its deferred cleanups
// execute before main decides the exit code.
func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancel()
	if err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	components := repository.NewComponentRepo(db)
	tickets := repository.NewSupportRequestRepo(db)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("ticket consumer stopped", "err", err)
			}
		}()
	} else {
		logger.Info("RABBITMQ_URL not set, ticket events disabled")
	}

	authSvc := service.NewAuthService(users, tokens, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})
	setupSvc := service.NewSetupService(users, components, cfg.BcryptCost, logger)
	if cfg.SeedDefaults {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err := setupSvc.SeedDefaults(seedCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
	}

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, cfg.Env == "prod"),
		Users:      handler.NewUserHandler(service.NewUserService(users, cfg.BcryptCost)),
		Components: handler.NewComponentHandler(service.NewComponentService(components)),
		Tickets:    handler.NewTicketHandler(service.NewTicketService(tickets, users, components, events, logger)),
		Analytics:  handler.NewAnalyticsHandler(service.NewAnalyticsService(tickets, users)),
		Setup:      handler.NewSetupHandler(setupSvc),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, cfg.JWTSecret, logger))

	router.RegisterPublic(e, h, db)
	router.RegisterProtected(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	logger.Info("server stopped")

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}
