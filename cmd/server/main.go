package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"eateryApi/internal/config"
	handler "eateryApi/internal/modules/dining/application/handler"
	usecase "eateryApi/internal/modules/dining/application/usecase"
	"eateryApi/internal/modules/dining/domain"
	"eateryApi/internal/modules/dining/infrastructure"
	transport "eateryApi/internal/modules/dining/interface"
	"eateryApi/internal/platform/broker"
	"eateryApi/internal/shared/auth"
	"eateryApi/internal/shared/logging"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := logging.OpenDaily(cfg.Logging.Directory, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("eatery api configured", slog.String("baseUrl", cfg.API.BaseURL), slog.Duration("timeout", cfg.API.Timeout), slog.Duration("refreshInterval", cfg.Refresh.Interval), slog.Int("concurrency", cfg.Refresh.Concurrency))

	catalog := domain.DefaultCalendarCatalog()
	hub := infrastructure.NewHub(infrastructure.WithHallCatalog(catalog))
	notifier := usecase.NewRefreshNotifier(hub)
	fetcher := infrastructure.NewEateryHTTPClient(cfg.API.BaseURL, cfg.API.Timeout, nil)
	manager := usecase.NewDataManager(fetcher,
		usecase.WithCatalog(catalog.IDs()),
		usecase.WithConcurrency(cfg.Refresh.Concurrency),
		usecase.WithRequestTimeout(cfg.API.Timeout),
		usecase.WithOnUpdate(notifier.HallUpdated),
		usecase.WithOnBatch(notifier.BatchFinished),
	)
	if cfg.Refresh.LoadFixtures {
		manager.LoadFixtures()
		slog.Info("fixture dining halls loaded", slog.Int("count", manager.Len()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := infrastructure.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.Topics {
		registry.Register(handler.NewCalendarUpdatedHandler(topic, manager))
	}
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", registry.Topics()))
	broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, registry.Topics())

	go manager.RunSchedule(ctx, cfg.Refresh.Interval, cfg.Refresh.OnStart)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())

	var guard echo.MiddlewareFunc
	if cfg.RefreshProtected() {
		validator, err := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)
		if err != nil {
			slog.Error("jwt validator setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		guard = transport.RequireToken(validator, cfg.Security.RefreshRole)
	} else {
		slog.Warn("refresh endpoints are unprotected: JWT_SECRET and JWT_PUBLIC_KEY are empty")
	}
	transport.RegisterRoutes(e, manager, hub, guard)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
	}
}
