package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting storefront", slog.String("env", cfg.Env))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	application, err := app.NewApp(initCtx, log, cfg)
	cancelInit()
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to close app", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(log, cfg.JWT.Secret, application.Services)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
