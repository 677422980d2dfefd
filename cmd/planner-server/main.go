package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-supply-planner/internal/app"
	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/logger"

	"github.com/joho/godotenv"
)

const serviceName = "planner-server"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	application, err := app.New(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize planner", err)
		os.Exit(1)
	}

	handler, err := application.Handler()
	if err != nil {
		logg.Error(context.Background(), "failed to build http handler", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":     addr,
		"locator":  cfg.WebShopLocator,
		"telegram": cfg.TelegramEnabled(),
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info(ctx, "starting planner server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "planner server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info(ctx, "shutting down planner server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "planner server forced to shutdown", err)
		os.Exit(1)
	}
	logg.Info(ctx, "planner server exited")
}
