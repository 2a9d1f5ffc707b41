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

	"github.com/cmlabs-hris/workforce-sync-go/internal/app"
	"github.com/cmlabs-hris/workforce-sync-go/internal/config"
	appHTTP "github.com/cmlabs-hris/workforce-sync-go/internal/handler/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "workforce-sync"),
		slog.String("env", cfg.App.Env),
	))

	application, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Sync.RefreshSchedules(ctx); err != nil {
		slog.Error("Initial schedule refresh failed", "error", err)
	}
	if err := application.Sync.EnableLogRetention(cfg.Sync.LogRetentionDays); err != nil {
		log.Fatal("Failed to register import log retention: ", err)
	}
	application.Cron.Start()
	defer application.Cron.Stop()

	sourceHandler := appHTTP.NewSourceHandler(application.SourceService)
	attendanceHandler := appHTTP.NewAttendanceHandler(application.ReconciliationService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		application.JWT,
		sourceHandler,
		attendanceHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
