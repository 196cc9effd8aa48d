package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/handler"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := repository.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer store.Close()
	logger.Info("database connected", "driver", store.Driver)

	var notifier notify.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			To:       cfg.Recipient(),
			Timeout:  cfg.NotifyTimeout,
		})
	} else {
		logger.Warn("SMTP credentials not set; notifications are only logged")
		notifier = notify.NewLogNotifier(logger)
	}

	contactService := service.NewContactService(store.Contacts, notifier, logger)
	eventLogService := service.NewEventLogService(store.Events, logger)

	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set; /api/messages and /api/logs are public")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Contacts:         contactService,
		EventLogs:        eventLogService,
		DB:               store.DB,
		AllowedOrigins:   cfg.Origins(),
		Environment:      cfg.Environment,
		AdminToken:       cfg.AdminToken,
		ContactRateLimit: cfg.ContactRateLimit,
		TrustedProxies:   cfg.TrustedProxies,
		Logger:           logger,
	})
	defer router.Close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	eventLogService.Wait()
	logger.Info("server stopped")
}
