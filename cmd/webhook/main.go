package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment_notifier/internal/infra/config"
	"appointment_notifier/internal/infra/logger"
	"appointment_notifier/internal/infra/webhook"
	"appointment_notifier/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("webhook")

	m := metrics.New(nil)
	srv := webhook.NewServer(cfg.WebhookVerifyToken, m, log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebhookPort),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.WebhookPort).Info("webhook receiver listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("webhook server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down webhook receiver...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("webhook shutdown error")
	}
	log.Info("webhook receiver stopped")
}
