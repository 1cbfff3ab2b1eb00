package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment_notifier/internal/app"
	"appointment_notifier/internal/domain/event"
	"appointment_notifier/internal/infra/config"
	idb "appointment_notifier/internal/infra/database"
	"appointment_notifier/internal/infra/logger"
	imsg "appointment_notifier/internal/infra/messenger"
	"appointment_notifier/internal/infra/redisstore"
	"appointment_notifier/internal/infra/registry"
	"appointment_notifier/internal/infra/scheduler"
	"appointment_notifier/internal/observability/metrics"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("main")
	log.WithField("ledger_backend", cfg.LedgerBackend).Info("appointment notifier starting")

	ledger, cleanup, err := buildLedger(cfg)
	if err != nil {
		log.Fatalf("could not initialize ledger: %v", err)
	}
	defer cleanup()
	log.Info("ledger ready")

	source := registry.NewClient(cfg.RegistryBaseURL, cfg.RegistryUser, cfg.RegistryPass, cfg.RegistryClinicID, logger.Component("registry"))
	sender := imsg.NewHTTPMessenger(cfg.SenderAPIURL, cfg.SenderAuth, cfg.SenderProvider, cfg.SendAttempts, cfg.SendRetryDelay, logger.Component("messenger"))

	m := metrics.New(nil)
	temporal := app.NewTemporalValidator(cfg.ReminderLeadDays)
	classifier := app.NewClassifier(ledger, temporal, cfg.BlockedExecutorIDs, cfg.DefaultCountryCode, logger.Component("classifier"))
	cycles := app.NewCycleService(source, sender, ledger, classifier, m, logger.Component("cycle"), cfg.DaysAhead, cfg.ReminderLeadDays)

	sched := scheduler.NewCycleScheduler(cycles, cfg.IntervalMin, logger.Component("scheduler"))
	if err := sched.Start(); err != nil {
		log.Fatalf("could not start scheduler: %v", err)
	}
	// First pass right away instead of waiting a whole interval.
	go sched.RunNow()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	sched.Stop()
	log.Info("shut down gracefully")
}

// buildLedger wires the configured ledger backend and returns it with a
// close function.
func buildLedger(cfg *config.AppConfig) (event.Ledger, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return redisstore.NewRedisLedger(client), func() { client.Close() }, nil
	default:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		ledger := idb.NewPostgresLedger(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ledger.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return ledger, func() { db.Close() }, nil
	}
}
