// Command seedledger marks every appointment already present in the
// registry as processed WITHOUT sending any message. Run it once before
// the first start of the notifier so patients with pre-existing
// appointments are not flooded with stale confirmations.
package main

import (
	"context"
	"flag"
	"time"

	"appointment_notifier/internal/app"
	"appointment_notifier/internal/domain/event"
	"appointment_notifier/internal/infra/config"
	idb "appointment_notifier/internal/infra/database"
	"appointment_notifier/internal/infra/logger"
	"appointment_notifier/internal/infra/redisstore"
	"appointment_notifier/internal/infra/registry"

	"github.com/redis/go-redis/v9"
)

const maxPages = 100

func main() {
	var fromFlag, toFlag string
	flag.StringVar(&fromFlag, "from", "", "window start, YYYY-MM-DD (default: 60 days ago)")
	flag.StringVar(&toFlag, "to", "", "window end, YYYY-MM-DD (default: today + DAYS_AHEAD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("could not load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Component("seedledger")

	today := time.Now()
	from := today.AddDate(0, 0, -60)
	to := today.AddDate(0, 0, cfg.DaysAhead)
	if fromFlag != "" {
		if from, err = time.ParseInLocation("2006-01-02", fromFlag, time.Local); err != nil {
			log.Fatalf("invalid -from: %v", err)
		}
	}
	if toFlag != "" {
		if to, err = time.ParseInLocation("2006-01-02", toFlag, time.Local); err != nil {
			log.Fatalf("invalid -to: %v", err)
		}
	}

	ctx := context.Background()
	ledger, cleanup, err := buildLedger(ctx, cfg)
	if err != nil {
		log.Fatalf("could not initialize ledger: %v", err)
	}
	defer cleanup()

	source := registry.NewClient(cfg.RegistryBaseURL, cfg.RegistryUser, cfg.RegistryPass, cfg.RegistryClinicID, logger.Component("registry"))

	log.Infof("seeding ledger for %s .. %s, no messages will be sent", from.Format("2006-01-02"), to.Format("2006-01-02"))

	var marked, existing, skipped int
	for page := 0; page < maxPages; page++ {
		p, err := source.FetchPage(ctx, from, to, page)
		if err != nil {
			log.Fatalf("fetch page %d: %v", page, err)
		}
		if len(p.Records) == 0 {
			break
		}
		for _, rec := range p.Records {
			key, err := app.DeriveEventKey(rec)
			if err != nil {
				skipped++
				log.WithError(err).Debug("record skipped")
				continue
			}
			seen, err := ledger.Contains(ctx, key)
			if err != nil {
				log.Fatalf("ledger lookup for %s: %v", key, err)
			}
			if seen {
				existing++
				continue
			}
			if err := ledger.Record(ctx, key); err != nil {
				log.Fatalf("ledger record for %s: %v", key, err)
			}
			marked++
		}
		if !p.HasMore {
			break
		}
	}

	log.Infof("seed finished: %d marked, %d already present, %d skipped", marked, existing, skipped)
	log.Info("only appointments created after this point will trigger messages")
}

func buildLedger(ctx context.Context, cfg *config.AppConfig) (event.Ledger, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
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
		if err := ledger.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return ledger, func() { db.Close() }, nil
	}
}
