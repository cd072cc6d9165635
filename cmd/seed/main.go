package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keycard/internal/config"
	"keycard/internal/queue"
	"keycard/internal/records"
	"keycard/internal/store"
)

// Seed copies the JSON assets into the configured SQL or Redis backend and
// tells running API processes to reload their snapshot.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("seed failed: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App) error {
	ds, err := records.LoadAll(ctx, records.NewFileSource(cfg.AssetsDir))
	if err != nil {
		return fmt.Errorf("read assets from %s: %w", cfg.AssetsDir, err)
	}
	log.Printf("read assets from %s: %v", cfg.AssetsDir, ds.Counts())

	var redisClient *store.Redis
	if cfg.UsesRedis() {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	switch cfg.RecordSource {
	case config.SourceSQL:
		db, err := store.NewDB(ctx, cfg.SQLDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := records.NewRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		if err := repo.Replace(ctx, ds); err != nil {
			return fmt.Errorf("write %s tables: %w", cfg.SQLDriver, err)
		}
		log.Printf("seeded %s database", cfg.SQLDriver)
	case config.SourceRedis:
		src := records.NewRedisSource(redisClient.Client, cfg.RedisPrefix)
		if err := src.Replace(ctx, ds); err != nil {
			return fmt.Errorf("write redis keys: %w", err)
		}
		log.Printf("seeded redis keys under %s", src.Key("*"))
	default:
		return fmt.Errorf("RECORD_SOURCE=%s reads the assets directly; nothing to seed", cfg.RecordSource)
	}

	// an in-memory queue has no listeners outside this process
	if cfg.QueueBackend != "redis" {
		return nil
	}
	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	msg := queue.Message{Type: queue.TypeReload, Source: cfg.RecordSource, SentAt: time.Now().UTC()}
	if err := q.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish reload: %w", err)
	}
	log.Println("reload notice published")
	return nil
}
