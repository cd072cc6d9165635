package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keycard/internal/config"
	"keycard/internal/handler"
	"keycard/internal/httpmiddleware"
	"keycard/internal/metrics"
	"keycard/internal/queue"
	"keycard/internal/records"
	"keycard/internal/reloader"
	"keycard/internal/store"
	"keycard/internal/tracker"
)

func main() {
	// records are served in UTC; keep log timestamps comparable
	log.SetFlags(log.LstdFlags | log.LUTC)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *store.Redis
	if cfg.UsesRedis() {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	src, closeSrc, err := openSource(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeSrc()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Queries read an atomically swapped snapshot unless caching is off.
	var cache *records.Cache
	querySource := src
	if cfg.SnapshotCache {
		cache = records.NewCache(src)
		var q queue.Queue
		if cfg.QueueBackend == "redis" {
			q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
		} else {
			q = queue.NewInMemory(16)
		}
		rl := reloader.New(cache, q, m)
		snap, err := rl.Reload(ctx)
		if err != nil {
			return fmt.Errorf("initial load from %s source: %w", cfg.RecordSource, err)
		}
		log.Printf("snapshot %s loaded from %s source: %v", snap.ID, cfg.RecordSource, snap.Data.Counts())
		go func() {
			if err := rl.Run(ctx); err != nil {
				log.Printf("reload listener stopped: %v", err)
			}
		}()
		go publishOnHangup(ctx, q)
		querySource = cache
	} else if _, err := records.LoadAll(ctx, src); err != nil {
		// refuse to start against a source that cannot be read
		return fmt.Errorf("initial load from %s source: %w", cfg.RecordSource, err)
	}

	var pinger handler.Pinger
	if redisClient != nil {
		pinger = redisClient
	}
	h := handler.New(tracker.NewService(querySource), handler.Options{
		Cache:   cache,
		Redis:   pinger,
		Metrics: m,
		WebDir:  cfg.WebDir,
	})

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).
		OnReject(m.RateLimited.Inc).
		GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// publishOnHangup turns SIGHUP into a reload notice.
func publishOnHangup(ctx context.Context, q queue.Queue) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-hup:
			msg := queue.Message{Type: queue.TypeReload, Source: "sighup", SentAt: time.Now().UTC()}
			if err := q.Publish(ctx, msg); err != nil {
				log.Printf("queue publish failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// openSource builds the configured record source and its cleanup func.
func openSource(ctx context.Context, cfg config.App, redisClient *store.Redis) (records.Source, func(), error) {
	switch cfg.RecordSource {
	case config.SourceSQL:
		db, err := store.NewDB(ctx, cfg.SQLDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return records.NewRepository(db), func() { _ = db.Close() }, nil
	case config.SourceRedis:
		return records.NewRedisSource(redisClient.Client, cfg.RedisPrefix), func() {}, nil
	default:
		return records.NewFileSource(cfg.AssetsDir), func() {}, nil
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
