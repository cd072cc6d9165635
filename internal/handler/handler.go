package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"keycard/internal/httpmiddleware"
	"keycard/internal/metrics"
	"keycard/internal/records"
	"keycard/internal/tracker"
)

// Querier answers entry queries. *tracker.Service satisfies it.
type Querier interface {
	Query(ctx context.Context, q tracker.Query) ([]tracker.FlatRecord, error)
}

// Pinger reports whether a dependency is reachable. *store.Redis satisfies it.
type Pinger interface {
	Healthy(ctx context.Context) bool
}

type Handler struct {
	svc     Querier
	cache   *records.Cache // nil when queries read the source directly
	redis   Pinger         // nil when redis is not configured
	metrics *metrics.Metrics
	webDir  string
}

// Options carries the optional collaborators of a Handler.
type Options struct {
	Cache   *records.Cache
	Redis   Pinger
	Metrics *metrics.Metrics
	WebDir  string
}

func New(svc Querier, opts Options) *Handler {
	return &Handler{
		svc:     svc,
		cache:   opts.Cache,
		redis:   opts.Redis,
		metrics: opts.Metrics,
		webDir:  opts.WebDir,
	}
}

// Register mounts the page, API and health routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)
	r.GET("/api/entries", h.ListEntries)

	if h.webDir != "" {
		r.StaticFile("/", filepath.Join(h.webDir, "index.html"))
		r.Static("/static", filepath.Join(h.webDir, "static"))
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}

	if h.cache != nil {
		snap := h.cache.Current()
		if snap == nil {
			status = http.StatusServiceUnavailable
			body["snapshot"] = nil
		} else {
			body["snapshot"] = gin.H{
				"id":        snap.ID,
				"loaded_at": snap.LoadedAt,
				"records":   snap.Data.Counts(),
			}
		}
	}
	if h.redis != nil {
		healthy := h.redis.Healthy(c.Request.Context())
		body["redis"] = healthy
		if !healthy {
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

// ---------- Entries ----------

// ListEntries serves GET /api/entries?name=&start_date=&end_date=.
func (h *Handler) ListEntries(c *gin.Context) {
	q := tracker.Query{
		Name:      c.Query("name"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	started := time.Now()
	results, err := h.svc.Query(c.Request.Context(), q)
	elapsed := time.Since(started)
	if err != nil {
		var verr *tracker.ValidationError
		if errors.As(err, &verr) {
			h.metrics.ObserveQuery("invalid", elapsed, 0)
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		h.metrics.ObserveQuery("error", elapsed, 0)
		log.Printf("request %s: entries query failed: %v", httpmiddleware.GetRequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entries"})
		return
	}

	h.metrics.ObserveQuery("ok", elapsed, len(results))
	if results == nil {
		results = []tracker.FlatRecord{}
	}
	c.JSON(http.StatusOK, results)
}
