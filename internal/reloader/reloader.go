package reloader

import (
	"context"
	"log"

	"keycard/internal/metrics"
	"keycard/internal/queue"
	"keycard/internal/records"
)

// Reloader rebuilds the record snapshot whenever a reload notice arrives.
type Reloader struct {
	cache   *records.Cache
	queue   queue.Queue
	metrics *metrics.Metrics
}

// New creates a reloader. metrics may be nil.
func New(cache *records.Cache, q queue.Queue, m *metrics.Metrics) *Reloader {
	return &Reloader{cache: cache, queue: q, metrics: m}
}

// Reload loads a fresh snapshot and records the outcome.
func (r *Reloader) Reload(ctx context.Context) (*records.Snapshot, error) {
	snap, err := r.cache.Reload(ctx)
	if err != nil {
		r.metrics.ObserveReload(nil, err)
		return nil, err
	}
	r.metrics.ObserveReload(snap.Data.Counts(), nil)
	return snap, nil
}

// Run consumes the queue until ctx ends. Failed reloads keep the previous
// snapshot in place.
func (r *Reloader) Run(ctx context.Context) error {
	msgs, err := r.queue.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		if msg.Type != queue.TypeReload {
			continue
		}
		snap, err := r.Reload(ctx)
		if err != nil {
			log.Printf("snapshot reload (from %s) failed, keeping previous: %v", msg.Source, err)
			continue
		}
		log.Printf("snapshot %s loaded: %v", snap.ID, snap.Data.Counts())
	}
	return nil
}
