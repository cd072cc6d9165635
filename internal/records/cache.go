package records

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrNoSnapshot is returned by Cache reads before the first successful load.
var ErrNoSnapshot = errors.New("records: no snapshot loaded")

// Snapshot is an immutable, fully loaded Dataset.
type Snapshot struct {
	ID       string
	LoadedAt time.Time
	Data     Dataset
}

// Cache serves reads from an in-process Snapshot of an underlying Source.
// Callers must treat the returned slices as read-only.
type Cache struct {
	src     Source
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes reloads
}

// NewCache wraps src. Call Reload before serving reads.
func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Reload loads a fresh snapshot and publishes it only if every collection
// loaded. On failure the previous snapshot stays current.
func (c *Cache) Reload(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ds, err := LoadAll(ctx, c.src)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Data:     ds,
	}
	c.current.Store(snap)
	return snap, nil
}

// Current returns the published snapshot, or nil before the first load.
func (c *Cache) Current() *Snapshot {
	return c.current.Load()
}

func (c *Cache) snapshot() (*Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Dataset returns all four collections from the same snapshot.
func (c *Cache) Dataset(context.Context) (Dataset, error) {
	snap, err := c.snapshot()
	if err != nil {
		return Dataset{}, err
	}
	return snap.Data, nil
}

func (c *Cache) Employees(context.Context) ([]Employee, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Data.Employees, nil
}

func (c *Cache) KeyCardEntries(context.Context) ([]KeyCardEntry, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Data.Entries, nil
}

func (c *Cache) Images(context.Context) ([]Image, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Data.Images, nil
}

func (c *Cache) Categories(context.Context) ([]Category, error) {
	snap, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Data.Categories, nil
}
