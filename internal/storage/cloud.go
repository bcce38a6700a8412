package storage

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

// DefaultCloudPrefix namespaces cloud entries inside the shared area.
const DefaultCloudPrefix = "cloud_"

// CloudConfig configures the simulated cloud backend.
type CloudConfig struct {
	// Prefix is prepended to every key; empty selects DefaultCloudPrefix
	Prefix string

	// MinLatency and MaxLatency bound the simulated network delay inserted
	// before every operation. Both zero disables the delay.
	MinLatency time.Duration
	MaxLatency time.Duration

	// Capacity is the capacity estimate for usage summaries; <= 0 selects DefaultCapacity
	Capacity int64
}

// DefaultCloudConfig returns the simulated 100–400ms latency profile.
func DefaultCloudConfig() CloudConfig {
	return CloudConfig{
		Prefix:     DefaultCloudPrefix,
		MinLatency: 100 * time.Millisecond,
		MaxLatency: 400 * time.Millisecond,
		Capacity:   DefaultCapacity,
	}
}

// CloudService simulates a remote backend on top of the same key/value area
// as LocalService. Reads go through an unbounded in-memory cache that is
// filled on miss and on write, and emptied only by Clear.
type CloudService struct {
	area     store.Store
	prefix   string
	capacity int64
	minDelay time.Duration
	maxDelay time.Duration
	logger   *logger.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewCloudService wraps area with the cloud key prefix, cache and latency.
func NewCloudService(area store.Store, cfg CloudConfig, log *logger.Logger) *CloudService {
	if log == nil {
		log = logger.Default()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultCloudPrefix
	}
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	return &CloudService{
		area:     area,
		prefix:   cfg.Prefix,
		capacity: capacityOrDefault(cfg.Capacity),
		minDelay: cfg.MinLatency,
		maxDelay: cfg.MaxLatency,
		logger:   log,
		cache:    make(map[string]string),
	}
}

// Name returns "cloud"
func (c *CloudService) Name() string { return BackendCloud }

// CacheSize returns the number of cached entries
func (c *CloudService) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// latency picks a delay uniformly in [minDelay, maxDelay]
func (c *CloudService) latency() time.Duration {
	d := c.minDelay
	if span := c.maxDelay - c.minDelay; span > 0 {
		d += time.Duration(rand.Int64N(int64(span) + 1))
	}
	return d
}

// wait blocks for a simulated round trip or until ctx is done
func (c *CloudService) wait(ctx context.Context) error {
	d := c.latency()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *CloudService) cached(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.cache[key]
	return value, ok
}

// GetItem serves key from the cache, falling back to the area on miss
func (c *CloudService) GetItem(ctx context.Context, key string) (string, bool) {
	start := time.Now()
	if err := store.ValidateKey(key); err != nil {
		c.logger.StorageOperation(ctx, BackendCloud, "get", key, time.Since(start), err)
		return "", false
	}
	if err := c.wait(ctx); err != nil {
		c.logger.StorageOperation(ctx, BackendCloud, "get", key, time.Since(start), err)
		return "", false
	}

	if value, ok := c.cached(key); ok {
		return value, true
	}

	value, err := c.load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			c.logger.StorageOperation(ctx, BackendCloud, "get", key, time.Since(start), err)
		}
		return "", false
	}
	return value, true
}

// load reads key from the area and caches it. The write lock is held across
// the read so a concurrent clear cannot leave the old value cached.
func (c *CloudService) load(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value, ok := c.cache[key]; ok {
		return value, nil
	}
	value, err := c.area.Get(ctx, c.prefix+key)
	if err != nil {
		return "", err
	}
	c.cache[key] = value
	return value, nil
}

// SetItem writes key to the area and caches it
func (c *CloudService) SetItem(ctx context.Context, key, value string) bool {
	start := time.Now()
	err := store.ValidateKey(key)
	if err == nil {
		err = c.wait(ctx)
	}
	if err == nil {
		err = c.set(ctx, key, value)
	}
	c.logger.StorageOperation(ctx, BackendCloud, "set", key, time.Since(start), err)
	return err == nil
}

func (c *CloudService) set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.area.Set(ctx, c.prefix+key, value); err != nil {
		return err
	}
	c.cache[key] = value
	return nil
}

// RemoveItem deletes key from the area and the cache
func (c *CloudService) RemoveItem(ctx context.Context, key string) bool {
	start := time.Now()
	err := store.ValidateKey(key)
	if err == nil {
		err = c.wait(ctx)
	}
	if err == nil {
		err = c.remove(ctx, key)
	}
	c.logger.StorageOperation(ctx, BackendCloud, "remove", key, time.Since(start), err)
	return err == nil
}

func (c *CloudService) remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.area.Delete(ctx, c.prefix+key); err != nil {
		return err
	}
	delete(c.cache, key)
	return nil
}

// Clear removes every prefixed entry and empties the cache
func (c *CloudService) Clear(ctx context.Context) bool {
	start := time.Now()
	err := c.clear(ctx)
	c.logger.StorageOperation(ctx, BackendCloud, "clear", "", time.Since(start), err)
	return err == nil
}

// clear holds the cache lock from the first delete to the reset, so writes
// racing with it land either wholly before or wholly after.
func (c *CloudService) clear(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.area.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}
		if err := c.area.Delete(ctx, key); err != nil {
			return err
		}
		delete(c.cache, strings.TrimPrefix(key, c.prefix))
	}
	clear(c.cache)
	return nil
}

// GetObject decodes the JSON value stored under key into out
func (c *CloudService) GetObject(ctx context.Context, key string, out any) bool {
	raw, ok := c.GetItem(ctx, key)
	if !ok {
		return false
	}
	return decodeObject(ctx, c.logger, BackendCloud, key, raw, out)
}

// SetObject stores v as JSON under key
func (c *CloudService) SetObject(ctx context.Context, key string, v any) bool {
	raw, ok := encodeObject(ctx, c.logger, BackendCloud, key, v)
	if !ok {
		return false
	}
	return c.SetItem(ctx, key, raw)
}

// GetStorageInfo sums the prefixed entries against the cloud capacity
func (c *CloudService) GetStorageInfo(ctx context.Context) (Info, bool) {
	if err := c.wait(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to compute storage info", "backend", BackendCloud, "error", err)
		return Info{}, false
	}
	entries, err := c.area.Entries(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to compute storage info", "backend", BackendCloud, "error", err)
		return Info{}, false
	}

	var used int64
	for key, value := range entries {
		if strings.HasPrefix(key, c.prefix) {
			used += store.EntrySize(key, value)
		}
	}
	return NewInfo(used, c.capacity), true
}

// Keys lists the cloud keys with the prefix stripped
func (c *CloudService) Keys(ctx context.Context) []string {
	if err := c.wait(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to list keys", "backend", BackendCloud, "error", err)
		return nil
	}
	all, err := c.area.Keys(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to list keys", "backend", BackendCloud, "error", err)
		return nil
	}

	keys := make([]string, 0, len(all))
	for _, key := range all {
		if strings.HasPrefix(key, c.prefix) {
			keys = append(keys, strings.TrimPrefix(key, c.prefix))
		}
	}
	return keys
}
