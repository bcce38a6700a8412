package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shiftboard/pkg/logger"
)

// PersistentStoreConfig holds configuration for the PersistentStore
type PersistentStoreConfig struct {
	// AutoSave schedules a save after each modification
	AutoSave bool

	// SaveInterval is the period of background saves; default 30 seconds
	SaveInterval time.Duration

	// SaveOnShutdown saves a final snapshot on Close
	SaveOnShutdown bool

	// RetryAttempts is how many times a failed save is retried; default 3
	RetryAttempts int

	// RetryDelay is the pause between attempts; default 1 second
	RetryDelay time.Duration
}

// DefaultPersistentStoreConfig returns a configuration with sensible defaults
func DefaultPersistentStoreConfig() PersistentStoreConfig {
	return PersistentStoreConfig{
		AutoSave:       true,
		SaveInterval:   30 * time.Second,
		SaveOnShutdown: true,
		RetryAttempts:  3,
		RetryDelay:     1 * time.Second,
	}
}

// PersistentStore wraps a Store and snapshots it through a Persistence,
// so the area survives restarts the way browser storage survives reloads.
type PersistentStore struct {
	store       Store
	persistence Persistence
	config      PersistentStoreConfig

	// saveChannel queues asynchronous saves; a full buffer means one is pending
	saveChannel chan struct{}

	periodicSaveTimer *time.Timer
	shutdownOnce      sync.Once

	// closed is guarded by mutex; senders on saveChannel hold the read lock
	closed bool
	mutex  sync.RWMutex

	wg sync.WaitGroup
}

// NewPersistentStore wraps store, restoring any snapshot found in persistence
func NewPersistentStore(store Store, persistence Persistence, config PersistentStoreConfig) (*PersistentStore, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if persistence == nil {
		return nil, fmt.Errorf("persistence cannot be nil")
	}

	if config.SaveInterval == 0 {
		config.SaveInterval = 30 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}

	ps := &PersistentStore{
		store:       store,
		persistence: persistence,
		config:      config,
		saveChannel: make(chan struct{}, 1),
	}

	if err := ps.loadData(); err != nil {
		logger.Warn("failed to load existing data", "error", err)
	}

	ps.wg.Add(1)
	go ps.saveProcessor()

	if config.SaveInterval > 0 {
		ps.startPeriodicSave()
	}

	return ps, nil
}

// loadData copies the last snapshot into the wrapped store
func (ps *PersistentStore) loadData() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snapshot, err := ps.persistence.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshotFound) {
			logger.Debug("no existing snapshot found, starting with empty store")
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	for key, value := range snapshot.Data {
		if err := ps.store.Set(ctx, key, value); err != nil {
			logger.ErrorContext(ctx, "failed to load key into store", "key", key, "error", err)
		}
	}

	logger.InfoContext(ctx, "loaded data from persistence", "entries", len(snapshot.Data))
	return nil
}

// createSnapshot captures the current state of the wrapped store
func (ps *PersistentStore) createSnapshot() (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := ps.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return &Snapshot{
		Data:      entries,
		Version:   SnapshotVersion,
		Timestamp: time.Now().Unix(),
	}, nil
}

// saveWithRetry saves snapshot, retrying RetryAttempts times
func (ps *PersistentStore) saveWithRetry(snapshot *Snapshot) error {
	var lastErr error

	for attempt := 0; attempt <= ps.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := ps.persistence.Save(ctx, snapshot)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "save succeeded after retry", "attempt", attempt)
			}
			cancel()
			return nil
		}
		cancel()

		lastErr = err
		logger.Warn("save attempt failed", "attempt", attempt, "error", err)

		if attempt < ps.config.RetryAttempts {
			time.Sleep(ps.config.RetryDelay)
		}
	}

	return fmt.Errorf("failed to save after %d attempts: %w", ps.config.RetryAttempts+1, lastErr)
}

// triggerSave requests an asynchronous save
func (ps *PersistentStore) triggerSave() {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	if ps.closed {
		return
	}

	select {
	case ps.saveChannel <- struct{}{}:
	default:
	}
}

// saveProcessor handles queued saves until the channel is closed
func (ps *PersistentStore) saveProcessor() {
	defer ps.wg.Done()

	for range ps.saveChannel {
		ps.mutex.RLock()
		closed := ps.closed
		ps.mutex.RUnlock()

		if closed {
			continue
		}

		snapshot, err := ps.createSnapshot()
		if err != nil {
			logger.Error("failed to create snapshot", "error", err)
			continue
		}

		if err := ps.saveWithRetry(snapshot); err != nil {
			logger.Error("failed to save snapshot", "error", err)
		} else {
			logger.Debug("snapshot saved", "entries", len(snapshot.Data))
		}
	}
}

// startPeriodicSave arms the periodic save timer
func (ps *PersistentStore) startPeriodicSave() {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	if ps.closed {
		return
	}

	ps.periodicSaveTimer = time.AfterFunc(ps.config.SaveInterval, func() {
		ps.triggerSave()
		ps.startPeriodicSave()
	})
}

func (ps *PersistentStore) isClosed() bool {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()
	return ps.closed
}

// Get retrieves a value from the wrapped store
func (ps *PersistentStore) Get(ctx context.Context, key string) (string, error) {
	if ps.isClosed() {
		return "", ErrStoreClosed
	}
	return ps.store.Get(ctx, key)
}

// Set stores a pair and schedules a save when AutoSave is on
func (ps *PersistentStore) Set(ctx context.Context, key string, value string) error {
	if ps.isClosed() {
		return ErrStoreClosed
	}
	if err := ps.store.Set(ctx, key, value); err != nil {
		return err
	}
	if ps.config.AutoSave {
		ps.triggerSave()
	}
	return nil
}

// Delete removes a pair and schedules a save when AutoSave is on
func (ps *PersistentStore) Delete(ctx context.Context, key string) error {
	if ps.isClosed() {
		return ErrStoreClosed
	}
	if err := ps.store.Delete(ctx, key); err != nil {
		return err
	}
	if ps.config.AutoSave {
		ps.triggerSave()
	}
	return nil
}

// Keys returns all keys from the wrapped store
func (ps *PersistentStore) Keys(ctx context.Context) ([]string, error) {
	if ps.isClosed() {
		return nil, ErrStoreClosed
	}
	return ps.store.Keys(ctx)
}

// Entries returns all entries from the wrapped store
func (ps *PersistentStore) Entries(ctx context.Context) (map[string]string, error) {
	if ps.isClosed() {
		return nil, ErrStoreClosed
	}
	return ps.store.Entries(ctx)
}

// Len returns the number of entries in the wrapped store
func (ps *PersistentStore) Len(ctx context.Context) (int, error) {
	if ps.isClosed() {
		return 0, ErrStoreClosed
	}
	return ps.store.Len(ctx)
}

// Clear removes all entries and schedules a save when AutoSave is on
func (ps *PersistentStore) Clear(ctx context.Context) error {
	if ps.isClosed() {
		return ErrStoreClosed
	}
	if err := ps.store.Clear(ctx); err != nil {
		return err
	}
	if ps.config.AutoSave {
		ps.triggerSave()
	}
	return nil
}

// Close stops background saves, writes a final snapshot if configured and
// closes the wrapped store
func (ps *PersistentStore) Close() error {
	var closeErr error

	ps.shutdownOnce.Do(func() {
		ps.mutex.Lock()
		ps.closed = true
		if ps.periodicSaveTimer != nil {
			ps.periodicSaveTimer.Stop()
		}
		ps.mutex.Unlock()

		close(ps.saveChannel)
		ps.wg.Wait()

		if ps.config.SaveOnShutdown {
			snapshot, err := ps.createSnapshot()
			if err != nil {
				logger.Error("failed to create final snapshot", "error", err)
				closeErr = err
			} else if err := ps.saveWithRetry(snapshot); err != nil {
				logger.Error("failed to save final snapshot", "error", err)
				closeErr = err
			} else {
				logger.Info("final snapshot saved on shutdown", "entries", len(snapshot.Data))
			}
		}

		if err := ps.store.Close(); err != nil {
			logger.Error("failed to close underlying store", "error", err)
			if closeErr == nil {
				closeErr = err
			}
		}
	})

	return closeErr
}
