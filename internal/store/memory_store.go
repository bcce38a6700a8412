package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store with an in-memory map guarded by a RWMutex
type MemoryStore struct {
	// data holds the key/value pairs
	data map[string]string

	// used is the sum of EntrySize over data
	used int64

	// quota bounds used; 0 means unlimited
	quota int64

	mutex  sync.RWMutex
	closed bool
}

// NewMemoryStore creates an unbounded MemoryStore
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithQuota(0)
}

// NewMemoryStoreWithQuota creates a MemoryStore that refuses writes beyond quota bytes
func NewMemoryStoreWithQuota(quota int64) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]string),
		quota: quota,
	}
}

// Used returns the number of bytes currently accounted for
func (ms *MemoryStore) Used() int64 {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.used
}

// Get retrieves the value associated with the given key
func (ms *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return "", ErrStoreClosed
	}

	value, exists := ms.data[key]
	if !exists {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores a key/value pair, enforcing the quota
func (ms *MemoryStore) Set(ctx context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}

	used := ms.used + EntrySize(key, value)
	if old, exists := ms.data[key]; exists {
		used -= EntrySize(key, old)
	}
	if ms.quota > 0 && used > ms.quota {
		return ErrQuotaExceeded
	}

	ms.data[key] = value
	ms.used = used
	return nil
}

// Delete removes a key/value pair from the store
func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}

	if old, exists := ms.data[key]; exists {
		ms.used -= EntrySize(key, old)
		delete(ms.data, key)
	}
	return nil
}

// Keys returns all keys currently stored, sorted
func (ms *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return nil, ErrStoreClosed
	}

	keys := make([]string, 0, len(ms.data))
	for key := range ms.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Entries returns a copy of all key/value pairs
func (ms *MemoryStore) Entries(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return nil, ErrStoreClosed
	}

	entries := make(map[string]string, len(ms.data))
	for key, value := range ms.data {
		entries[key] = value
	}
	return entries, nil
}

// Len returns the current number of key/value pairs
func (ms *MemoryStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if ms.closed {
		return 0, ErrStoreClosed
	}
	return len(ms.data), nil
}

// Clear removes all key/value pairs atomically
func (ms *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if ms.closed {
		return ErrStoreClosed
	}

	ms.data = make(map[string]string)
	ms.used = 0
	return nil
}

// Close closes the store
func (ms *MemoryStore) Close() error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.closed = true
	return nil
}
