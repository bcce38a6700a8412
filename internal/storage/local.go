package storage

import (
	"context"
	"errors"
	"time"

	"shiftboard/internal/store"
	"shiftboard/pkg/logger"
)

// LocalService is a direct wrapper over the key/value area.
type LocalService struct {
	area     store.Store
	capacity int64
	logger   *logger.Logger
}

// NewLocalService wraps area. A capacity <= 0 selects DefaultCapacity.
func NewLocalService(area store.Store, capacity int64, log *logger.Logger) *LocalService {
	if log == nil {
		log = logger.Default()
	}
	return &LocalService{
		area:     area,
		capacity: capacityOrDefault(capacity),
		logger:   log,
	}
}

// Name returns "local"
func (s *LocalService) Name() string { return BackendLocal }

// GetItem reads key from the area
func (s *LocalService) GetItem(ctx context.Context, key string) (string, bool) {
	start := time.Now()
	value, err := s.area.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.StorageOperation(ctx, BackendLocal, "get", key, time.Since(start), err)
		}
		return "", false
	}
	return value, true
}

// SetItem writes key to the area
func (s *LocalService) SetItem(ctx context.Context, key, value string) bool {
	start := time.Now()
	err := s.area.Set(ctx, key, value)
	s.logger.StorageOperation(ctx, BackendLocal, "set", key, time.Since(start), err)
	return err == nil
}

// RemoveItem deletes key from the area
func (s *LocalService) RemoveItem(ctx context.Context, key string) bool {
	start := time.Now()
	err := s.area.Delete(ctx, key)
	s.logger.StorageOperation(ctx, BackendLocal, "remove", key, time.Since(start), err)
	return err == nil
}

// Clear empties the whole area
func (s *LocalService) Clear(ctx context.Context) bool {
	start := time.Now()
	err := s.area.Clear(ctx)
	s.logger.StorageOperation(ctx, BackendLocal, "clear", "", time.Since(start), err)
	return err == nil
}

// GetObject decodes the JSON value stored under key into out
func (s *LocalService) GetObject(ctx context.Context, key string, out any) bool {
	raw, ok := s.GetItem(ctx, key)
	if !ok {
		return false
	}
	return decodeObject(ctx, s.logger, BackendLocal, key, raw, out)
}

// SetObject stores v as JSON under key
func (s *LocalService) SetObject(ctx context.Context, key string, v any) bool {
	raw, ok := encodeObject(ctx, s.logger, BackendLocal, key, v)
	if !ok {
		return false
	}
	return s.SetItem(ctx, key, raw)
}

// GetStorageInfo sums every entry in the area against the capacity
func (s *LocalService) GetStorageInfo(ctx context.Context) (Info, bool) {
	entries, err := s.area.Entries(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to compute storage info", "error", err)
		return Info{}, false
	}

	var used int64
	for key, value := range entries {
		used += store.EntrySize(key, value)
	}
	return NewInfo(used, s.capacity), true
}

// Keys lists every key in the area
func (s *LocalService) Keys(ctx context.Context) []string {
	keys, err := s.area.Keys(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list keys", "error", err)
		return nil
	}
	return keys
}
