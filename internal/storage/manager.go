package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"shiftboard/pkg/logger"
)

// ErrUnknownBackend is returned by Backends.Lookup for an unregistered name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Manager forwards every Service call to the currently selected backend.
// It is itself a Service, so callers do not need to know which backend is active.
type Manager struct {
	mu      sync.RWMutex
	current Service
	logger  *logger.Logger
}

// NewManager returns a Manager routing to backend.
func NewManager(backend Service, log *logger.Logger) *Manager {
	if backend == nil {
		panic("storage: NewManager called with nil backend")
	}
	if log == nil {
		log = logger.Default()
	}
	return &Manager{current: backend, logger: log}
}

// SetStorageService selects backend for every subsequent call. A nil backend is ignored.
func (m *Manager) SetStorageService(backend Service) {
	if backend == nil {
		m.logger.Warn("ignoring nil storage backend")
		return
	}

	m.mu.Lock()
	previous := m.current
	m.current = backend
	m.mu.Unlock()

	m.logger.Info("storage backend switched", "from", previous.Name(), "to", backend.Name())
}

// StorageService returns the selected backend
func (m *Manager) StorageService() Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Name returns the selected backend's name
func (m *Manager) Name() string { return m.StorageService().Name() }

func (m *Manager) GetItem(ctx context.Context, key string) (string, bool) {
	return m.StorageService().GetItem(ctx, key)
}

func (m *Manager) SetItem(ctx context.Context, key, value string) bool {
	return m.StorageService().SetItem(ctx, key, value)
}

func (m *Manager) RemoveItem(ctx context.Context, key string) bool {
	return m.StorageService().RemoveItem(ctx, key)
}

func (m *Manager) Clear(ctx context.Context) bool {
	return m.StorageService().Clear(ctx)
}

func (m *Manager) GetObject(ctx context.Context, key string, out any) bool {
	return m.StorageService().GetObject(ctx, key, out)
}

func (m *Manager) SetObject(ctx context.Context, key string, v any) bool {
	return m.StorageService().SetObject(ctx, key, v)
}

func (m *Manager) GetStorageInfo(ctx context.Context) (Info, bool) {
	return m.StorageService().GetStorageInfo(ctx)
}

func (m *Manager) Keys(ctx context.Context) []string {
	return m.StorageService().Keys(ctx)
}

// MigrateData copies keys from source to target; see the package-level MigrateData.
func (m *Manager) MigrateData(ctx context.Context, source, target Service, keys []string) int {
	copied := MigrateData(ctx, source, target, keys)
	m.logger.InfoContext(ctx, "storage migration finished",
		"from", source.Name(),
		"to", target.Name(),
		"requested", len(keys),
		"copied", copied,
	)
	return copied
}

// MigrateData copies the string value of every key present in source to
// target and returns how many were copied. Keys absent from source are left
// untouched in target. A failed write is not retried.
func MigrateData(ctx context.Context, source, target Service, keys []string) int {
	copied := 0
	for _, key := range keys {
		value, ok := source.GetItem(ctx, key)
		if !ok {
			continue
		}
		if target.SetItem(ctx, key, value) {
			copied++
		}
	}
	return copied
}

// Backends indexes services by name
type Backends map[string]Service

// NewBackends registers services under their Name()
func NewBackends(services ...Service) Backends {
	b := make(Backends, len(services))
	for _, s := range services {
		b[s.Name()] = s
	}
	return b
}

// Lookup returns the service registered under name
func (b Backends) Lookup(name string) (Service, error) {
	s, ok := b[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return s, nil
}

// Names returns the registered names, sorted
func (b Backends) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
