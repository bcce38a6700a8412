// Package storage implements the local and cloud storage services and the
// manager that forwards to whichever of them is selected.
//
// Services never return errors: every failure is logged and reported as a
// false/empty result, so callers in the UI layer cannot be broken by storage.
package storage

import (
	"context"
	"encoding/json"
	"math"

	"github.com/dustin/go-humanize"

	"shiftboard/pkg/logger"
)

// DefaultCapacity is the capacity estimate used for usage summaries (5 MiB).
const DefaultCapacity int64 = 5 * 1024 * 1024

// Backend names
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Service is the contract shared by the local and cloud backends and the Manager.
type Service interface {
	// Name identifies the backend ("local" or "cloud")
	Name() string

	// GetItem returns the stored string and true, or "" and false when the
	// key is missing or the read failed
	GetItem(ctx context.Context, key string) (string, bool)

	// SetItem stores value under key and reports success
	SetItem(ctx context.Context, key, value string) bool

	// RemoveItem deletes key and reports success
	RemoveItem(ctx context.Context, key string) bool

	// Clear removes every entry owned by the backend and reports success
	Clear(ctx context.Context) bool

	// GetObject decodes the JSON stored under key into out. It returns false
	// when the key is missing or the stored text is not valid JSON for out.
	GetObject(ctx context.Context, key string, out any) bool

	// SetObject stores v encoded as JSON
	SetObject(ctx context.Context, key string, v any) bool

	// GetStorageInfo summarizes the bytes used by the backend
	GetStorageInfo(ctx context.Context) (Info, bool)

	// Keys lists the keys owned by the backend
	Keys(ctx context.Context) []string
}

// Info is a usage summary recomputed on every request.
type Info struct {
	Used           int64   `json:"used"`
	Available      int64   `json:"available"`
	Capacity       int64   `json:"capacity"`
	UsedPercent    float64 `json:"usedPercent"`
	UsedHuman      string  `json:"usedHuman"`
	AvailableHuman string  `json:"availableHuman"`
}

// NewInfo builds the summary for used bytes out of capacity.
// UsedPercent is rounded to two decimals.
func NewInfo(used, capacity int64) Info {
	available := capacity - used
	if available < 0 {
		available = 0
	}
	var percent float64
	if capacity > 0 {
		percent = math.Round(float64(used)/float64(capacity)*10000) / 100
	}
	return Info{
		Used:           used,
		Available:      available,
		Capacity:       capacity,
		UsedPercent:    percent,
		UsedHuman:      humanize.IBytes(uint64(used)),
		AvailableHuman: humanize.IBytes(uint64(available)),
	}
}

func decodeObject(ctx context.Context, log *logger.Logger, backend, key, raw string, out any) bool {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.WarnContext(ctx, "stored value is not valid JSON",
			"backend", backend,
			"key", key,
			"error", err,
		)
		return false
	}
	return true
}

func encodeObject(ctx context.Context, log *logger.Logger, backend, key string, v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		log.ErrorContext(ctx, "value cannot be encoded as JSON",
			"backend", backend,
			"key", key,
			"error", err,
		)
		return "", false
	}
	return string(data), true
}

func capacityOrDefault(capacity int64) int64 {
	if capacity <= 0 {
		return DefaultCapacity
	}
	return capacity
}
