// Package store provides the key/value area that backs the storage services:
// string keys mapped to string values, enumerable, with an optional byte quota.
package store

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Common errors for the key/value area
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the store
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when an invalid key is provided
	ErrInvalidKey = errors.New("invalid key")

	// ErrQuotaExceeded is returned when a write would push the area over its quota
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStoreClosed is returned when attempting to operate on a closed store
	ErrStoreClosed = errors.New("store is closed")
)

// BytesPerChar is the per-character cost used when sizing entries.
const BytesPerChar = 2

// Store is the key/value area consumed by the storage services.
// All methods are safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	// Returns ErrQuotaExceeded when the area has no room left for it.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns a sorted snapshot of all keys
	Keys(ctx context.Context) ([]string, error)

	// Entries returns a snapshot copy of all key/value pairs
	Entries(ctx context.Context) (map[string]string, error)

	// Len returns the number of entries
	Len(ctx context.Context) (int, error)

	// Clear removes every entry
	Clear(ctx context.Context) error

	// Close releases resources. After Close every other call returns ErrStoreClosed.
	// Close is idempotent.
	Close() error
}

// ValidateKey checks a key according to store rules
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	// Keys cannot contain null bytes
	if strings.IndexByte(key, 0) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

// EntrySize returns the number of bytes an entry is accounted for:
// BytesPerChar for every character of the key and of the value.
func EntrySize(key, value string) int64 {
	return int64(utf8.RuneCountInString(key)+utf8.RuneCountInString(value)) * BytesPerChar
}
