package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SnapshotVersion is the format version written by this package
const SnapshotVersion = "1.0"

// Persistence saves and loads snapshots of a key/value area
type Persistence interface {
	// Save persists the given snapshot
	Save(ctx context.Context, snapshot *Snapshot) error

	// Load returns the last saved snapshot, or an error wrapping
	// ErrNoSnapshotFound when nothing was saved yet
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is the serialized state of a key/value area
type Snapshot struct {
	// Data contains all key/value pairs
	Data map[string]string `json:"data"`

	// Version identifies the snapshot format
	Version string `json:"version"`

	// Timestamp records when the snapshot was created (Unix seconds)
	Timestamp int64 `json:"timestamp"`
}

// Persistence-specific errors
var (
	// ErrSnapshotCorrupted indicates that the loaded snapshot is invalid
	ErrSnapshotCorrupted = errors.New("snapshot data is corrupted")

	// ErrNoSnapshotFound indicates that no snapshot data was found
	ErrNoSnapshotFound = errors.New("no snapshot found")
)

// NewPersistenceError wraps err with the failing operation
func NewPersistenceError(operation string, err error) error {
	return fmt.Errorf("persistence %s error: %w", operation, err)
}

// ValidateSnapshot checks that a snapshot carries the required fields
func ValidateSnapshot(snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if snapshot.Data == nil {
		return fmt.Errorf("snapshot data is nil")
	}
	if snapshot.Version == "" {
		return fmt.Errorf("snapshot version is empty")
	}
	if snapshot.Timestamp <= 0 {
		return fmt.Errorf("snapshot timestamp is invalid")
	}
	return nil
}

// JSONFilePersistence stores snapshots as an indented JSON file
type JSONFilePersistence struct {
	filePath string
	mutex    sync.RWMutex
}

// NewJSONFilePersistence creates a JSON file persistence writing to filePath
func NewJSONFilePersistence(filePath string) *JSONFilePersistence {
	return &JSONFilePersistence{filePath: filePath}
}

// tempFileName returns a unique sibling path for atomic writes
func (j *JSONFilePersistence) tempFileName() (string, error) {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return j.filePath + ".tmp." + hex.EncodeToString(randomBytes), nil
}

// Save writes the snapshot to a temp file and renames it over the target
func (j *JSONFilePersistence) Save(ctx context.Context, snapshot *Snapshot) error {
	if err := ValidateSnapshot(snapshot); err != nil {
		return NewPersistenceError("save", err)
	}
	if err := ctx.Err(); err != nil {
		return NewPersistenceError("save", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return NewPersistenceError("save", fmt.Errorf("failed to marshal snapshot: %w", err))
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	dir := filepath.Dir(j.filePath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return NewPersistenceError("save", fmt.Errorf("failed to create directory: %w", err))
		}
	}

	tempFile, err := j.tempFileName()
	if err != nil {
		return NewPersistenceError("save", err)
	}
	defer func() {
		if _, err := os.Stat(tempFile); err == nil {
			os.Remove(tempFile)
		}
	}()

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return NewPersistenceError("save", fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := os.Rename(tempFile, j.filePath); err != nil {
		return NewPersistenceError("save", fmt.Errorf("failed to rename temp file: %w", err))
	}
	return nil
}

// Load reads the snapshot file
func (j *JSONFilePersistence) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewPersistenceError("load", err)
	}

	j.mutex.RLock()
	defer j.mutex.RUnlock()

	data, err := os.ReadFile(j.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewPersistenceError("load", ErrNoSnapshotFound)
		}
		return nil, NewPersistenceError("load", fmt.Errorf("failed to read file: %w", err))
	}
	if len(data) == 0 {
		return nil, NewPersistenceError("load", fmt.Errorf("file is empty"))
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, NewPersistenceError("load", fmt.Errorf("failed to unmarshal snapshot: %w", err))
	}
	if err := ValidateSnapshot(&snapshot); err != nil {
		return nil, NewPersistenceError("load", ErrSnapshotCorrupted)
	}
	return &snapshot, nil
}
