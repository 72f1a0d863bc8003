package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

// File stores the snapshot as JSON on local disk. This is the durable
// lifetime: it survives process restarts the way a browser's localStorage
// survives tab closure.
type File[T any] struct {
	mu   sync.Mutex
	path string
}

// NewFile builds a file-backed store rooted at path. The parent directory
// is created on first save.
func NewFile[T any](path string) (*File[T], error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path required")
	}
	return &File[T]{path: path}, nil
}

func (f *File[T]) Load(_ context.Context) (T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("read snapshot %s: %w", f.path, err)
	}

	var snapshot T
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return zero, false, pkgerrors.Wrap(pkgerrors.CodeStateCorruption, err, "decode snapshot")
	}
	return snapshot, true, nil
}

func (f *File[T]) Save(_ context.Context, snapshot T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn snapshot.
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", f.path, err)
	}
	return nil
}

func (f *File[T]) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot %s: %w", f.path, err)
	}
	return nil
}
