package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront-engine/pkg/errors"
)

type testSnapshot struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemory[testSnapshot]()
	ctx := context.Background()

	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, testSnapshot{Name: "cart", Count: 3}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected snapshot, found=%v err=%v", found, err)
	}
	if got.Name != "cart" || got.Count != 3 {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, found, _ := store.Load(ctx); found {
		t.Fatal("expected cleared store to be empty")
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "cart.json")
	store, err := NewFile[testSnapshot](path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	ctx := context.Background()

	if _, found, err := store.Load(ctx); err != nil || found {
		t.Fatalf("missing file must read as absent, found=%v err=%v", found, err)
	}

	if err := store.Save(ctx, testSnapshot{Name: "durable", Count: 7}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, found, err := store.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected snapshot, found=%v err=%v", found, err)
	}
	if got.Count != 7 {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clearing an absent snapshot must be a no-op: %v", err)
	}
}

func TestFileCorruptSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cart.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := NewFile[testSnapshot](path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}

	_, found, err := store.Load(context.Background())
	if found {
		t.Fatal("corrupt snapshot must not be reported as found")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateCorruption) {
		t.Fatalf("expected STATE_CORRUPTION, got %v", err)
	}
}

func TestNewFileRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := NewFile[testSnapshot](""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
