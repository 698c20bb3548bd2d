package session

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite[testSave](filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("Unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	ctx := context.Background()

	store, err := OpenSQLite[testSave](path)
	if err != nil {
		t.Fatalf("Unexpected error opening store: %v", err)
	}
	if err := store.Put(ctx, "ada", testSave{Name: "Ada", Level: 7}); err != nil {
		t.Fatalf("Unexpected error on Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Unexpected error on Close: %v", err)
	}

	store, err = OpenSQLite[testSave](path)
	if err != nil {
		t.Fatalf("Unexpected error reopening store: %v", err)
	}
	defer store.Close()
	got, ok, err := store.Get(ctx, "ada")
	if err != nil || !ok {
		t.Fatalf("Expected the save after reopening, got ok=%v err=%v", ok, err)
	}
	if got.Level != 7 {
		t.Errorf("Expected level 7, got %d", got.Level)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite[testSave]("  "); err == nil {
		t.Error("Expected an error for an empty path")
	}
}
