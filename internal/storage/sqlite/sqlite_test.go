package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/storage"
)

func newStore(t *testing.T, path string) *Store {
	t.Helper()
	ctx := context.Background()

	sqlDB, err := db.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.RunSQLiteMigrations(sqlDB, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(sqlDB)
}

func TestStoreRoundTrip(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "cart.db"))
	ctx := context.Background()

	if _, err := s.Get(ctx, "cart"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Put(ctx, "cart", []byte(`[{"title":"A","price":1,"image":"","quantity":1}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "cart", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := s.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("expected overwritten value, got %s", got)
	}

	if err := s.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "cart"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	first := newStore(t, path)
	if err := first.Put(ctx, "cart", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := first.db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := newStore(t, path)
	got, err := second.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("unexpected value %s", got)
	}
}
