package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/store"
)

// NewStore opens a SQLite database file in a per-test temporary directory
// and closes it when the test ends.
func NewStore(t testing.TB) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(context.Background(), filepath.Join(t.TempDir(), "pricescout.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewStateRepository returns a migrated SQLite state repository.
func NewStateRepository(t testing.TB) *services.SQLiteStateRepository {
	t.Helper()
	repo, err := services.NewSQLiteStateRepository(context.Background(), NewStore(t))
	if err != nil {
		t.Fatalf("migrate state repository: %v", err)
	}
	return repo
}

// NewViewStates returns saved view storage over a fresh SQLite database.
func NewViewStates(t testing.TB) *services.ViewStates {
	t.Helper()
	return services.NewViewStates(NewStateRepository(t), Logger(t))
}
