package postgres

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListMigrations_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0010_later.sql", "0002_second.sql", "0001_init.sql", "notes.txt", "draft_x.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	want := []int{1, 2, 10}
	if len(got) != len(want) {
		t.Fatalf("Expected %d migrations, got %d", len(want), len(got))
	}
	for i, m := range got {
		if m.version != want[i] {
			t.Errorf("migration %d: expected version %d, got %d", i, want[i], m.version)
		}
	}
}

func TestListMigrations_ShippedSchema(t *testing.T) {
	got, err := listMigrations(filepath.Join("..", "..", "..", "..", "kodata", "migrations"))
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	if len(got) == 0 || got[0].version != 1 {
		t.Errorf("Expected the shipped schema to start at version 1, got %+v", got)
	}
}

func TestLockKey_StablePerName(t *testing.T) {
	if lockKey("listip") != lockKey("listip") {
		t.Error("Expected lock key to be deterministic")
	}
	if lockKey("listip") == lockKey("other") {
		t.Error("Expected different scripts to use different locks")
	}
	if lockKey("listip") == migrationLockKey {
		t.Error("script lock must not collide with the migration lock")
	}
}
