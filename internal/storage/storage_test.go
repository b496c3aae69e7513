package storage

import (
	"path/filepath"
	"testing"

	"github.com/studiowebux/oasedit/internal/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "oasedit.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, err := migrations.Version(db.SQL())
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	expected := migrations.All[len(migrations.All)-1].Version
	if version != expected {
		t.Errorf("Expected schema version %d, got %d", expected, version)
	}

	// Running again is a no-op
	if err := migrations.Run(db.SQL()); err != nil {
		t.Errorf("Expected idempotent migrations, got %v", err)
	}
}

func TestLoadSaveDelete(t *testing.T) {
	db := openTestDB(t)

	if _, ok, err := db.Load(DocumentKey); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := db.Save(DocumentKey, []byte(`{"openapi":"3.0.0"}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := db.Save(DocumentKey, []byte(`{"openapi":"3.1.0"}`)); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	value, ok, err := db.Load(DocumentKey)
	if err != nil || !ok {
		t.Fatalf("Expected stored key, got ok=%v err=%v", ok, err)
	}
	if string(value) != `{"openapi":"3.1.0"}` {
		t.Errorf("Expected last write to win, got %s", value)
	}

	if err := db.Save(ThemeKey, []byte("dark")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %v", keys)
	}

	if err := db.Delete(DocumentKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := db.Delete(DocumentKey); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
	if _, ok, _ := db.Load(DocumentKey); ok {
		t.Error("Expected key to be gone after Delete")
	}
}
