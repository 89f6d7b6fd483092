package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logbook/termbook/internal/models"
)

func TestBackupRoundTrip(t *testing.T) {
	st := newTestStorage(t)
	path := filepath.Join(t.TempDir(), "backup.json")

	date := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	relations := []models.Relation{
		{ID: "r1", Name: "Alice", CategoryType: models.CategoryFriends, Location: "Cardiff"},
		{ID: "r2", Name: "Bob", CategoryType: models.CategoryWork},
	}
	interactions := []models.Interaction{
		{ID: "i1", RelationID: "r1", Content: "coffee", Date: date},
	}

	written, err := st.WriteBackup(path, "correct-horse", "u1", relations, interactions)
	if err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}
	if written.ID == "" {
		t.Error("Expected backup to carry an id")
	}

	restored, err := st.ReadBackup(path, "correct-horse")
	if err != nil {
		t.Fatalf("ReadBackup failed: %v", err)
	}

	if restored.UserID != "u1" {
		t.Errorf("Expected user id 'u1', got '%s'", restored.UserID)
	}
	if len(restored.Relations) != 2 {
		t.Fatalf("Expected 2 relations, got %d", len(restored.Relations))
	}
	if restored.Relations[0].Name != "Alice" {
		t.Errorf("Expected first relation 'Alice', got '%s'", restored.Relations[0].Name)
	}
	if len(restored.Interactions) != 1 {
		t.Fatalf("Expected 1 interaction, got %d", len(restored.Interactions))
	}
	if restored.Interactions[0].Content != "coffee" {
		t.Errorf("Expected interaction content 'coffee', got '%s'", restored.Interactions[0].Content)
	}
}

func TestBackupWrongPassword(t *testing.T) {
	st := newTestStorage(t)
	path := filepath.Join(t.TempDir(), "backup.json")

	_, err := st.WriteBackup(path, "right-password", "u1", nil, nil)
	if err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}

	if _, err := st.ReadBackup(path, "wrong-password"); err == nil {
		t.Error("Expected decryption to fail with the wrong password")
	}
}

func TestBackupMissingFile(t *testing.T) {
	st := newTestStorage(t)

	if _, err := st.ReadBackup(filepath.Join(t.TempDir(), "nope.json"), "pw"); err == nil {
		t.Error("Expected error reading missing backup file")
	}
}

func TestDefaultBackupPath(t *testing.T) {
	st := newTestStorage(t)

	path := st.DefaultBackupPath()
	if !strings.HasPrefix(path, st.DataDir()) {
		t.Errorf("Expected backup path under the data dir, got '%s'", path)
	}
	if !strings.Contains(filepath.Base(path), "logbook_backup_") {
		t.Errorf("Expected timestamped backup name, got '%s'", filepath.Base(path))
	}
}
