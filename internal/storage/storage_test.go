package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	st, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return st
}

func TestGetMissingKey(t *testing.T) {
	st := newTestStorage(t)

	value, ok, err := st.Get(KeyAccessToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected missing key to report absent")
	}
	if value != "" {
		t.Errorf("Expected empty value, got '%s'", value)
	}
}

func TestSetAndGet(t *testing.T) {
	st := newTestStorage(t)

	if err := st.Set(KeyAccessToken, "tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := st.Get(KeyAccessToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to be present")
	}
	if value != "tok-123" {
		t.Errorf("Expected 'tok-123', got '%s'", value)
	}
}

func TestSetSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	st, err := NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := st.Set(KeyUserData, `{"userId":"u1"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	reopened, err := NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	value, ok, err := reopened.Get(KeyUserData)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != `{"userId":"u1"}` {
		t.Errorf("Expected persisted value after reopen, got '%s' (present=%v)", value, ok)
	}
}

func TestDeleteMultipleKeys(t *testing.T) {
	st := newTestStorage(t)

	st.Set(KeyAccessToken, "tok")
	st.Set(KeyUserData, "user")
	st.Set(KeyGoogleCredentials, "creds")

	if err := st.Delete(KeyAccessToken, KeyUserData, KeyGoogleCredentials); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, key := range []string{KeyAccessToken, KeyUserData, KeyGoogleCredentials} {
		if _, ok, _ := st.Get(key); ok {
			t.Errorf("Expected key '%s' to be deleted", key)
		}
	}
}

func TestAccessTokenMissing(t *testing.T) {
	st := newTestStorage(t)

	if token := st.AccessToken(); token != "" {
		t.Errorf("Expected empty token, got '%s'", token)
	}
}

func TestAccessTokenReadsLatestWrite(t *testing.T) {
	dir := t.TempDir()

	st, err := NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// A second handle on the same directory stands in for another
	// component writing the file.
	other, err := NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to create second storage handle: %v", err)
	}

	if err := other.Set(KeyAccessToken, "fresh-token"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if token := st.AccessToken(); token != "fresh-token" {
		t.Errorf("Expected token read back from disk, got '%s'", token)
	}
}

func TestMigrateLegacyToken(t *testing.T) {
	st := newTestStorage(t)

	if err := st.Set("token", "legacy-tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := st.MigrateLegacyToken(); err != nil {
		t.Fatalf("MigrateLegacyToken failed: %v", err)
	}

	value, ok, _ := st.Get(KeyAccessToken)
	if !ok || value != "legacy-tok" {
		t.Errorf("Expected legacy token under canonical key, got '%s' (present=%v)", value, ok)
	}
	if _, ok, _ := st.Get("token"); ok {
		t.Error("Expected legacy key to be removed")
	}
}

func TestMigrateLegacyTokenCanonicalWins(t *testing.T) {
	st := newTestStorage(t)

	st.Set("token", "legacy-tok")
	st.Set(KeyAccessToken, "canonical-tok")

	if err := st.MigrateLegacyToken(); err != nil {
		t.Fatalf("MigrateLegacyToken failed: %v", err)
	}

	value, _, _ := st.Get(KeyAccessToken)
	if value != "canonical-tok" {
		t.Errorf("Expected canonical token to survive migration, got '%s'", value)
	}
	if _, ok, _ := st.Get("token"); ok {
		t.Error("Expected legacy key to be removed")
	}
}

func TestMigrateLegacyTokenNoLegacyKey(t *testing.T) {
	st := newTestStorage(t)

	if err := st.MigrateLegacyToken(); err != nil {
		t.Fatalf("MigrateLegacyToken failed: %v", err)
	}
	if _, ok, _ := st.Get(KeyAccessToken); ok {
		t.Error("Expected no token to appear from nothing")
	}
}

func TestCorruptSessionFile(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to corrupt session file: %v", err)
	}

	if _, _, err := st.Get(KeyAccessToken); err == nil {
		t.Error("Expected error reading corrupt session file")
	}
}
