package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDir      = ".termbook"
	sessionFile = "session.json"
)

// Keys mirrored from the in-memory session. Any session mutation is
// flushed here synchronously before the next render.
const (
	KeyAccessToken       = "access_token"
	KeyUserData          = "userData"
	KeyGoogleCredentials = "googleCredentials"

	// legacyTokenKey is read once at startup and folded into
	// KeyAccessToken. Never written.
	legacyTokenKey = "token"
)

// Storage is the durable backing for session state, a flat key/value
// JSON file under the data directory. Reads go back to the file each
// time so independent consumers always observe the latest write.
type Storage struct {
	dataDir string
}

func NewStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStorageAt(filepath.Join(homeDir, appDir))
}

// NewStorageAt opens storage rooted at an explicit directory. Used when
// LOGBOOK_DATA_DIR overrides the default location, and by tests.
func NewStorageAt(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

// Get returns the stored value for key. A missing file or missing key
// is an absent value, not an error.
func (s *Storage) Get(key string) (string, bool, error) {
	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

// Set writes one key and flushes the file atomically.
func (s *Storage) Set(key, value string) error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

// Delete removes the given keys in a single atomic write, so logout
// clears token, user data and google credentials together.
func (s *Storage) Delete(keys ...string) error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(entries, key)
	}
	return s.save(entries)
}

// AccessToken reads the current token straight from disk. Absent or
// unreadable storage both mean "no token"; request construction treats
// that as an anonymous call, never a failure.
func (s *Storage) AccessToken() string {
	token, _, err := s.Get(KeyAccessToken)
	if err != nil {
		return ""
	}
	return token
}

// MigrateLegacyToken folds the old "token" key into "access_token".
// Runs once at session initialization; the canonical key wins when
// both exist.
func (s *Storage) MigrateLegacyToken() error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	legacy, hasLegacy := entries[legacyTokenKey]
	if !hasLegacy {
		return nil
	}
	if _, hasCanonical := entries[KeyAccessToken]; !hasCanonical && legacy != "" {
		entries[KeyAccessToken] = legacy
	}
	delete(entries, legacyTokenKey)
	return s.save(entries)
}

func (s *Storage) load() (map[string]string, error) {
	filePath := filepath.Join(s.dataDir, sessionFile)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}
	return entries, nil
}

func (s *Storage) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session entries: %w", err)
	}

	filePath := filepath.Join(s.dataDir, sessionFile)
	tempFile := filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary session file: %w", err)
	}
	if err := os.Rename(tempFile, filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename session file: %w", err)
	}
	return nil
}
