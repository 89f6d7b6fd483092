package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"logbook/termbook/internal/models"
)

const backupVersion = 1

// Backup is a password-protected local export of the user's relations
// and their interactions. The server stays the durability authority;
// this exists for offline copies and moving between machines.
type Backup struct {
	ID           string               `json:"id"`
	Version      int                  `json:"version"`
	CreatedAt    time.Time            `json:"created_at"`
	UserID       string               `json:"user_id,omitempty"`
	Relations    []models.Relation    `json:"relations"`
	Interactions []models.Interaction `json:"interactions"`
}

// backupEnvelope is what actually lands on disk: cleartext header plus
// the encrypted payload.
type backupEnvelope struct {
	ID        string         `json:"id"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Data      *EncryptedData `json:"data"`
}

// WriteBackup encrypts relations and interactions with the given
// password and writes them to path atomically.
func (s *Storage) WriteBackup(path, password, userID string, relations []models.Relation, interactions []models.Interaction) (*Backup, error) {
	backup := &Backup{
		ID:           uuid.NewString(),
		Version:      backupVersion,
		CreatedAt:    time.Now().UTC(),
		UserID:       userID,
		Relations:    relations,
		Interactions: interactions,
	}

	payload, err := json.Marshal(backup)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}

	encrypted, err := Encrypt(payload, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt backup: %w", err)
	}

	envelope := backupEnvelope{
		ID:        backup.ID,
		Version:   backup.Version,
		CreatedAt: backup.CreatedAt,
		Data:      encrypted,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return nil, fmt.Errorf("failed to rename backup file: %w", err)
	}

	return backup, nil
}

// ReadBackup decrypts a backup file written by WriteBackup.
func (s *Storage) ReadBackup(path, password string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var envelope backupEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup envelope: %w", err)
	}
	if envelope.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version: %d", envelope.Version)
	}

	payload, err := Decrypt(envelope.Data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt backup: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(payload, &backup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup: %w", err)
	}
	return &backup, nil
}

// DefaultBackupPath suggests a timestamped file name inside the data
// directory.
func (s *Storage) DefaultBackupPath() string {
	name := fmt.Sprintf("logbook_backup_%s.json", time.Now().Format("2006-01-02_150405"))
	return filepath.Join(s.dataDir, "backups", name)
}
