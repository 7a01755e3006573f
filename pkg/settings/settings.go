// Package settings holds the user-mutable session settings: loaded once at
// start, mutated only by explicit user action, persisted synchronously on
// every change.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultFileName = ".voca-settings.json"

// Settings are the process-wide user preferences.
type Settings struct {
	// APIKey is the LLM provider credential; its presence gates all
	// chat/voice functionality.
	APIKey string `json:"api_key,omitempty"`
	// SendWithoutConfirm governs the confirmation gate: when true, prepared
	// swaps execute immediately after an informational message.
	SendWithoutConfirm bool `json:"send_without_confirm"`
}

// Store loads and saves settings.
type Store interface {
	Load() (*Settings, error)
	Save(*Settings) error
}

// FileStore persists settings as a flat JSON file with an atomic
// write-and-rename.
type FileStore struct {
	filePath string
}

// NewFileStore creates a settings store at filePath, defaulting to a file
// in the user's home directory.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultFileName)
	}
	return &FileStore{filePath: filePath}, nil
}

// Load reads persisted settings; a missing file yields defaults.
func (s *FileStore) Load() (*Settings, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, err
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &out, nil
}

// Save writes settings to disk.
func (s *FileStore) Save(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
