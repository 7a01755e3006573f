package swap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const DefaultQueueFileName = ".voca-queue.json"

// FileStore persists the transaction queue as a flat JSON file, written
// atomically via a temp file and rename.
type FileStore struct {
	filePath string
}

type queueFile struct {
	Transactions []*QueuedTransaction `json:"transactions"`
}

// NewFileStore creates a queue store at filePath, defaulting to a file in
// the user's home directory.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultQueueFileName)
	}
	return &FileStore{filePath: filePath}, nil
}

// Load reads the persisted queue. A missing file is an empty queue.
func (s *FileStore) Load() ([]*QueuedTransaction, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var qf queueFile
	if err := json.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue: %w", err)
	}
	return qf.Transactions, nil
}

// Save writes the queue to disk.
func (s *FileStore) Save(entries []*QueuedTransaction) error {
	data, err := json.MarshalIndent(queueFile{Transactions: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// FilePath returns the backing file path.
func (s *FileStore) FilePath() string {
	return s.filePath
}
