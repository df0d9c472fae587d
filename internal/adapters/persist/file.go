package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nbarrios/forgeline/internal/observability"
	"github.com/nbarrios/forgeline/internal/transcript"
)

// MaxStoreSizeBytes caps the persisted payload to protect against a
// corrupted or runaway store file. 10MB holds thousands of messages.
const MaxStoreSizeBytes = 10 * 1024 * 1024

// FileSlot keeps the serialized store in a single JSON file.
type FileSlot struct {
	path string
}

// NewFileSlot creates a slot rooted at path. Parent directories are created
// on first save.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Load reads and decodes the slot. A missing file, oversized file, or
// undecodable payload yields (nil, nil): the caller starts fresh.
func (s *FileSlot) Load() (*transcript.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) > MaxStoreSizeBytes {
		observability.Logger().Warn("persist: store file exceeds size cap, starting fresh",
			"path", s.path, "size", len(data))
		return nil, nil
	}
	st := decodeState(data)
	if st == nil {
		observability.Logger().Warn("persist: store file is malformed, starting fresh",
			"path", s.path)
		return nil, nil
	}
	return st, nil
}

// Save encodes the state and writes it atomically: temp file first, then
// rename, so a crash mid-write never corrupts the previous snapshot.
func (s *FileSlot) Save(st *transcript.State) error {
	data, err := encodeState(st)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if len(data) > MaxStoreSizeBytes {
		return fmt.Errorf("store size %d bytes exceeds maximum %d bytes", len(data), MaxStoreSizeBytes)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("commit store file: %w", err)
	}
	return nil
}
