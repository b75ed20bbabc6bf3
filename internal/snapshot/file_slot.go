package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"saboaria/backend/internal/domain"
)

// FileSlot stores the snapshot as a JSON file. Writes go through a
// temp file plus rename so a crash mid-write never corrupts the
// previous snapshot.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileSlot{path: path}, nil
}

func (s *FileSlot) Save(_ context.Context, doc domain.BackupDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileSlot) Load(_ context.Context) (domain.BackupDocument, bool, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.BackupDocument{}, false, nil
	}
	if err != nil {
		return domain.BackupDocument{}, false, err
	}

	var doc domain.BackupDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return domain.BackupDocument{}, false, err
	}
	if doc.Meta == nil {
		return domain.BackupDocument{}, false, fmt.Errorf("snapshot file %s has no metadata block", s.path)
	}
	return doc, true, nil
}

func (s *FileSlot) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *FileSlot) Close() error {
	return nil
}
