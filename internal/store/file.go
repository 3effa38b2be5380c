package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/sprintplan/internal/atomicfile"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// FileStore keeps the snapshot as one indented JSON document. Saves go
// through a temp file and a rename, so a crash mid-write leaves the previous
// snapshot intact.
type FileStore struct {
	path            string
	defaultCapacity int
}

// NewFileStore returns a store for dataDir/backlog.json. The directory must
// exist.
func NewFileStore(dataDir string, defaultCapacity int) *FileStore {
	return &FileStore{
		path:            filepath.Join(dataDir, SnapshotFileName),
		defaultCapacity: defaultCapacity,
	}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and validates the snapshot. Fields missing from an older
// snapshot keep their defaults.
func (s *FileStore) Load() (*types.Backlog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return freshBacklog(s.defaultCapacity), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	b := &types.Backlog{TeamCapacity: types.DefaultTeamCapacity}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", types.ErrCorruptSnapshot, s.path, err)
	}
	if err := checkLoaded(b, s.path); err != nil {
		return nil, err
	}
	return b, nil
}

// Save replaces the snapshot file with b.
func (s *FileStore) Save(b *types.Backlog) error {
	if err := prepareSave(b); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := atomicfile.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Clear deletes the snapshot file. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the file store holds no open resources.
func (s *FileStore) Close() error {
	return nil
}
