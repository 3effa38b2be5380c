// Package store persists the backlog snapshot. A snapshot is always read
// and written as a whole: there is no field-level update. Two backends are
// provided, a JSON document replaced with an atomic rename and a SQLite
// database replaced inside one transaction.
package store

import (
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// File names inside the data directory.
const (
	SnapshotFileName = "backlog.json"
	DatabaseFileName = "backlog.db"
)

// Store loads, replaces, and clears the backlog snapshot.
type Store interface {
	// Load returns the persisted snapshot, or a fresh empty backlog when
	// nothing has been saved. A snapshot that fails validation yields an
	// error matching types.ErrCorruptSnapshot.
	Load() (*types.Backlog, error)

	// Save validates b, stamps b.UpdatedAt, and replaces the persisted
	// snapshot with it.
	Save(b *types.Backlog) error

	// Clear removes the persisted snapshot. Idempotent.
	Clear() error

	// Close releases backend resources.
	Close() error
}

// Open creates the data directory if needed and returns the store selected
// by cfg.Backend.
func Open(cfg types.Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	switch cfg.Backend {
	case types.BackendJSON:
		return NewFileStore(dataDir, cfg.DefaultCapacity), nil
	case types.BackendSQLite:
		return OpenSQLite(dataDir, cfg.DefaultCapacity)
	default:
		return nil, types.ErrBackendUnknown
	}
}

// now returns the wall clock in UTC without a monotonic reading, so a saved
// timestamp compares equal to its decoded form.
func now() time.Time {
	return time.Now().UTC()
}

// freshBacklog returns the snapshot reported when nothing is persisted.
func freshBacklog(defaultCapacity int) *types.Backlog {
	b := types.NewBacklog(now())
	if defaultCapacity > 0 {
		b.TeamCapacity = defaultCapacity
	}
	return b
}

// prepareSave validates b and stamps its update time. The timestamp is left
// alone when validation fails.
func prepareSave(b *types.Backlog) error {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	b.UpdatedAt = now()
	return nil
}

// checkLoaded validates a decoded snapshot.
func checkLoaded(b *types.Backlog, source string) error {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrCorruptSnapshot, source, err)
	}
	return nil
}
