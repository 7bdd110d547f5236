package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// LoadOutcome classifies what Load found on flash.
type LoadOutcome uint8

const (
	// LoadOK means a valid snapshot was loaded.
	LoadOK LoadOutcome = 0
	// LoadNoFile means no canonical file exists; defaults apply.
	// Not an error: first boot and the save crash window both land
	// here.
	LoadNoFile LoadOutcome = 1
	// LoadCorrupt means the snapshot failed to decode; defaults
	// apply.
	LoadCorrupt LoadOutcome = 2
	// LoadVersionTooOld means the snapshot predates the minimum
	// schema version; defaults apply.
	LoadVersionTooOld LoadOutcome = 3
)

// String returns the outcome name.
func (o LoadOutcome) String() string {
	switch o {
	case LoadOK:
		return "OK"
	case LoadNoFile:
		return "NO_FILE"
	case LoadCorrupt:
		return "CORRUPT"
	case LoadVersionTooOld:
		return "VERSION_TOO_OLD"
	default:
		return "UNKNOWN"
	}
}

// Store reads and writes the snapshot file.
type Store struct {
	path    string
	tmpPath string
}

// NewStore creates a store for the given canonical path. The staging
// file used during save is the canonical path with ".tmp" appended.
func NewStore(path string) *Store {
	return &Store{path: path, tmpPath: path + ".tmp"}
}

// Path returns the canonical snapshot path.
func (s *Store) Path() string { return s.path }

// Load reads the snapshot from flash.
//
// A missing file, a corrupt snapshot, and a stale schema version all
// return a nil snapshot with the matching outcome and no error: the
// caller installs defaults. Only a genuine I/O failure returns an
// error.
func (s *Store) Load() (*state.DeviceState, LoadOutcome, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, LoadNoFile, nil
	}
	if err != nil {
		return nil, LoadNoFile, fmt.Errorf("failed to read snapshot: %w", err)
	}

	ds, err := Decode(data)
	switch {
	case errors.Is(err, ErrVersionTooOld):
		return nil, LoadVersionTooOld, nil
	case err != nil:
		return nil, LoadCorrupt, nil
	}
	return ds, LoadOK, nil
}

// Save writes the snapshot to flash.
//
// When the development no-save flag is set, Save is a successful
// no-op. Otherwise the snapshot is encoded and staged to the
// temporary file first; only once that succeeds is the old canonical
// file removed and the staged file renamed into place. An encode or
// staging failure leaves the previous canonical file untouched, so no
// partial snapshot ever exists.
//
// Brief window of risk: a crash after the remove and before the
// rename leaves no canonical file. Load treats that as first boot.
func (s *Store) Save(ds *state.DeviceState) error {
	if ds.NoSave {
		return nil
	}

	data, err := Encode(ds)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	if err := os.WriteFile(s.tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to stage snapshot: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old snapshot: %w", err)
	}
	if err := os.Rename(s.tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename snapshot into place: %w", err)
	}
	return nil
}
