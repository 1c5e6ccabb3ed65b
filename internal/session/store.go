package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession is returned by Load when no run file exists on disk.
var ErrNoSession = errors.New("no active session")

// ErrInProgress is returned by Acquire when another live run holds the lock.
var ErrInProgress = errors.New("session already in progress")

// Store persists the active Run to disk.
type Store interface {
	// Acquire records r as the active run. It fails with ErrInProgress when
	// a run owned by a live process is already recorded; stale runs are
	// replaced.
	Acquire(r *Run) error
	Load() (*Run, error) // returns ErrNoSession if none exists
	Delete() error
}

// diskStore is the concrete Store that writes to the XDG data directory.
type diskStore struct {
	path string // full path to run.json
}

// NewStore returns a Store backed by the XDG data directory.
// Path: $XDG_DATA_HOME/lineprof/run.json or ~/.local/share/lineprof/run.json
func NewStore() (Store, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "run.json")}, nil
}

// dataDir returns the lineprof-specific XDG data directory.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "lineprof"), nil
}

// Acquire writes r to a temp file and hard-links it into place, so exactly
// one of several racing processes wins. A stale run is moved aside before it
// is deleted and put back if it turns out to be a newer lock.
func (d *diskStore) Acquire(r *Run) error {
	tmpName, err := d.writeTemp(r)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	for attempt := 0; attempt < 2; attempt++ {
		err = os.Link(tmpName, d.path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to persist session state: %w", err)
		}
		existing, lerr := d.Load()
		if lerr != nil && !errors.Is(lerr, ErrNoSession) {
			return lerr
		}
		if existing != nil && existing.Alive() {
			return fmt.Errorf("%w (pid %d, started %s)", ErrInProgress, existing.PID, existing.StartTime.Format("15:04:05"))
		}
		if existing != nil {
			if err := d.removeStale(existing); err != nil {
				return err
			}
		}
	}
	return ErrInProgress
}

// removeStale deletes the run file only if it still holds stale. Another
// process may have replaced it since it was read; that lock is restored.
func (d *diskStore) removeStale(stale *Run) error {
	aside := fmt.Sprintf("%s.stale-%d", d.path, os.Getpid())
	if err := os.Rename(d.path, aside); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	defer os.Remove(aside)

	moved, err := readRun(aside)
	if err == nil && moved.ID == stale.ID {
		return nil
	}
	// Not the run we judged stale. Put it back unless a new lock got there
	// first.
	if err := os.Link(aside, d.path); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to restore session state: %w", err)
	}
	return nil
}

// writeTemp marshals r into a temp file next to the run file.
func (d *diskStore) writeTemp(r *Run) (name string, err error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to persist session state: %w", err)
	}

	// Same directory so the final link or rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(d.path), "run-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to persist session state: %w", err)
	}
	name = tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(name)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to persist session state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to persist session state: %w", err)
	}
	return name, nil
}

// Load reads and unmarshals the run file.
// Returns ErrNoSession if the file does not exist.
func (d *diskStore) Load() (*Run, error) {
	return readRun(d.path)
}

func readRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return &r, nil
}

// Delete removes the run file from disk.
func (d *diskStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}
