package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newDiskStore(t *testing.T) *diskStore {
	t.Helper()
	return &diskStore{path: filepath.Join(t.TempDir(), "run.json")}
}

func TestRemoveStaleKeepsNewerLock(t *testing.T) {
	d := newDiskStore(t)

	// A racing process already replaced the stale run with its own.
	winner := NewRun("run", "file:a.sh", "a.sh")
	if err := d.Acquire(winner); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := d.removeStale(&Run{ID: "stale", PID: 0, StartTime: time.Now()}); err != nil {
		t.Fatalf("removeStale: %v", err)
	}
	loaded, err := d.Load()
	if err != nil {
		t.Fatalf("Load after removeStale: %v", err)
	}
	if loaded.ID != winner.ID {
		t.Errorf("lock holder = %q, want %q", loaded.ID, winner.ID)
	}
	assertNoLeftovers(t, d)
}

func TestRemoveStaleDeletesMatchingRun(t *testing.T) {
	d := newDiskStore(t)

	stale := &Run{ID: "stale", PID: 0, StartTime: time.Now()}
	if err := d.Acquire(stale); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := d.removeStale(stale); err != nil {
		t.Fatalf("removeStale: %v", err)
	}
	if _, err := d.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load error = %v, want ErrNoSession", err)
	}
	assertNoLeftovers(t, d)
}

func TestRemoveStaleWithoutRunFile(t *testing.T) {
	d := newDiskStore(t)
	if err := d.removeStale(&Run{ID: "gone"}); err != nil {
		t.Errorf("removeStale on missing file: %v", err)
	}
}

// assertNoLeftovers fails if anything besides the run file remains.
func assertNoLeftovers(t *testing.T, d *diskStore) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(d.path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(d.path) {
			t.Errorf("unexpected leftover file %s", e.Name())
		}
	}
}
