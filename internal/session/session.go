// Package session records the profiling run currently in progress so that
// concurrent invocations can be refused and `status` can report it.
package session

import (
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Run describes an active profiling run.
type Run struct {
	ID        string    `json:"id"`
	PID       int       `json:"pid"`
	Mode      string    `json:"mode"`   // "run" | "replay" | "watch"
	Target    string    `json:"target"` // Target.String() of the profiler target
	Source    string    `json:"source"` // script or trace file being profiled
	WorkDir   string    `json:"work_dir"`
	StartTime time.Time `json:"start_time"`
}

// NewRun returns a Run for the current process starting now.
func NewRun(mode, target, source string) *Run {
	wd, _ := os.Getwd()
	return &Run{
		ID:        uuid.NewString(),
		PID:       os.Getpid(),
		Mode:      mode,
		Target:    target,
		Source:    source,
		WorkDir:   wd,
		StartTime: time.Now(),
	}
}

// Alive reports whether the process that owns the run still exists.
func (r *Run) Alive() bool {
	if r.PID <= 0 {
		return false
	}
	p, err := os.FindProcess(r.PID)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	// EPERM means the process exists but belongs to someone else.
	return err == nil || err == syscall.EPERM
}
