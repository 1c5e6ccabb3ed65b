// Package host implements lineprof.Host for line events that arrive from
// outside the Go process: recorded trace files and traced child processes.
package host

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/xxh3"

	"github.com/fakeyudi/lineprof/internal/clock"
	"github.com/fakeyudi/lineprof/internal/lineprof"
)

// FileIDFor derives the canonical id of a source path. Relative paths are
// resolved against dir first, so a file named relatively and absolutely
// shares one id. An empty dir leaves relative paths as given.
func FileIDFor(dir, path string) lineprof.FileID {
	if dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return lineprof.FileID(xxh3.HashString(filepath.Clean(path)))
}

// Dispatcher fans line events out to registered hooks. It is not safe for
// concurrent use; Emit must be called from the goroutine running the
// profiled workload.
type Dispatcher struct {
	clock clock.Clock
	dir   string
	hooks map[lineprof.HookHandle]lineprof.LineHook
	order []lineprof.HookHandle
	next  lineprof.HookHandle
}

// NewDispatcher returns a Dispatcher that stamps untimed events with c and
// resolves relative paths against the current working directory.
func NewDispatcher(c clock.Clock) *Dispatcher {
	if c == nil {
		c = clock.New()
	}
	wd, _ := os.Getwd()
	return &Dispatcher{
		clock: c,
		dir:   wd,
		hooks: make(map[lineprof.HookHandle]lineprof.LineHook),
	}
}

// SetDir changes the directory relative paths are resolved against. Call it
// before profiling starts.
func (d *Dispatcher) SetDir(dir string) {
	d.dir = dir
}

func (d *Dispatcher) RegisterLineHook(hook lineprof.LineHook) lineprof.HookHandle {
	d.next++
	d.hooks[d.next] = hook
	d.order = append(d.order, d.next)
	return d.next
}

func (d *Dispatcher) UnregisterLineHook(h lineprof.HookHandle) {
	if _, ok := d.hooks[h]; !ok {
		return
	}
	delete(d.hooks, h)
	i := sort.Search(len(d.order), func(i int) bool { return d.order[i] >= h })
	d.order = append(d.order[:i], d.order[i+1:]...)
}

func (d *Dispatcher) CanonicalFileID(name string) lineprof.FileID {
	return FileIDFor(d.dir, name)
}

// Hooks returns the number of registered hooks.
func (d *Dispatcher) Hooks() int {
	return len(d.hooks)
}

// EmitNow delivers a line event stamped with the dispatcher's clock.
func (d *Dispatcher) EmitNow(path string, line int) {
	if len(d.order) == 0 {
		return
	}
	d.Emit(path, line, d.clock.Now())
}

// Emit delivers one line event to every hook in registration order.
func (d *Dispatcher) Emit(path string, line int, ts uint64) {
	if len(d.order) == 0 {
		return
	}
	ev := lineprof.LineEvent{
		File: FileIDFor(d.dir, path),
		Path: filepath.Clean(path),
		Line: line,
		Time: ts,
	}
	for _, h := range d.order {
		d.hooks[h](ev)
	}
}
