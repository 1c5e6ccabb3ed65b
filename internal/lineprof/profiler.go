// Package lineprof attributes wall-clock time to individual source lines.
//
// A Profiler installs a LineHook with its Host for the duration of a
// workload. Every line event for an in-scope file charges the time elapsed
// since that file's previous event to the line that was executing in
// between, i.e. the previously reported line.
//
// A session's line events must all be delivered from one goroutine.
// Independent Profilers may run at the same time.
package lineprof

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Result maps each profiled file name to its per-line microseconds, indexed
// by line number.
type Result map[string][]uint64

// Stats describes the most recent session.
type Stats struct {
	Events  uint64 // line events received
	Files   int    // files profiled
	Skipped int    // files rejected by the pattern
	Matches int    // pattern evaluations
}

// Profiler owns one instrumentation session at a time.
type Profiler struct {
	host   Host
	logger zerolog.Logger

	active atomic.Bool
	sess   *session
}

// New creates a Profiler that instruments host. logger should not carry a
// component field; the Profiler adds its own.
func New(host Host, logger zerolog.Logger) *Profiler {
	return &Profiler{
		host:   host,
		logger: logger.With().Str("component", "lineprof").Logger(),
	}
}

type session struct {
	sel    *selector
	events uint64
	err    error
}

func (s *session) onLine(ev LineEvent) {
	s.events++
	if s.err != nil {
		return
	}
	r := s.sel.resolve(ev)
	if r == nil {
		return
	}
	if err := r.table.sample(ev.Line, ev.Time); err != nil {
		s.err = fmt.Errorf("%s: %w", r.name, err)
	}
}

func (s *session) summary() Result {
	res := make(Result, len(s.sel.order))
	for _, id := range s.sel.order {
		r := s.sel.records[id]
		res[r.name] = r.table.Snapshot()
	}
	return res
}

// Start profiles target while running workload and returns the time spent
// on each line of every profiled file.
//
// State from the previous session is discarded first. The line hook is
// removed on every exit path, including a panicking workload. If workload
// returns an error, Start returns the partial result together with an error
// wrapping both ErrWorkload and the workload's error.
func (p *Profiler) Start(target Target, workload func() error) (Result, error) {
	if workload == nil {
		return nil, ErrMissingWorkload
	}
	if !target.Valid() {
		return nil, ErrInvalidTarget
	}
	if !p.active.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}

	var sel *selector
	if target.IsPattern() {
		sel = newPatternSelector(target.matcher)
	} else {
		sel = newExactSelector(p.host.CanonicalFileID(target.name))
	}
	s := &session{sel: sel}
	p.sess = s

	handle := p.host.RegisterLineHook(s.onLine)
	p.logger.Debug().Str("target", target.String()).Msg("Line profiling started")
	defer func() {
		p.host.UnregisterLineHook(handle)
		p.active.Store(false)
		p.logger.Debug().
			Str("target", target.String()).
			Uint64("events", s.events).
			Int("files", len(s.sel.order)).
			Msg("Line profiling stopped")
	}()

	werr := workload()
	res := s.summary()
	if werr != nil {
		werr = fmt.Errorf("%w: %w", ErrWorkload, werr)
	}
	return res, errors.Join(s.err, werr)
}

// Active reports whether a session is running.
func (p *Profiler) Active() bool {
	return p.active.Load()
}

// Pinned lists the file ids the running session references, so a host that
// recycles identifiers can keep them alive. It returns nil when idle and must
// be called from the goroutine delivering line events.
func (p *Profiler) Pinned() []FileID {
	if !p.active.Load() || p.sess == nil {
		return nil
	}
	return p.sess.sel.pinned()
}

// Stats reports counters for the most recent session.
func (p *Profiler) Stats() Stats {
	if p.sess == nil {
		return Stats{}
	}
	return Stats{
		Events:  p.sess.events,
		Files:   len(p.sess.sel.order),
		Skipped: len(p.sess.sel.negative),
		Matches: p.sess.sel.matches,
	}
}
