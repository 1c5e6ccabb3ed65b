package lineprof

import "errors"

var (
	// ErrMissingWorkload is returned by Start when no workload is supplied.
	ErrMissingWorkload = errors.New("lineprof: workload required")

	// ErrInvalidTarget is returned when a target is neither an exact file nor a pattern.
	ErrInvalidTarget = errors.New("lineprof: target must be a file name or a pattern")

	// ErrSessionActive is returned by Start while another session is running
	// on the same Profiler.
	ErrSessionActive = errors.New("lineprof: profiler is already enabled")

	// ErrAllocation is returned when a line table cannot grow to hold a line.
	ErrAllocation = errors.New("lineprof: cannot grow line table")

	// ErrWorkload wraps an error returned by the profiled workload.
	ErrWorkload = errors.New("lineprof: workload failed")
)
