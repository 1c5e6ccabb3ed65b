// Package clock supplies the microsecond timestamps line events are stamped with.
package clock

import "time"

// Clock returns monotonically non-decreasing microsecond timestamps.
type Clock interface {
	Now() uint64
}

// Monotonic reads Go's monotonic clock relative to the moment it was created.
type Monotonic struct {
	base time.Time
}

// New returns a Monotonic clock starting at zero.
func New() *Monotonic {
	return &Monotonic{base: time.Now()}
}

// Now returns the microseconds elapsed since the clock was created.
func (m *Monotonic) Now() uint64 {
	return uint64(time.Since(m.base).Microseconds())
}

// Func adapts a plain function to Clock.
type Func func() uint64

func (f Func) Now() uint64 { return f() }
