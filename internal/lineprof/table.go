package lineprof

import "fmt"

// LineMargin is the number of spare entries allocated past the highest line
// seen, so that files growing a few lines at a time do not reallocate on
// every new line.
const LineMargin = 100

// MaxLine bounds the line numbers a table accepts. Anything above it is
// reported as ErrAllocation rather than attempted.
const MaxLine = 1 << 22

// LineTable accumulates wall-clock microseconds per source line of one file.
type LineTable struct {
	lines []uint64

	lastTime uint64
	lastLine int
	sampled  bool
}

// EnsureCapacity grows the table so that line is a valid index. New entries
// are zero and existing entries keep their values.
func (t *LineTable) EnsureCapacity(line int) error {
	if line < 0 || line > MaxLine {
		return fmt.Errorf("%w: line %d outside [0, %d]", ErrAllocation, line, MaxLine)
	}
	if line < len(t.lines) {
		return nil
	}
	grown := make([]uint64, line+LineMargin)
	copy(grown, t.lines)
	t.lines = grown
	return nil
}

// Record adds delta microseconds to line. The caller must have called
// EnsureCapacity for line.
func (t *LineTable) Record(line int, delta uint64) {
	t.lines[line] += delta
}

// Len returns the current capacity of the table in lines.
func (t *LineTable) Len() int {
	return len(t.lines)
}

// Snapshot returns a copy of the per-line totals indexed by line number.
// Index 0 is never written because source lines are 1-based.
func (t *LineTable) Snapshot() []uint64 {
	out := make([]uint64, len(t.lines))
	copy(out, t.lines)
	return out
}

// sample applies one line event at time now and moves the bookkeeping to
// line. Elapsed time goes to the line that was current before this event.
// lastLine always fits because it passed EnsureCapacity on the previous event.
func (t *LineTable) sample(line int, now uint64) error {
	if err := t.EnsureCapacity(line); err != nil {
		return err
	}
	if t.sampled {
		var delta uint64
		if now > t.lastTime {
			delta = now - t.lastTime
		}
		t.Record(t.lastLine, delta)
	}
	t.lastTime = now
	t.lastLine = line
	t.sampled = true
	return nil
}
