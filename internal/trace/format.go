// Package trace reads and writes line-event traces and replays them into a
// host dispatcher.
//
// A trace is UTF-8 text, one event per line:
//
//	<usec>\t<line>\t<path>
//
// usec is a microsecond timestamp and may be empty when the tracer had no
// clock. Lines starting with '#' are comments; "# end" marks a finished trace.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EndMarker terminates a trace that is being followed.
const EndMarker = "# end"

// ErrMalformed is returned by ParseLine for lines that are not events.
var ErrMalformed = errors.New("malformed trace line")

// Record is one line event read from a trace.
type Record struct {
	Time  uint64
	Timed bool
	Line  int
	Path  string
}

// ParseLine parses one trace line. Comments must be filtered by the caller.
func ParseLine(s string) (Record, error) {
	s = strings.TrimRight(s, "\r")
	first := strings.IndexByte(s, '\t')
	if first < 0 {
		return Record{}, fmt.Errorf("%w: missing fields", ErrMalformed)
	}
	second := strings.IndexByte(s[first+1:], '\t')
	if second < 0 {
		return Record{}, fmt.Errorf("%w: missing path", ErrMalformed)
	}
	second += first + 1

	var rec Record
	if ts := s[:first]; ts != "" {
		v, err := strconv.ParseUint(ts, 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformed, ts)
		}
		rec.Time = v
		rec.Timed = true
	}
	line, err := strconv.Atoi(s[first+1 : second])
	if err != nil || line < 0 {
		return Record{}, fmt.Errorf("%w: bad line number %q", ErrMalformed, s[first+1:second])
	}
	rec.Line = line
	rec.Path = s[second+1:]
	if rec.Path == "" {
		return Record{}, fmt.Errorf("%w: empty path", ErrMalformed)
	}
	return rec, nil
}

// isComment reports whether s carries no event.
func isComment(s string) bool {
	return s == "" || s[0] == '#'
}

// Writer writes trace records.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer that buffers output to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record.
func (tw *Writer) Write(rec Record) error {
	if rec.Timed {
		if _, err := tw.w.WriteString(strconv.FormatUint(rec.Time, 10)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(tw.w, "\t%d\t%s\n", rec.Line, rec.Path)
	return err
}

// Flush writes buffered records to the underlying writer.
func (tw *Writer) Flush() error {
	return tw.w.Flush()
}

// Close writes the end marker and flushes.
func (tw *Writer) Close() error {
	if _, err := tw.w.WriteString(EndMarker + "\n"); err != nil {
		return err
	}
	return tw.w.Flush()
}
