package trace

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ErrRemoved is returned by Follow when the trace file disappears before its
// end marker was read.
var ErrRemoved = errors.New("trace file removed")

// Follow emits the events of a trace file that another process is still
// writing. It returns nil once the end marker is read or ctx is cancelled,
// and ErrRemoved if the file is removed or renamed first.
func Follow(ctx context.Context, path string, e Emitter, logger zerolog.Logger) (Stats, error) {
	var st Stats

	f, err := os.Open(path)
	if err != nil {
		return st, err
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return st, err
	}
	defer watcher.Close()

	// Watch the directory so removal and rename of the file are reported.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return st, err
	}

	tl := &tailer{f: f, buf: make([]byte, 32*1024)}
	drain := func() (bool, error) {
		return tl.drain(func(line string) bool {
			if line == EndMarker {
				return false
			}
			emitLine(line, e, &st, logger)
			return true
		})
	}

	if done, err := drain(); done || err != nil {
		return st, err
	}

	clean := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return st, nil

		case event, ok := <-watcher.Events:
			if !ok {
				return st, nil
			}
			if filepath.Clean(event.Name) != clean {
				continue
			}
			if event.Has(fsnotify.Write) {
				if done, err := drain(); done || err != nil {
					return st, err
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// Pick up anything written just before the removal.
				if done, err := drain(); done || err != nil {
					return st, err
				}
				return st, ErrRemoved
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return st, nil
			}
			// Watcher errors are non-fatal; keep following.
			logger.Warn().Err(werr).Str("path", path).Msg("Trace watcher error")
		}
	}
}

// tailer reads complete lines from a file that may still be growing.
type tailer struct {
	f       *os.File
	buf     []byte
	pending []byte
}

// drain reads to the current end of file and hands every complete line to
// fn. It reports done when fn returns false.
func (t *tailer) drain(fn func(line string) bool) (done bool, err error) {
	for {
		n, rerr := t.f.Read(t.buf)
		if n > 0 {
			t.pending = append(t.pending, t.buf[:n]...)
			for {
				i := bytes.IndexByte(t.pending, '\n')
				if i < 0 {
					break
				}
				line := string(t.pending[:i])
				t.pending = t.pending[i+1:]
				if !fn(line) {
					return true, nil
				}
			}
		}
		if rerr == io.EOF {
			return false, nil
		}
		if rerr != nil {
			return false, rerr
		}
	}
}
