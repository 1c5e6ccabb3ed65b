package trace

import (
	"bufio"
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/lineprof/internal/host"
)

// Stats counts what a replay or follow delivered.
type Stats struct {
	Events    int
	Malformed int
}

// Emitter receives replayed events. *host.Dispatcher implements it.
type Emitter interface {
	Emit(path string, line int, ts uint64)
	EmitNow(path string, line int)
}

var _ Emitter = (*host.Dispatcher)(nil)

// maxLineBytes bounds one trace line; paths longer than this are malformed.
const maxLineBytes = 1 << 20

// Replay reads a finished trace from r and emits every event in order. It
// stops at EOF, at the end marker, or when ctx is cancelled.
func Replay(ctx context.Context, r io.Reader, e Emitter, logger zerolog.Logger) (Stats, error) {
	var st Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for n := 0; scanner.Scan(); n++ {
		if n&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		line := scanner.Text()
		if line == EndMarker {
			break
		}
		emitLine(line, e, &st, logger)
	}
	return st, scanner.Err()
}

func emitLine(line string, e Emitter, st *Stats, logger zerolog.Logger) {
	if isComment(line) {
		return
	}
	rec, err := ParseLine(line)
	if err != nil {
		st.Malformed++
		logger.Debug().Err(err).Msg("Skipping trace line")
		return
	}
	st.Events++
	if rec.Timed {
		e.Emit(rec.Path, rec.Line, rec.Time)
	} else {
		e.EmitNow(rec.Path, rec.Line)
	}
}
