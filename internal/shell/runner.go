package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	lperrors "github.com/fakeyudi/lineprof/internal/errors"
	"github.com/fakeyudi/lineprof/internal/trace"
)

// traceFD is the descriptor the child writes trace records to. ExtraFiles
// start at 3.
const traceFD = 3

// Runner runs a bash script under the tracer and emits its line events.
type Runner struct {
	Shell  string // defaults to "bash"
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger
}

// ExitError reports a traced script that exited unsuccessfully.
type ExitError struct {
	Script string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Script, e.Code)
}

// Run starts script with args and emits every traced line to e on the calling
// goroutine, returning when the script has exited and its trace is drained.
func (r *Runner) Run(ctx context.Context, e trace.Emitter, script string, args ...string) (trace.Stats, error) {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return trace.Stats{}, fmt.Errorf("creating trace pipe: %w", err)
	}

	// source searches PATH before the working directory for a bare name.
	entry := script
	if !strings.Contains(script, "/") {
		entry = "./" + script
	}
	cmdArgs := append([]string{"-c", BashTracer + bashEntry, entry}, args...)
	cmd := exec.CommandContext(ctx, shell, cmdArgs...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.ExtraFiles = []*os.File{pw}
	cmd.Env = append(os.Environ(), fmt.Sprintf("LINEPROF_TRACE_FD=%d", traceFD))

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return trace.Stats{}, fmt.Errorf("starting %s: %w", shell, err)
	}
	// The child holds its own copy; closing ours lets the reader see EOF.
	pw.Close()

	r.Logger.Debug().Str("script", script).Int("pid", cmd.Process.Pid).Msg("Traced script started")

	st, rerr := trace.Replay(ctx, pr, e, r.Logger)
	// Closing the read end before Wait unblocks a child still writing after
	// the reader gave up.
	lperrors.DeferClose(r.Logger, pr, "closing trace pipe")
	werr := cmd.Wait()

	if rerr != nil && !errors.Is(rerr, context.Canceled) {
		return st, fmt.Errorf("reading trace: %w", rerr)
	}
	if cerr := ctx.Err(); cerr != nil {
		return st, cerr
	}
	if werr != nil {
		var exitErr *exec.ExitError
		if errors.As(werr, &exitErr) {
			r.Logger.Warn().Str("script", script).Int("code", exitErr.ExitCode()).Msg("Traced script failed")
			return st, &ExitError{Script: script, Code: exitErr.ExitCode()}
		}
		return st, werr
	}
	if rerr != nil {
		return st, rerr
	}
	return st, nil
}
