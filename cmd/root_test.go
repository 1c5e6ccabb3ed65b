package cmd

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(new(bytes.Buffer))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// isolate points every per-user path at fresh temp dirs and clears flag
// values left over from earlier commands in the same test binary.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	runTarget, replayTarget, watchTarget = targetFlags{}, targetFlags{}, targetFlags{}
	runOutput, replayOutput, watchOutput = outputFlags{}, outputFlags{}, outputFlags{}
	plainOutput = false
	logLevel = ""
	logPretty = true
}

// requireBash5 skips the test unless a bash with EPOCHREALTIME is on PATH.
func requireBash5(t *testing.T) {
	t.Helper()
	out, err := exec.Command("bash", "-c", `printf %s "$EPOCHREALTIME"`).Output()
	if err != nil || len(out) == 0 {
		t.Skip("bash with EPOCHREALTIME not available")
	}
}
