// Package shell traces shell scripts line by line and installs the tracer
// for scripts launched outside lineprof.
package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TracerPath returns the path where the tracer file for shell is installed.
func TracerPath(shell string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	name := "lineprof.tracer." + shell
	return filepath.Join(home, ".config", "lineprof", name), nil
}

// Install writes the tracer file for shell and prints how to use it to out.
func Install(shell string, out io.Writer) error {
	var content string
	switch shell {
	case "bash":
		content = BashTracer
	default:
		return fmt.Errorf("unsupported shell for tracer: %s (supported: bash)", shell)
	}

	path, err := TracerPath(shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing tracer file: %w", err)
	}

	fmt.Fprintf(out, "\n  ✓ Tracer written to %s\n", path)
	fmt.Fprintf(out, "\n  Record a trace with:\n")
	fmt.Fprintf(out, "    LINEPROF_TRACE=trace.tsv bash -c 'source %s; source ./script.sh'\n", path)
	fmt.Fprintf(out, "\n  Then: lineprof replay --glob '*.sh' trace.tsv\n\n")
	return nil
}

// IsInstalled reports whether the tracer file exists on disk.
func IsInstalled(shell string) bool {
	path, err := TracerPath(shell)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
