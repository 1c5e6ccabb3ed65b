package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/lineprof/internal/host"
	"github.com/fakeyudi/lineprof/internal/lineprof"
)

// requireBash5 skips the test unless a bash with EPOCHREALTIME is on PATH.
func requireBash5(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	out, err := exec.Command("bash", "-c", `printf %s "$EPOCHREALTIME"`).Output()
	if err != nil || len(out) == 0 {
		t.Skip("bash without EPOCHREALTIME")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "work.sh")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunnerProfilesScriptLines(t *testing.T) {
	requireBash5(t)
	script := writeScript(t, "sleep 0.05\ntrue\nx=1\n")

	d := host.NewDispatcher(nil)
	p := lineprof.New(d, zerolog.Nop())
	r := &Runner{Logger: zerolog.Nop()}

	var events int
	res, err := p.Start(lineprof.ExactFile(script), func() error {
		st, err := r.Run(context.Background(), d, script)
		events = st.Events
		return err
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if events < 3 {
		t.Fatalf("expected at least 3 traced lines, got %d", events)
	}
	lines, ok := res[script]
	if !ok {
		t.Fatalf("result missing %s: %v", script, res)
	}
	if lines[1] < 40_000 {
		t.Errorf("line 1 (sleep 0.05) = %dus, want >= 40000", lines[1])
	}
	if lines[2] > lines[1] {
		t.Errorf("line 2 (%dus) should be cheaper than line 1 (%dus)", lines[2], lines[1])
	}
}

func TestRunnerPassesArgumentsAndOutput(t *testing.T) {
	requireBash5(t)
	script := writeScript(t, "echo \"$1-$2\"\n")

	var out strings.Builder
	r := &Runner{Stdout: &out, Logger: zerolog.Nop()}
	if _, err := r.Run(context.Background(), host.NewDispatcher(nil), script, "a", "b"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "a-b" {
		t.Errorf("script output = %q, want %q", out.String(), "a-b")
	}
}

func TestRunnerReportsExitStatus(t *testing.T) {
	requireBash5(t)
	script := writeScript(t, "true\nexit 3\n")

	r := &Runner{Logger: zerolog.Nop()}
	st, err := r.Run(context.Background(), host.NewDispatcher(nil), script)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.Code)
	}
	if st.Events < 2 {
		t.Errorf("expected events up to the exit, got %d", st.Events)
	}
}

func TestRunnerPrefersWorkingDirectoryOverPath(t *testing.T) {
	requireBash5(t)
	dir := t.TempDir()
	decoys := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "deploy.sh"), []byte("echo real\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if err := os.WriteFile(filepath.Join(decoys, "deploy.sh"), []byte("echo decoy\n"), 0o755); err != nil {
		t.Fatalf("write decoy: %v", err)
	}
	t.Setenv("PATH", decoys+string(os.PathListSeparator)+os.Getenv("PATH"))
	chdir(t, dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}

	d := host.NewDispatcher(nil)
	p := lineprof.New(d, zerolog.Nop())
	var out strings.Builder
	r := &Runner{Stdout: &out, Logger: zerolog.Nop()}

	res, err := p.Start(lineprof.ExactFile(filepath.Join(wd, "deploy.sh")), func() error {
		_, err := r.Run(context.Background(), d, "deploy.sh")
		return err
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if strings.TrimSpace(out.String()) != "real" {
		t.Errorf("script output = %q, want %q", out.String(), "real")
	}
	if _, ok := res["deploy.sh"]; !ok {
		t.Errorf("result missing deploy.sh: %v", res)
	}
}

func TestRunnerMissingShell(t *testing.T) {
	r := &Runner{Shell: filepath.Join(t.TempDir(), "no-such-shell"), Logger: zerolog.Nop()}
	if _, err := r.Run(context.Background(), host.NewDispatcher(nil), "x.sh"); err == nil {
		t.Fatal("expected an error for a missing shell")
	}
}

func TestInstallWritesTracer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var out strings.Builder
	if err := Install("bash", &out); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !IsInstalled("bash") {
		t.Fatal("expected tracer to be installed")
	}
	path, _ := TracerPath("bash")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "trap ") {
		t.Errorf("installed tracer has no DEBUG trap")
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("instructions do not mention %s: %s", path, out.String())
	}

	if err := Install("fish", &out); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
