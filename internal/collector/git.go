package collector

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/fakeyudi/lineprof/internal/report"
)

// GitRunner executes a git command and returns its output.
// This abstraction allows mocking in tests.
type GitRunner func(ctx context.Context, workDir string, args ...string) (string, error)

// GitCollector records which revision of the profiled code was run.
type GitCollector struct {
	WorkDir string
	Runner  GitRunner // if nil, uses the real git subprocess
}

// defaultGitRunner runs git as a real subprocess.
func defaultGitRunner(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workDir
	out, err := cmd.Output()
	return string(out), err
}

// Collect implements Collector. If the working directory is not a git
// repository (exit code 128), or git is not installed, it appends a warning
// and returns a result with nil GitInfo.
func (g *GitCollector) Collect(ctx context.Context, r *report.Report) (CollectorResult, error) {
	runner := g.Runner
	if runner == nil {
		runner = defaultGitRunner
	}

	workDir := g.WorkDir
	if workDir == "" {
		workDir = r.Run.WorkDir
	}

	// Determine branch; also serves as the "is this a git repo?" check.
	branch, err := runner(ctx, workDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		if isExitCode128(err) {
			return CollectorResult{Warnings: []string{"not a git repository"}}, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return CollectorResult{Warnings: []string{"git not found in PATH"}}, nil
		}
		return CollectorResult{}, err
	}

	headCommit, err := runner(ctx, workDir, "rev-parse", "HEAD")
	if err != nil {
		return CollectorResult{}, err
	}

	status, err := runner(ctx, workDir, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return CollectorResult{}, err
	}

	return CollectorResult{GitInfo: &report.GitInfo{
		Branch:     strings.TrimSpace(branch),
		HeadCommit: strings.TrimSpace(headCommit),
		Dirty:      strings.TrimSpace(status) != "",
	}}, nil
}

// isExitCode128 reports whether err is an *exec.ExitError with exit code 128.
func isExitCode128(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 128
	}
	return false
}
