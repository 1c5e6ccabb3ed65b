package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/lineprof/internal/report"
)

// generateViewReport produces a populated report for the view command.
func generateViewReport(t *rapid.T) *report.Report {
	sec := rapid.Int64Range(1_000_000_000, 1_700_000_000).Draw(t, "unix_sec")
	ts := time.Unix(sec, 0).UTC()

	r := &report.Report{
		Run: report.RunMeta{
			ID:        rapid.StringN(1, 36, -1).Draw(t, "id"),
			Mode:      "replay",
			Target:    rapid.StringN(1, 30, -1).Draw(t, "target"),
			Source:    rapid.StringN(1, 30, -1).Draw(t, "source"),
			StartTime: ts,
			StopTime:  ts,
			Duration:  rapid.StringN(1, 20, -1).Draw(t, "duration"),
		},
		Git:      &report.GitInfo{Branch: "main", HeadCommit: "abc"},
		Warnings: []string{rapid.StringN(1, 30, -1).Draw(t, "warning")},
	}
	n := rapid.IntRange(1, 4).Draw(t, "num_files")
	for i := 0; i < n; i++ {
		lines := rapid.SliceOfN(rapid.Uint64Range(0, 1_000_000), 1, 20).Draw(t, "lines")
		var total uint64
		for _, v := range lines {
			total += v
		}
		r.Files = append(r.Files, report.FileReport{
			Path:  rapid.StringMatching(`[a-z]{1,8}\.sh`).Draw(t, "path"),
			Lines: lines,
			Total: total,
		})
	}
	return r
}

// TestViewNonExistentFile verifies that viewing a missing file returns
// "file not found: <path>".
func TestViewNonExistentFile(t *testing.T) {
	isolate(t)
	missingPath := filepath.Join(t.TempDir(), "does-not-exist.md")

	out, err := executeCommand(rootCmd, "view", missingPath)
	require.Error(t, err)
	assert.Contains(t, out+err.Error(), "file not found: "+missingPath)
}

// TestViewInvalidReport verifies that viewing a file without the lineprof
// sentinel is rejected.
func TestViewInvalidReport(t *testing.T) {
	isolate(t)
	plainMD := writeFile(t, "plain.md", "# Just a regular markdown file\n\nNo sentinel here.\n")

	out, err := executeCommand(rootCmd, "view", plainMD)
	require.Error(t, err)
	assert.Contains(t, out+err.Error(), "not a valid lineprof report")
}

func TestViewRejectsPprof(t *testing.T) {
	isolate(t)
	data, err := (&report.PprofRenderer{}).Render(&report.Report{})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "p.pb.gz")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = executeCommand(rootCmd, "view", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go tool pprof")
}

func TestViewPlainMarkdownReport(t *testing.T) {
	isolate(t)
	r := &report.Report{
		Run:   report.RunMeta{Source: "build.sh", Mode: "run", Target: "file:build.sh"},
		Files: []report.FileReport{{Path: "build.sh", Lines: []uint64{0, 1500}, Total: 1500, Source: []string{"make"}}},
	}
	data, err := (&report.MarkdownRenderer{}).Render(r)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "r.md")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := executeCommand(rootCmd, "view", "--plain", path)
	require.NoError(t, err)
	assert.Contains(t, out, "build.sh:1  make")
	assert.Contains(t, out, "1.5ms")
}

func TestViewSectionOrder(t *testing.T) {
	sectionHeaders := []string{"## Summary", "## Files", "## Hotspots", "## Warnings"}

	rapid.Check(t, func(rt *rapid.T) {
		r := generateViewReport(rt)

		var buf bytes.Buffer
		printReport(&buf, r, 5)
		output := buf.String()

		positions := make([]int, len(sectionHeaders))
		for i, header := range sectionHeaders {
			pos := strings.Index(output, header)
			if pos == -1 {
				rt.Fatalf("section header %q not found in output:\n%s", header, output)
			}
			positions[i] = pos
		}
		for i := 0; i < len(positions)-1; i++ {
			if positions[i] >= positions[i+1] {
				rt.Errorf("section %q (pos %d) does not appear before %q (pos %d)",
					sectionHeaders[i], positions[i], sectionHeaders[i+1], positions[i+1])
			}
		}
	})
}
