package collector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/lineprof/internal/report"
)

// DefaultMaxLines bounds how much of one source file is read.
const DefaultMaxLines = 100_000

// SourceCollector reads the text of every profiled file so reports can show
// time next to each line.
type SourceCollector struct {
	WorkDir        string   // relative report paths resolve against this
	IgnorePatterns []string // glob patterns; matching files keep no source
	MaxLines       int      // zero means DefaultMaxLines
}

// Collect implements Collector. Unreadable files produce a warning rather
// than an error.
func (sc *SourceCollector) Collect(ctx context.Context, r *report.Report) (CollectorResult, error) {
	result := CollectorResult{Sources: make(map[string][]string, len(r.Files))}
	for _, f := range r.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if sc.isIgnored(f.Path) {
			continue
		}
		lines, err := sc.readLines(f.Path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("source unavailable for %s: %v", f.Path, err))
			continue
		}
		result.Sources[f.Path] = lines
	}
	return result, nil
}

func (sc *SourceCollector) resolve(path string) string {
	if filepath.IsAbs(path) || sc.WorkDir == "" {
		return path
	}
	return filepath.Join(sc.WorkDir, path)
}

func (sc *SourceCollector) readLines(path string) ([]string, error) {
	f, err := os.Open(sc.resolve(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := sc.MaxLines
	if limit <= 0 {
		limit = DefaultMaxLines
	}

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if len(lines) == limit {
			break
		}
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}

// isIgnored reports whether path matches any ignore pattern by base name,
// working-directory-relative path or full path.
func (sc *SourceCollector) isIgnored(path string) bool {
	base := filepath.Base(path)
	rel := path
	if sc.WorkDir != "" && filepath.IsAbs(path) {
		if r, err := filepath.Rel(sc.WorkDir, path); err == nil {
			rel = r
		}
	}
	for _, pattern := range sc.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
