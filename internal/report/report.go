// Package report turns profiling results into renderable reports.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/fakeyudi/lineprof/internal/lineprof"
)

// Report is the complete, renderable representation of one profiling run.
type Report struct {
	Run      RunMeta      `json:"run"`
	Files    []FileReport `json:"files"`
	Git      *GitInfo     `json:"git,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// RunMeta holds summary metadata about the run.
type RunMeta struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`   // "run" | "replay" | "watch"
	Target    string    `json:"target"` // e.g. "file:main.sh" or "pattern:^lib/"
	Source    string    `json:"source"` // script or trace file
	WorkDir   string    `json:"work_dir"`
	StartTime time.Time `json:"start_time"`
	StopTime  time.Time `json:"stop_time"`
	Duration  string    `json:"duration"` // human-readable, e.g. "1.2s"
	Events    int       `json:"events"`
	Error     string    `json:"error,omitempty"` // workload failure, if any
}

// FileReport is the per-line time of one profiled file.
type FileReport struct {
	Path  string   `json:"path"`
	Lines []uint64 `json:"lines"` // microseconds, index = line number
	Total uint64   `json:"total_us"`
	// Source holds the file's text, one entry per line starting at line 1,
	// when it could be read at report time.
	Source []string `json:"source,omitempty"`
}

// GitInfo holds repository state captured when the report was built.
type GitInfo struct {
	Branch     string `json:"branch"`
	HeadCommit string `json:"head_commit"`
	Dirty      bool   `json:"dirty"` // uncommitted changes were present
}

// Hotspot is one line ranked by time spent.
type Hotspot struct {
	Path   string
	Line   int
	Micros uint64
	Text   string
}

// FromResult converts a profiler result into file reports ordered by total
// time, most expensive first, then by path.
func FromResult(res lineprof.Result) []FileReport {
	files := make([]FileReport, 0, len(res))
	for path, lines := range res {
		var total uint64
		for _, v := range lines {
			total += v
		}
		files = append(files, FileReport{Path: path, Lines: lines, Total: total})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Total != files[j].Total {
			return files[i].Total > files[j].Total
		}
		return files[i].Path < files[j].Path
	})
	return files
}

// Total returns the time attributed across all files.
func (r *Report) Total() uint64 {
	var total uint64
	for _, f := range r.Files {
		total += f.Total
	}
	return total
}

// Hotspots returns up to n lines with the most time across all files.
// n <= 0 returns every line with recorded time.
func (r *Report) Hotspots(n int) []Hotspot {
	var spots []Hotspot
	for _, f := range r.Files {
		for line, us := range f.Lines {
			if us == 0 {
				continue
			}
			spots = append(spots, Hotspot{Path: f.Path, Line: line, Micros: us, Text: f.SourceLine(line)})
		}
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Micros != spots[j].Micros {
			return spots[i].Micros > spots[j].Micros
		}
		if spots[i].Path != spots[j].Path {
			return spots[i].Path < spots[j].Path
		}
		return spots[i].Line < spots[j].Line
	})
	if n > 0 && len(spots) > n {
		spots = spots[:n]
	}
	return spots
}

// SourceLine returns the text of a 1-based line, or "" when unknown.
func (f *FileReport) SourceLine(line int) string {
	if line < 1 || line > len(f.Source) {
		return ""
	}
	return f.Source[line-1]
}

// LastLine returns the highest line worth displaying: the last line with
// time or the last source line, whichever is greater.
func (f *FileReport) LastLine() int {
	last := len(f.Source)
	for i := len(f.Lines) - 1; i > last; i-- {
		if f.Lines[i] != 0 {
			return i
		}
	}
	return last
}

// Micros returns the time of a line, or zero when outside the table.
func (f *FileReport) Micros(line int) uint64 {
	if line < 0 || line >= len(f.Lines) {
		return 0
	}
	return f.Lines[line]
}

// FormatMicros renders a microsecond count for humans.
func FormatMicros(us uint64) string {
	switch {
	case us >= 1_000_000:
		return fmt.Sprintf("%.2fs", float64(us)/1e6)
	case us >= 1_000:
		return fmt.Sprintf("%.1fms", float64(us)/1e3)
	default:
		return fmt.Sprintf("%dus", us)
	}
}

// Percent returns part as a percentage of whole.
func Percent(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
