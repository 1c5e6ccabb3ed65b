package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/pprof/profile"

	"github.com/fakeyudi/lineprof/internal/safe"
)

const (
	versionSentinel = "<!-- lineprof-report-version: 1 -->"
	dataPrefix      = "<!-- lineprof-data: "
	dataSuffix      = " -->"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
	// Ext is the file extension for rendered output, including the dot.
	Ext() string
}

// NewRenderer returns the renderer for a format name.
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "pprof":
		return &PprofRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want markdown, json or pprof)", format)
	}
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Ext() string { return ".json" }

func (JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload so the file can be parsed back losslessly.
type MarkdownRenderer struct {
	// TopN bounds the hotspot list; zero means 10.
	TopN int
}

func (MarkdownRenderer) Ext() string { return ".md" }

func (m MarkdownRenderer) Render(r *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	fmt.Fprintf(&sb, "# Line profile: %s (%s)\n\n", r.Run.Source, r.Run.StopTime.Format("2006-01-02 15:04:05 MST"))

	// ## Summary
	total := r.Total()
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Mode: %s\n", r.Run.Mode)
	fmt.Fprintf(&sb, "- Target: `%s`\n", r.Run.Target)
	fmt.Fprintf(&sb, "- Duration: %s\n", r.Run.Duration)
	fmt.Fprintf(&sb, "- Events: %d\n", r.Run.Events)
	fmt.Fprintf(&sb, "- Attributed time: %s\n", FormatMicros(total))
	if r.Run.Error != "" {
		fmt.Fprintf(&sb, "- Error: %s\n", r.Run.Error)
	}
	if r.Git != nil {
		fmt.Fprintf(&sb, "- Branch: %s\n", r.Git.Branch)
		fmt.Fprintf(&sb, "- Head commit: %s\n", r.Git.HeadCommit)
		if r.Git.Dirty {
			sb.WriteString("- Working tree: modified\n")
		}
	}
	sb.WriteString("\n")

	// ## Files
	sb.WriteString("## Files\n\n")
	if len(r.Files) == 0 {
		sb.WriteString("_No lines were profiled._\n")
	} else {
		sb.WriteString("| Path | Time | Share |\n")
		sb.WriteString("|------|------|-------|\n")
		for _, f := range r.Files {
			fmt.Fprintf(&sb, "| %s | %s | %.1f%% |\n", f.Path, FormatMicros(f.Total), Percent(f.Total, total))
		}
	}
	sb.WriteString("\n")

	// ## Hotspots
	topN := m.TopN
	if topN <= 0 {
		topN = 10
	}
	sb.WriteString("## Hotspots\n\n")
	spots := r.Hotspots(topN)
	if len(spots) == 0 {
		sb.WriteString("_No time recorded._\n")
	} else {
		for i, h := range spots {
			fmt.Fprintf(&sb, "%d. %s %s", i+1, inlineCode(fmt.Sprintf("%s:%d", h.Path, h.Line)), FormatMicros(h.Micros))
			if text := strings.TrimSpace(h.Text); text != "" {
				sb.WriteString(" " + inlineCode(text))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	// ## Source
	sb.WriteString("## Source\n\n")
	for _, f := range r.Files {
		fmt.Fprintf(&sb, "### %s\n\n", f.Path)
		fence := codeFence(f.Source)
		sb.WriteString(fence + "\n")
		writeAnnotated(&sb, &f)
		sb.WriteString(fence + "\n\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// writeAnnotated writes one row per line: time, line number and source text.
func writeAnnotated(sb *strings.Builder, f *FileReport) {
	last := f.LastLine()
	for line := 1; line <= last; line++ {
		us := f.Micros(line)
		col := ""
		if us > 0 {
			col = FormatMicros(us)
		}
		fmt.Fprintf(sb, "%10s | %5d | %s\n", col, line, f.SourceLine(line))
	}
}

// longestBacktickRun returns the longest run of consecutive backticks in s.
func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

// codeFence returns a backtick fence longer than any backtick run in lines.
func codeFence(lines []string) string {
	n := 3
	for _, l := range lines {
		n = max(n, longestBacktickRun(l)+1)
	}
	return strings.Repeat("`", n)
}

// inlineCode wraps s in a code span that survives backticks inside s.
func inlineCode(s string) string {
	run := longestBacktickRun(s)
	if run == 0 {
		return "`" + s + "`"
	}
	delim := strings.Repeat("`", run+1)
	return delim + " " + s + " " + delim
}

// PprofRenderer renders a Report as a gzipped pprof profile with one sample
// per line that recorded time, so `go tool pprof -list` works on scripts.
type PprofRenderer struct{}

func (PprofRenderer) Ext() string { return ".pb.gz" }

func (PprofRenderer) Render(r *Report) ([]byte, error) {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "wall", Unit: "microseconds"}},
		PeriodType: &profile.ValueType{Type: "wall", Unit: "microseconds"},
		Period:     1,
		TimeNanos:  r.Run.StartTime.UnixNano(),
	}
	if !r.Run.StopTime.IsZero() && r.Run.StopTime.After(r.Run.StartTime) {
		p.DurationNanos = r.Run.StopTime.Sub(r.Run.StartTime).Nanoseconds()
	}

	var nextID uint64 = 1
	for _, f := range r.Files {
		fn := &profile.Function{ID: uint64(len(p.Function) + 1), Name: f.Path, SystemName: f.Path, Filename: f.Path, StartLine: 1}
		p.Function = append(p.Function, fn)
		for line, us := range f.Lines {
			if us == 0 {
				continue
			}
			// Clamped values still sort as the most expensive line.
			v, _ := safe.Uint64ToInt64(us)
			loc := &profile.Location{ID: nextID, Line: []profile.Line{{Function: fn, Line: int64(line)}}}
			nextID++
			p.Location = append(p.Location, loc)
			p.Sample = append(p.Sample, &profile.Sample{Location: []*profile.Location{loc}, Value: []int64{v}})
		}
	}

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("building pprof profile: %w", err)
	}
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing pprof profile: %w", err)
	}
	return buf.Bytes(), nil
}
