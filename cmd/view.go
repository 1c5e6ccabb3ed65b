package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/report"
	"github.com/fakeyudi/lineprof/internal/tui"
)

var plainOutput bool

// gzipMagic starts every pprof report.
var gzipMagic = []byte{0x1f, 0x8b}

var viewCmd = &cobra.Command{
	Use:   "view <report>",
	Short: "View a Markdown or JSON report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}
		if bytes.HasPrefix(data, gzipMagic) {
			return fmt.Errorf("%s is a pprof profile: open it with `go tool pprof -list . %s`", path, path)
		}

		var parser report.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			parser = &report.JSONParser{}
		case ".md", ".markdown":
			parser = &report.MarkdownParser{}
		default:
			parser = report.ParserFor(data)
		}

		r, err := parser.Parse(data)
		if err != nil {
			return err
		}

		if plainOutput || !isTerminal(cmd.OutOrStdout()) {
			printReport(cmd.OutOrStdout(), r, GetConfig().TopN)
			return nil
		}
		return tui.Run(r, path, GetConfig().TopN)
	},
}

// printReport writes a plain-text rendition of r to w.
func printReport(w io.Writer, r *report.Report, topN int) {
	total := r.Total()

	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Source:    %s\n", r.Run.Source)
	fmt.Fprintf(w, "  Mode:      %s\n", r.Run.Mode)
	fmt.Fprintf(w, "  Target:    %s\n", r.Run.Target)
	fmt.Fprintf(w, "  Started:   %s\n", r.Run.StartTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Duration:  %s\n", r.Run.Duration)
	fmt.Fprintf(w, "  Events:    %d\n", r.Run.Events)
	fmt.Fprintf(w, "  Attributed: %s\n", report.FormatMicros(total))
	if r.Run.Error != "" {
		fmt.Fprintf(w, "  Error:     %s\n", r.Run.Error)
	}
	if r.Git != nil {
		fmt.Fprintf(w, "  Branch:    %s\n", r.Git.Branch)
		fmt.Fprintf(w, "  Commit:    %s\n", r.Git.HeadCommit)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Files")
	if len(r.Files) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, f := range r.Files {
		fmt.Fprintf(w, "  %10s  %5.1f%%  %s\n", report.FormatMicros(f.Total), report.Percent(f.Total, total), f.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Hotspots")
	spots := r.Hotspots(topN)
	if len(spots) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, h := range spots {
		fmt.Fprintf(w, "  %3d. %10s  %s:%d  %s\n", i+1, report.FormatMicros(h.Micros), h.Path, h.Line, strings.TrimSpace(h.Text))
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "## Warnings")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
