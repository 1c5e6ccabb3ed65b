package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/collector"
	"github.com/fakeyudi/lineprof/internal/host"
	"github.com/fakeyudi/lineprof/internal/lineprof"
	"github.com/fakeyudi/lineprof/internal/report"
	"github.com/fakeyudi/lineprof/internal/session"
	"github.com/fakeyudi/lineprof/internal/trace"
)

// outputFlags control where and how a report is written.
type outputFlags struct {
	format string
	output string
}

func (of *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&of.format, "format", "", "report format: markdown, json or pprof (overrides config)")
	cmd.Flags().StringVarP(&of.output, "output", "o", "", "report path (default <output_dir>/lineprof-<time><ext>)")
}

// workload feeds line events for one profiling run into d.
type workload func(ctx context.Context, d *host.Dispatcher) (trace.Stats, error)

// profileAndReport holds the run lock while work executes under the
// profiler, then writes the report. A failing workload still produces a
// report; its error is returned afterwards.
func profileAndReport(cmd *cobra.Command, mode, source string, tf *targetFlags, of *outputFlags, work workload) error {
	target, err := tf.target()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(of.format)
	if err != nil {
		return err
	}

	store, err := session.NewStore()
	if err != nil {
		return err
	}
	run := session.NewRun(mode, target.String(), source)
	if err := store.Acquire(run); err != nil {
		return err
	}
	defer func() {
		if err := store.Delete(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release run lock")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := host.NewDispatcher(nil)
	d.SetDir(run.WorkDir)
	p := lineprof.New(d, baseLogger)

	var st trace.Stats
	res, perr := p.Start(target, func() error {
		var werr error
		st, werr = work(ctx, d)
		return werr
	})
	stopTime := time.Now()
	if res == nil {
		return perr
	}
	if st.Malformed > 0 {
		logger.Warn().Int("lines", st.Malformed).Msg("Skipped malformed trace lines")
	}

	r := &report.Report{
		Run: report.RunMeta{
			ID:        run.ID,
			Mode:      mode,
			Target:    target.String(),
			Source:    source,
			WorkDir:   run.WorkDir,
			StartTime: run.StartTime,
			StopTime:  stopTime,
			Duration:  stopTime.Sub(run.StartTime).Round(time.Millisecond).String(),
			Events:    st.Events,
		},
		Files: report.FromResult(res),
	}
	if perr != nil {
		r.Run.Error = perr.Error()
	}

	err = collector.Enrich(context.WithoutCancel(ctx), r,
		&collector.SourceCollector{WorkDir: run.WorkDir, IgnorePatterns: cfg.IgnorePatterns},
		&collector.GitCollector{WorkDir: run.WorkDir},
	)
	if err != nil {
		return err
	}

	path, err := writeReport(r, renderer, of.output, stopTime)
	if err != nil {
		return err
	}

	for _, w := range r.Warnings {
		cmd.PrintErrf("warning: %s\n", w)
	}
	cmd.Printf("Profiled %d file(s), %s attributed. Report: %s\n", len(r.Files), report.FormatMicros(r.Total()), path)
	return perr
}

func newRenderer(format string) (report.Renderer, error) {
	if format == "" {
		format = cfg.DefaultFormat
	}
	renderer, err := report.NewRenderer(format)
	if err != nil {
		return nil, err
	}
	if md, ok := renderer.(*report.MarkdownRenderer); ok {
		md.TopN = cfg.TopN
	}
	return renderer, nil
}

// writeReport renders r to path, or to a timestamped file in the configured
// output directory when path is empty.
func writeReport(r *report.Report, renderer report.Renderer, path string, now time.Time) (string, error) {
	data, err := renderer.Render(r)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	if path == "" {
		outputDir := cfg.OutputDir
		if outputDir == "" {
			outputDir = "."
		}
		path = filepath.Join(outputDir, "lineprof-"+now.Format("20060102-150405")+renderer.Ext())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return path, nil
}

// isInterrupt reports whether err only records that the user stopped the run.
func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled)
}
