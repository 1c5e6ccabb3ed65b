package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/lineprof"
)

// targetFlags selects which files a command profiles.
type targetFlags struct {
	file    string
	pattern string
	glob    string
}

func (tf *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&tf.file, "file", "f", "", "profile only this file")
	cmd.Flags().StringVarP(&tf.pattern, "pattern", "p", "", "profile every file whose path matches this regular expression")
	cmd.Flags().StringVarP(&tf.glob, "glob", "g", "", "profile every file whose path or base name matches this glob")
}

// target builds the profiler target; exactly one flag must be set.
func (tf *targetFlags) target() (lineprof.Target, error) {
	set := 0
	for _, v := range []string{tf.file, tf.pattern, tf.glob} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return lineprof.Target{}, fmt.Errorf("a target is required: pass --file, --pattern or --glob: %w", lineprof.ErrInvalidTarget)
	case set > 1:
		return lineprof.Target{}, fmt.Errorf("only one of --file, --pattern, --glob may be given: %w", lineprof.ErrInvalidTarget)
	}

	switch {
	case tf.file != "":
		return lineprof.ExactFile(tf.file), nil
	case tf.pattern != "":
		return lineprof.Pattern(tf.pattern)
	default:
		return lineprof.Glob(tf.glob)
	}
}
