package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/host"
	"github.com/fakeyudi/lineprof/internal/trace"
)

var (
	watchTarget targetFlags
	watchOutput outputFlags
)

var watchCmd = &cobra.Command{
	Use:   "watch [--file F | --pattern RE | --glob G] trace.tsv",
	Short: "Profile a trace file while another process is still writing it",
	Long: "Follows the trace file until its end marker is written, the file is removed,\n" +
		"or the command is interrupted, then writes the report.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return profileAndReport(cmd, "watch", path, &watchTarget, &watchOutput,
			func(ctx context.Context, d *host.Dispatcher) (trace.Stats, error) {
				cmd.PrintErrf("Watching %s (Ctrl-C to stop)\n", path)
				return trace.Follow(ctx, path, d, logger)
			})
	},
}

func init() {
	watchTarget.register(watchCmd)
	watchOutput.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
