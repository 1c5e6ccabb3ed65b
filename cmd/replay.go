package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	lperrors "github.com/fakeyudi/lineprof/internal/errors"
	"github.com/fakeyudi/lineprof/internal/host"
	"github.com/fakeyudi/lineprof/internal/trace"
)

var (
	replayTarget targetFlags
	replayOutput outputFlags
)

var replayCmd = &cobra.Command{
	Use:   "replay [--file F | --pattern RE | --glob G] trace.tsv",
	Short: "Profile a recorded trace file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		var in io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer lperrors.DeferClose(logger, f, "closing trace file")
			in = f
		}
		return profileAndReport(cmd, "replay", path, &replayTarget, &replayOutput,
			func(ctx context.Context, d *host.Dispatcher) (trace.Stats, error) {
				st, err := trace.Replay(ctx, in, d, logger)
				if isInterrupt(err) {
					return st, nil
				}
				return st, err
			})
	},
}

func init() {
	replayTarget.register(replayCmd)
	replayOutput.register(replayCmd)
	rootCmd.AddCommand(replayCmd)
}
