package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/host"
	"github.com/fakeyudi/lineprof/internal/shell"
	"github.com/fakeyudi/lineprof/internal/trace"
)

var (
	runTarget targetFlags
	runOutput outputFlags
)

var runCmd = &cobra.Command{
	Use:   "run [--file F | --pattern RE | --glob G] script.sh [args...]",
	Short: "Run a bash script under the line tracer and write a report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, scriptArgs := args[0], args[1:]
		if _, err := os.Stat(script); err != nil {
			return err
		}
		return profileAndReport(cmd, "run", script, &runTarget, &runOutput,
			func(ctx context.Context, d *host.Dispatcher) (trace.Stats, error) {
				r := &shell.Runner{
					Shell:  GetConfig().Shell,
					Stdin:  cmd.InOrStdin(),
					Stdout: cmd.OutOrStdout(),
					Stderr: cmd.ErrOrStderr(),
					Logger: logger,
				}
				return r.Run(ctx, d, script, scriptArgs...)
			})
	},
}

func init() {
	// Flags after the script name belong to the script.
	runCmd.Flags().SetInterspersed(false)
	runTarget.register(runCmd)
	runOutput.register(runCmd)
	rootCmd.AddCommand(runCmd)
}
