package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/session"
	"github.com/fakeyudi/lineprof/internal/shell"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the profiling run in progress, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewStore()
		if err != nil {
			return err
		}

		run, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no active session")
			} else {
				return err
			}
		} else {
			state := "running"
			if !run.Alive() {
				state = "stale (process exited)"
			}
			cmd.Printf("Run: %s (%s)\n", run.ID, state)
			cmd.Printf("PID: %d\n", run.PID)
			cmd.Printf("Mode: %s\n", run.Mode)
			cmd.Printf("Target: %s\n", run.Target)
			cmd.Printf("Source: %s\n", run.Source)
			cmd.Printf("Started: %s\n", run.StartTime.Format(time.RFC3339))
			cmd.Printf("Duration: %s\n", time.Since(run.StartTime).Round(time.Second).String())
		}

		if shell.IsInstalled("bash") {
			cmd.Println("Tracer: installed")
		} else {
			cmd.Println("Tracer: not installed (run 'lineprof setup')")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
