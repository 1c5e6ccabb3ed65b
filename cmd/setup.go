package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/config"
	"github.com/fakeyudi/lineprof/internal/shell"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure lineprof (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup works before a config exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd)
	},
}

// runSetup runs the interactive setup wizard, saves the global config and
// installs the tracer for scripts profiled outside `lineprof run`.
func runSetup(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// Load existing config as defaults if present.
	var existing *config.Config
	if config.Exists() {
		if c, err := config.LoadGlobal(); err == nil {
			existing = c
		}
	}

	c, err := config.RunSetup(existing, cmd.InOrStdin(), out)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := config.Save(c); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintln(out, "  ✓ Config saved.")

	if err := shell.Install("bash", out); err != nil {
		fmt.Fprintf(out, "  ⚠ Tracer install failed: %v\n", err)
		fmt.Fprintln(out, "    You can retry with: lineprof setup")
	}

	fmt.Fprintln(out, "  Setup complete. Run 'lineprof run --file script.sh script.sh' to profile a script.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
