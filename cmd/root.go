package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/lineprof/internal/config"
	"github.com/fakeyudi/lineprof/internal/logging"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg = config.Defaults()

// baseLogger is rebuilt from flags and config before every command. Packages
// that tag their own component derive from it; logger is the CLI's view.
var (
	baseLogger = zerolog.Nop()
	logger     = zerolog.Nop()
)

var (
	logLevel  string
	logPretty bool
)

var rootCmd = &cobra.Command{
	Use:           "lineprof",
	Short:         "Measure the wall-clock time spent on every line of a shell script",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// First run: no global config yet, run the setup wizard when a user
		// is there to answer it. Non-interactive use continues with defaults.
		if !config.Exists() && isTerminal(cmd.InOrStdin()) {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to lineprof! Looks like this is your first time.")
			if err := runSetup(cmd); err != nil {
				return err
			}
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		lc := logging.DefaultConfig()
		lc.Level = cfg.LogLevel
		if logLevel != "" {
			lc.Level = logLevel
		}
		lc.Pretty = logPretty
		lc.Output = cmd.ErrOrStderr()
		baseLogger = logging.New(lc)
		logger = logging.WithComponent(baseLogger, "cli")
		logger.Debug().Str("command", cmd.Name()).Msg("Configuration loaded")
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "human-readable log output instead of JSON")
}
