package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RunSetup runs the interactive setup wizard, reading answers from in and
// writing prompts to out. If existing is non-nil, its values are the default
// for each prompt (edit mode). The result is not saved.
func RunSetup(existing *Config, in io.Reader, out io.Writer) (*Config, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	cfg := Defaults()
	cfg.Shell = detectShell()
	if existing != nil {
		cfg = Merge(existing, nil)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │   lineprof: first-time setup    │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	format, err := ask("  Default report format (markdown/json/pprof)", cfg.DefaultFormat)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "pprof":
		cfg.DefaultFormat = format
	default:
		cfg.DefaultFormat = "markdown"
	}

	if cfg.OutputDir, err = ask("  Default output directory", cfg.OutputDir); err != nil {
		return nil, err
	}

	if cfg.Shell, err = ask("  Shell used to run scripts", cfg.Shell); err != nil {
		return nil, err
	}

	topN, err := ask("  Hotspots listed per report", strconv.Itoa(cfg.TopN))
	if err != nil {
		return nil, err
	}
	if n, convErr := strconv.Atoi(topN); convErr == nil && n > 0 {
		cfg.TopN = n
	}

	fmt.Fprintln(out)
	return &cfg, nil
}

// detectShell returns the login shell when it is a bash, so a newer bash
// installed outside the system path is preferred, and plain "bash" otherwise.
func detectShell() string {
	if sh := os.Getenv("SHELL"); filepath.Base(sh) == "bash" {
		return sh
	}
	return "bash"
}
