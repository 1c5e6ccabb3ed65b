package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/lineprof/internal/session"
)

func TestStatusNoSession(t *testing.T) {
	isolate(t)
	out, err := executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "no active session")
	assert.Contains(t, out, "Tracer: not installed")
}

func TestStatusReportsRun(t *testing.T) {
	isolate(t)
	store, err := session.NewStore()
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		run := session.NewRun(
			rapid.SampledFrom([]string{"run", "replay", "watch"}).Draw(rt, "mode"),
			"pattern:"+rapid.StringMatching(`[a-z/^$.]{1,20}`).Draw(rt, "pattern"),
			rapid.StringMatching(`[a-z]{1,10}\.tsv`).Draw(rt, "source"),
		)
		if err := store.Acquire(run); err != nil {
			rt.Fatalf("Acquire: %v", err)
		}
		defer store.Delete()

		out, err := executeCommand(rootCmd, "status")
		if err != nil {
			rt.Fatalf("status command error: %v", err)
		}
		for _, want := range []string{"Mode: " + run.Mode, "Target: " + run.Target, "Source: " + run.Source, "(running)"} {
			if !assert.Contains(rt, out, want) {
				return
			}
		}
	})
}

func TestStatusStaleRun(t *testing.T) {
	isolate(t)
	store, err := session.NewStore()
	require.NoError(t, err)
	require.NoError(t, store.Acquire(&session.Run{ID: "old", PID: 0, StartTime: time.Now()}))

	out, err := executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "stale")
}
