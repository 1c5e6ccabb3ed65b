package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/lineprof/internal/report"
)

func sampleReport() *report.Report {
	return &report.Report{
		Run: report.RunMeta{Source: "build.sh", Mode: "run", Target: "pattern:\\.sh$", WorkDir: "/src", Events: 7},
		Files: []report.FileReport{
			{Path: "/src/build.sh", Lines: []uint64{0, 0, 900}, Total: 900, Source: []string{"set -e", "make all"}},
			{Path: "/src/lib/util.sh", Lines: []uint64{0, 100}, Total: 100, Source: []string{"helper() { :; }"}},
		},
		Warnings: []string{"not a git repository"},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	out, ok := m.(Model)
	require.True(t, ok)
	return out
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Loading…", New(sampleReport(), "r.md", 0).View())
}

func TestSummaryTab(t *testing.T) {
	m := send(t, New(sampleReport(), "/tmp/r.md", 5), tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	assert.Contains(t, view, "lineprof  r.md")
	assert.Contains(t, view, "build.sh")
	assert.Contains(t, view, "1.0ms")
	assert.Contains(t, view, "not a git repository")
}

func TestFilesSelectionDrivesSource(t *testing.T) {
	m := send(t, New(sampleReport(), "r.md", 5),
		tea.WindowSizeMsg{Width: 100, Height: 40},
		key("2"), key("down"), key("enter"),
	)
	assert.Equal(t, tabSource, m.activeTab)
	assert.Equal(t, 1, m.fileCursor)
	assert.Contains(t, m.View(), "lib/util.sh")
	assert.Contains(t, m.View(), "helper() { :; }")

	// n wraps back to the first file.
	m = send(t, m, key("n"))
	assert.Equal(t, 0, m.fileCursor)
	assert.Contains(t, m.View(), "make all")
}

func TestHotspotsToggle(t *testing.T) {
	m := send(t, New(sampleReport(), "r.md", 1),
		tea.WindowSizeMsg{Width: 100, Height: 40},
		key("4"),
	)
	view := m.View()
	assert.Contains(t, view, "Top 1 Lines")
	assert.Contains(t, view, "build.sh:2")
	assert.NotContains(t, view, "util.sh:1")

	m = send(t, m, key("a"))
	assert.True(t, m.showAll)
	assert.Contains(t, m.View(), "util.sh:1")
}

func TestQuit(t *testing.T) {
	m := send(t, New(sampleReport(), "r.md", 0), tea.WindowSizeMsg{Width: 80, Height: 20})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestEmptyReport(t *testing.T) {
	m := send(t, New(&report.Report{}, "empty.json", 0), tea.WindowSizeMsg{Width: 80, Height: 20}, key("3"))
	assert.True(t, strings.Contains(m.View(), "no lines were profiled"))
}

func TestHeatStyleScale(t *testing.T) {
	assert.Equal(t, heatStyles[0].Render("x"), heatStyle(0, 10).Render("x"))
	assert.Equal(t, heatStyles[len(heatStyles)-1].Render("x"), heatStyle(10, 10).Render("x"))
}
