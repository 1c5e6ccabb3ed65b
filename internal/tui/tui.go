// Package tui provides a Bubble Tea TUI for viewing lineprof reports.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/lineprof/internal/report"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	// Section heading inside a tab
	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))

	// Heat scale for per-line time, coolest first.
	heatStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabFiles
	tabSource
	tabHotspots
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Files", "Source", "Hotspots"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	report    *report.Report
	filename  string
	topN      int
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	// Files tab cursor; also selects the file shown in the Source tab.
	fileCursor int
	// Hotspots tab: show every line with time instead of the top N.
	showAll bool
}

// New creates a new TUI model for the given report and source filename.
// topN bounds the Hotspots tab; zero means 20.
func New(r *report.Report, filename string, topN int) Model {
	if topN <= 0 {
		topN = 20
	}
	return Model{
		report:   r,
		filename: filepath.Base(filename),
		topN:     topN,
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "a":
			if m.activeTab == tabHotspots {
				m.showAll = !m.showAll
				m.rebuild(tabHotspots)
				m.viewports[tabHotspots].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabFiles && m.fileCursor > 0 {
				m.selectFile(m.fileCursor - 1)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabFiles && m.fileCursor < len(m.report.Files)-1 {
				m.selectFile(m.fileCursor + 1)
				return m, nil
			}
		case "n":
			if m.activeTab == tabSource && len(m.report.Files) > 0 {
				m.selectFile((m.fileCursor + 1) % len(m.report.Files))
				return m, nil
			}
		case "p":
			if m.activeTab == tabSource && len(m.report.Files) > 0 {
				m.selectFile((m.fileCursor - 1 + len(m.report.Files)) % len(m.report.Files))
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabFiles && len(m.report.Files) > 0 {
				m.activeTab = tabSource
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  lineprof  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
	switch m.activeTab {
	case tabFiles:
		hint += "  ↑/↓ select  enter source"
	case tabSource:
		hint += "  n/p next/prev file"
	case tabHotspots:
		if m.showAll {
			hint += "  a top " + fmt.Sprint(m.topN)
		} else {
			hint += "  a all lines"
		}
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuild(t tabID) {
	m.viewports[t].SetContent(m.renderTab(t))
}

func (m *Model) selectFile(i int) {
	m.fileCursor = i
	m.rebuild(tabFiles)
	m.rebuild(tabSource)
	m.viewports[tabSource].GotoTop()
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabFiles:
		return m.renderFiles()
	case tabSource:
		return m.renderSource()
	case tabHotspots:
		return m.renderHotspots()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) renderSummary() string {
	run := m.report.Run
	var sb strings.Builder
	sb.WriteString(heading("Run Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Source:", run.Source)
	row("Mode:", run.Mode)
	row("Target:", run.Target)
	row("Work Dir:", run.WorkDir)
	row("Started:", run.StartTime.Format("2006-01-02 15:04:05 MST"))
	row("Duration:", run.Duration)
	row("Events:", fmt.Sprint(run.Events))
	row("Attributed:", timeStyle.Render(report.FormatMicros(m.report.Total())))
	if run.Error != "" {
		row("Error:", warnStyle.Render(run.Error))
	}
	if g := m.report.Git; g != nil {
		row("Branch:", g.Branch)
		head := g.HeadCommit
		if g.Dirty {
			head += dimStyle.Render(" (modified)")
		}
		row("Head Commit:", head)
	}

	if len(m.report.Warnings) > 0 {
		sb.WriteString(heading(fmt.Sprintf("Warnings (%d)", len(m.report.Warnings))))
		for _, w := range m.report.Warnings {
			sb.WriteString(warnStyle.Render("  ! ") + w + "\n")
		}
	}
	return sb.String()
}

func (m *Model) renderFiles() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Files (%d)", len(m.report.Files))))
	if len(m.report.Files) == 0 {
		sb.WriteString(dimStyle.Render("  (no lines were profiled)") + "\n")
		return sb.String()
	}
	total := m.report.Total()
	for i, f := range m.report.Files {
		row := fmt.Sprintf("  %10s  %5.1f%%  %s",
			report.FormatMicros(f.Total),
			report.Percent(f.Total, total),
			stripWorkDir(f.Path, m.report.Run.WorkDir),
		)
		if i == m.fileCursor {
			row = selectedRowStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")
	}
	return sb.String()
}

func (m *Model) renderSource() string {
	var sb strings.Builder
	if len(m.report.Files) == 0 {
		sb.WriteString(heading("Source"))
		sb.WriteString(dimStyle.Render("  (no lines were profiled)") + "\n")
		return sb.String()
	}
	f := &m.report.Files[m.fileCursor]
	sb.WriteString(heading(fmt.Sprintf("%s  %s", stripWorkDir(f.Path, m.report.Run.WorkDir), report.FormatMicros(f.Total))))
	if len(f.Source) == 0 {
		sb.WriteString(dimStyle.Render("  (source unavailable)") + "\n\n")
	}

	var peak uint64
	for _, v := range f.Lines {
		peak = max(peak, v)
	}
	last := f.LastLine()
	for line := 1; line <= last; line++ {
		us := f.Micros(line)
		col := ""
		if us > 0 {
			col = report.FormatMicros(us)
		}
		style := heatStyle(us, peak)
		sb.WriteString(style.Render(fmt.Sprintf("  %10s", col)) +
			dimStyle.Render(fmt.Sprintf(" %5d │ ", line)) +
			f.SourceLine(line) + "\n")
	}
	return sb.String()
}

func (m *Model) renderHotspots() string {
	var sb strings.Builder
	n := m.topN
	if m.showAll {
		n = 0
	}
	spots := m.report.Hotspots(n)
	if m.showAll {
		sb.WriteString(heading(fmt.Sprintf("All Lines (%d)", len(spots))))
	} else {
		sb.WriteString(heading(fmt.Sprintf("Top %d Lines", m.topN)))
	}
	if len(spots) == 0 {
		sb.WriteString(dimStyle.Render("  (no time recorded)") + "\n")
		return sb.String()
	}
	total := m.report.Total()
	for i, h := range spots {
		loc := fmt.Sprintf("%s:%d", stripWorkDir(h.Path, m.report.Run.WorkDir), h.Line)
		sb.WriteString(fmt.Sprintf("  %s %s %s  %s\n",
			dimStyle.Render(fmt.Sprintf("%3d.", i+1)),
			timeStyle.Render(fmt.Sprintf("%10s", report.FormatMicros(h.Micros))),
			dimStyle.Render(fmt.Sprintf("%5.1f%%", report.Percent(h.Micros, total))),
			loc,
		))
		if text := strings.TrimSpace(h.Text); text != "" {
			sb.WriteString(dimStyle.Render("        "+text) + "\n")
		}
	}
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// heatStyle picks a colour for us relative to the hottest line of the file.
func heatStyle(us, peak uint64) lipgloss.Style {
	if us == 0 || peak == 0 {
		return heatStyles[0]
	}
	steps := float64(len(heatStyles) - 1)
	idx := 1 + int(float64(us)/float64(peak)*(steps-1)+0.5)
	return heatStyles[min(idx, len(heatStyles)-1)]
}

// stripWorkDir removes the workDir prefix from path, returning a relative path.
// If path doesn't start with workDir, it's returned unchanged.
func stripWorkDir(path, workDir string) string {
	if workDir == "" {
		return path
	}
	prefix := workDir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	return path
}

// Run starts the TUI for the given report.
func Run(r *report.Report, filename string, topN int) error {
	p := tea.NewProgram(New(r, filename, topN), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
