package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivemeter/internal/config"
	"github.com/linuxmatters/jivemeter/internal/meter"
)

// SnapshotMsg carries the analysis state after a frame
type SnapshotMsg meter.Snapshot

// CompleteMsg signals the end of the session
type CompleteMsg struct {
	Summary meter.Summary
	Err     error
}

// quitMsg is sent when it's time to quit after showing completion
type quitMsg struct{}

// Options configures the meter display
type Options struct {
	Title     string // usually the input file name
	BarColor  string // hex, defaults to the brand bar colour
	PeakColor string // hex, defaults to the ember peak colour
	QuitDelay time.Duration
	ShowScope bool
	BarWidth  int
}

// Model implements the Bubbletea model for the live band meter
type Model struct {
	opts      Options
	bar       progress.Model
	peakColor lipgloss.Color

	snap     meter.Snapshot
	received bool
	complete *CompleteMsg

	startTime time.Time
	width     int
	height    int
}

// NewModel creates the meter model
func NewModel(opts Options) *Model {
	if opts.BarColor == "" {
		opts.BarColor = config.FormatHexColor(config.BarColorR, config.BarColorG, config.BarColorB)
	}
	if opts.PeakColor == "" {
		opts.PeakColor = config.FormatHexColor(config.PeakColorR, config.PeakColorG, config.PeakColorB)
	}
	if opts.BarWidth <= 0 {
		opts.BarWidth = config.MeterWidth
	}

	// Ember gradient: dark red → brand colour
	bar := progress.New(
		progress.WithGradient(string(emberDark), opts.BarColor),
		progress.WithWidth(opts.BarWidth),
		progress.WithoutPercentage(),
	)

	return &Model{
		opts:      opts,
		bar:       bar,
		peakColor: lipgloss.Color(opts.PeakColor),
		startTime: time.Now(),
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(msg.Width-40, m.opts.BarWidth))
		return m, nil

	case SnapshotMsg:
		m.snap = meter.Snapshot(msg)
		m.received = true
		return m, nil

	case CompleteMsg:
		m.complete = &msg
		if m.opts.QuitDelay <= 0 {
			return m, tea.Quit
		}
		return m, tea.Tick(m.opts.QuitDelay, func(time.Time) tea.Msg {
			return quitMsg{}
		})

	case quitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		// Any key leaves the completion screen; ctrl+c always quits
		if m.complete != nil || msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m *Model) View() string {
	if m.complete != nil {
		return m.CompletionSummary()
	}
	return m.renderLive()
}

// Interrupted reports whether the model quit before the session completed
func (m *Model) Interrupted() bool {
	return m.complete == nil
}

func (m *Model) title() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(emberYellow).
		Render("Jivemeter")
	if m.opts.Title != "" {
		title += lipgloss.NewStyle().Faint(true).Render("  " + m.opts.Title)
	}
	return title
}

func (m *Model) renderLive() string {
	var s strings.Builder

	s.WriteString(m.title())
	s.WriteString("\n\n")

	if !m.received {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Waiting for audio..."))
		return m.box(s.String(), emberOrange)
	}

	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Frame %d  │  Audio %s  │  Wall %s",
			m.snap.Frame, formatDuration(m.snap.Elapsed), formatDuration(time.Since(m.startTime)))))
	s.WriteString("\n\n")

	labelWidth := 0
	for _, b := range m.snap.Bands {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
	}
	labelStyle := lipgloss.NewStyle().Faint(true).Width(labelWidth + 2)

	for _, b := range m.snap.Bands {
		s.WriteString(labelStyle.Render(b.Label))
		s.WriteString(m.bar.ViewAs(clamp01(b.Level)))
		s.WriteString(" ")
		s.WriteString(peakMarker(b.PeakLevel, m.peakColor))
		freq := "     -"
		if b.Frequency > 0 {
			freq = fmt.Sprintf("%6s", formatHz(float64(b.Frequency))+"Hz")
		}
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("  " + freq))
		if b.Isolated {
			s.WriteString(lipgloss.NewStyle().Foreground(emberCrimson).Render("  iso"))
		}
		s.WriteString("\n")
	}

	levels := make([]float64, len(m.snap.Bands))
	for i, b := range m.snap.Bands {
		levels[i] = b.Level
	}
	s.WriteString("\n")
	s.WriteString(renderSpectrum(levels, m.bar.Width))

	if m.opts.ShowScope && len(m.snap.Scope) > 0 {
		s.WriteString("\n\n")
		s.WriteString(lipgloss.NewStyle().Faint(true).Render(
			fmt.Sprintf("Waveform (trigger %d)", m.snap.TriggerIndex)))
		s.WriteString("\n")
		s.WriteString(renderScope(m.snap.Scope))
	}

	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Ceiling %.0f  │  Floor %.0f  │  Sample ceiling %.0f", m.snap.Max, m.snap.Min, m.snap.SampleMax)))

	return m.box(s.String(), emberOrange)
}

// CompletionSummary returns the final summary for printing after the
// program exits. Returns an empty string until the session completes.
func (m *Model) CompletionSummary() string {
	if m.complete == nil {
		return ""
	}

	var s strings.Builder
	if m.complete.Err != nil {
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(emberCrimson).Render("✗ Analysis stopped"))
		s.WriteString("\n\n")
		s.WriteString(m.complete.Err.Error())
		s.WriteString("\n\n")
	} else {
		s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4A9B4A")).Render("✓ Analysis Complete!"))
		s.WriteString("\n\n")
	}

	sum := m.complete.Summary
	labelStyle := lipgloss.NewStyle().Faint(true)
	s.WriteString(fmt.Sprintf("%s%s\n", labelStyle.Render("Audio:    "), formatDuration(sum.Duration)))
	s.WriteString(fmt.Sprintf("%s%d × %d samples @ %d Hz\n", labelStyle.Render("Frames:   "), sum.Frames, sum.SampleSize, sum.SampleRate))
	s.WriteString(fmt.Sprintf("%s%s\n\n", labelStyle.Render("Analysis: "), formatDuration(sum.AnalysisTime)))

	labelWidth := 0
	for _, b := range sum.Bands {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
	}
	nameStyle := lipgloss.NewStyle().Width(labelWidth + 2)
	for _, b := range sum.Bands {
		ratio := 0.0
		if sum.GlobalMax > 0 {
			ratio = b.PeakValue / sum.GlobalMax
		}
		s.WriteString(nameStyle.Render(b.Label))
		s.WriteString(makeGradientBar(ratio, 20))
		s.WriteString(labelStyle.Render(fmt.Sprintf("  peak %.0f @ %sHz", b.PeakValue, formatHz(float64(b.PeakFrequency)))))
		s.WriteString("\n")
	}

	color := lipgloss.Color("#4A9B4A")
	if m.complete.Err != nil {
		color = emberCrimson
	}
	return m.box(strings.TrimRight(s.String(), "\n"), color) + "\n"
}

func (m *Model) box(content string, border lipgloss.Color) string {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Render(content)
}
