// Package tui provides a Bubble Tea terminal user interface for isd-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/isd-downloader/internal/config"
	"github.com/handiism/isd-downloader/internal/download"
	"github.com/handiism/isd-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	stationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	station  model.StationRecord
	err      error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// Download progress
	snapshot download.Progress

	verbose bool

	width  int
	height int
}

const (
	inputQuery = iota
	inputOutput
)

// NewModel creates a new TUI model using settings as the base configuration.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	query := textinput.New()
	query.Placeholder = "CHICAGO"
	query.Focus()
	query.CharLimit = 100
	query.Width = 60

	output := textinput.New()
	output.Placeholder = config.DefaultOutputDirectory
	output.SetValue(settings.OutputDirectory)
	output.CharLimit = 500
	output.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   []textinput.Model{query, output},
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan download.ProgressEvent, 256),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the download manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when station resolution completes.
	InitDoneMsg struct {
		Station model.StationRecord
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Progress download.Progress
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.inputs[m.focus].Blur()
				m.focus = (m.focus + 1) % len(m.inputs)
				return m, m.inputs[m.focus].Focus()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.inputs[inputQuery].Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.waitForEvent(), m.spinner.Tick)
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				return m.reset(), textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.station = msg.Station
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.snapshot = msg.Progress
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.snapshot = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(yearsPercent(m.snapshot)), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reset prepares the model for a new download, keeping the typed values.
func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.station = model.StationRecord{}
	m.snapshot = download.Progress{}
	m.manager = nil
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.events = make(chan download.ProgressEvent, 256)
	m.focus = inputQuery
	m.inputs[inputOutput].Blur()
	m.inputs[inputQuery].Focus()
	return m
}

func yearsPercent(p download.Progress) float64 {
	if p.YearsTotal == 0 {
		return 0
	}
	return float64(p.YearsDone) / float64(p.YearsTotal)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent blocks until the manager emits the next event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case event := <-events:
			return ProgressMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🌦  ISD Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download NOAA Integrated Surface Data"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Station name:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputQuery].View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Output directory:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputOutput].View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", verboseCheck))

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Looking up station..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(stationStyle.Render(fmt.Sprintf("Station %s (%s), %s-%s",
		m.station.ID, m.station.Country, m.station.StartYear, m.station.EndYear)))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(yearsPercent(m.snapshot)))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Years: %d/%d | Files: %d (%d failed) | Downloaded: %.2f MB",
		m.snapshot.YearsDone,
		m.snapshot.YearsTotal,
		m.snapshot.FilesDone,
		m.snapshot.FilesFailed,
		float64(m.snapshot.BytesReceived)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Station: %s\n"+
			"Years: %d\n"+
			"Files: %d (%d failed)\n"+
			"Size: %.2f MB",
		m.station.ID,
		m.snapshot.YearsDone,
		m.snapshot.FilesDone,
		m.snapshot.FilesFailed,
		float64(m.snapshot.BytesReceived)/1024/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • ctrl+v: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload resolves the station and creates the manager.
func (m Model) initializeDownload() tea.Cmd {
	query := strings.TrimSpace(m.inputs[inputQuery].Value())

	settings := *m.settings
	if out := strings.TrimSpace(m.inputs[inputOutput].Value()); out != "" {
		settings.OutputDirectory = out
	}

	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		manager := download.NewManager(&settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			default:
				// UI is behind; drop the line rather than stall the download.
			}
		})

		if err := manager.Initialize(ctx, query); err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Station: manager.Station(),
			Manager: manager,
		}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload() tea.Cmd {
	manager := m.manager
	ctx := m.ctx

	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := manager.StartDownloads(ctx)
		if wErr := manager.WriteMetrics(); wErr != nil && err == nil {
			err = wErr
		}

		return DownloadDoneMsg{
			Progress: manager.GetProgress(),
			Err:      err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
