package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConfirmView ViewState = iota
	SyncView
	ResultView
)

// recentLimit caps the playlist summaries shown under the spinner.
const recentLimit = 5

// Options configure a [Model].
type Options struct {
	AutoStart bool // skip the confirm view
	DryRun    bool // only changes the headings; the engine carries the actual option
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  tasks.SyncEngine
	names   []string
	options Options

	width     int
	height    int
	playlists list.Model
	results   list.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	cancel       context.CancelFunc
	progressChan chan tasks.ProgressUpdate
	doneChan     chan syncDoneMsg
	progress     tasks.ProgressUpdate
	recent       []string
	result       *tasks.SyncResult
	err          error
}

// NewModel creates a new TUI model that syncs names with engine.
func NewModel(ctx context.Context, engine tasks.SyncEngine, names []string, opts Options) *Model {
	items := make([]list.Item, len(names))
	for i, n := range names {
		items[i] = playlistItem{name: n}
	}

	playlists := list.New(items, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Playlists to sync"
	playlists.SetShowHelp(false)

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:       ctx,
		view:      ConfirmView,
		engine:    engine,
		names:     names,
		options:   opts,
		playlists: playlists,
		results:   results,
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Result returns the finished run and its error, both nil until the engine returns.
func (m *Model) Result() (*tasks.SyncResult, error) {
	return m.result, m.err
}

// State returns the current view state.
func (m *Model) State() ViewState {
	return m.view
}

// Init starts the sync immediately when AutoStart is set.
func (m *Model) Init() tea.Cmd {
	if m.options.AutoStart {
		return m.startSync()
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlists.SetSize(msg.Width-4, msg.Height-6)
		m.results.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != SyncView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		update := tasks.ProgressUpdate(msg)
		m.progress = update
		if update.Phase == tasks.PlaylistDone {
			m.recent = append(m.recent, update.Message)
			if len(m.recent) > recentLimit {
				m.recent = m.recent[len(m.recent)-recentLimit:]
			}
		}
		return m, waitForProgress(m.progressChan, m.doneChan)

	case syncDoneMsg:
		m.cancel()
		m.result = msg.result
		m.err = msg.err
		m.progressChan = nil
		m.doneChan = nil
		m.view = ResultView
		m.results = m.buildResults()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ConfirmView:
		switch {
		case key.Matches(msg, m.keys.quit), msg.String() == "n":
			return m, tea.Quit
		case key.Matches(msg, m.keys.start):
			return m, m.startSync()
		}
		var cmd tea.Cmd
		m.playlists, cmd = m.playlists.Update(msg)
		return m, cmd

	case SyncView:
		// the engine stops through context cancellation only
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil

	case ResultView:
		if key.Matches(msg, m.keys.quit) || msg.String() == "enter" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) startSync() tea.Cmd {
	m.view = SyncView
	m.progressChan = make(chan tasks.ProgressUpdate, 64)
	m.doneChan = make(chan syncDoneMsg, 1)

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	progress, done := m.progressChan, m.doneChan
	go func() {
		result, err := m.engine.Sync(ctx, m.names, progress)
		done <- syncDoneMsg{result: result, err: err}
		close(progress)
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progress, done))
}

// waitForProgress reads the next update; once the channel is closed the final result is delivered.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan syncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressMsg(update)
		}
		return <-done
	}
}

func (m *Model) buildResults() list.Model {
	var items []list.Item
	if m.result != nil {
		for _, r := range m.result.Results {
			items = append(items, resultItem{result: r})
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	l.Title = "Sync results"
	l.SetShowHelp(false)
	return l
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) heading(s string) string {
	if m.options.DryRun {
		s += " (dry run)"
	}
	return styles.title.Render(s)
}

func (m *Model) renderConfirm() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.start, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.heading("YouTube Music → Spotify"), m.playlists.View(), helpView)
}

func (m *Model) renderSync() string {
	var b strings.Builder

	b.WriteString(m.heading("Syncing playlists"))
	b.WriteString("\n")

	status := m.progress.Message
	if status == "" {
		status = "Starting..."
	}
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), status)

	if m.progress.Total > 0 {
		b.WriteString(styles.help.Render(fmt.Sprintf("%s %d/%d", m.progress.Phase, m.progress.Step, m.progress.Total)))
		b.WriteString("\n")
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.help.Render("ctrl+c to abort"))
	return b.String()
}

func (m *Model) renderResult() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.ok.Render("✓ Sync complete"))
		b.WriteString("\n\n")
	}

	if m.result != nil {
		added, unresolved := 0, 0
		for _, r := range m.result.Results {
			added += r.Added
			unresolved += len(r.Unresolved)
		}
		fmt.Fprintf(&b, "Playlists: %d/%d processed, %d found on source\n", len(m.result.Results), m.result.Configured, m.result.Matched)
		fmt.Fprintf(&b, "Tracks added: %d\n", added)
		if unresolved > 0 {
			b.WriteString(styles.warn.Render(fmt.Sprintf("Unresolved tracks: %d", unresolved)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if len(m.result.Results) > 0 {
			b.WriteString(m.results.View())
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit}))
	return b.String()
}

// Run shows the sync TUI until the user quits and returns the engine's result.
func Run(ctx context.Context, engine tasks.SyncEngine, names []string, opts Options) (*tasks.SyncResult, error) {
	model := NewModel(ctx, engine, names, opts)

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := final.(*Model); ok {
		return m.Result()
	}
	return nil, nil
}
