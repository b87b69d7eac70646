package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JohnDeved/mediaseek/internal/catalog"
	"github.com/JohnDeved/mediaseek/internal/nav"
)

// Catalog is the backend the TUI browses.
type Catalog interface {
	Search(ctx context.Context, query string) ([]catalog.SearchResult, error)
	Details(ctx context.Context, path string) (*catalog.DetailResponse, error)
	Download(ctx context.Context, key string) (*catalog.DownloadResponse, error)
}

// Journal records what the user looked at. Failures are logged, never shown.
type Journal interface {
	RecordSearch(session, query string, resultCount int) error
	RecordListing(session, title, fileName, downloadKey string, fileCount int) error
}

// Options configures a TUI session.
type Options struct {
	QueryWidth int
	Logger     *slog.Logger
	Journal    Journal // optional
	SessionID  string
}

// Model is the main Bubble Tea model.
type Model struct {
	catalog Catalog
	state   nav.State
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	log     *slog.Logger
	journal Journal
	session string

	// cancel tears down the outstanding fetch.
	cancel    context.CancelFunc
	startedAt time.Time

	// offset is the first visible row of the active list.
	offset int
	width  int
	height int
}

// NewModel creates the TUI model.
func NewModel(c Catalog, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return Model{
		catalog: c,
		state:   nav.New(opts.QueryWidth),
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: s,
		log:     logger,
		journal: opts.Journal,
		session: opts.SessionID,
	}
}

// State returns the current session state.
func (m Model) State() nav.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.normalizeViewport()
		return m, nil

	case tea.KeyMsg:
		var cmds []tea.Cmd
		for _, ev := range m.keys.translate(msg) {
			var cmd tea.Cmd
			m, cmd = m.step(ev)
			cmds = append(cmds, cmd)
			if m.state.Done {
				break
			}
		}
		return m, tea.Batch(cmds...)

	case nav.Event:
		return m.step(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// step feeds one event through the engine and turns the outcome into commands.
func (m Model) step(ev nav.Event) (Model, tea.Cmd) {
	prev := m.state
	next, fetch := nav.Update(prev, ev)
	m.state = next

	if reflect.TypeOf(prev.Screen) != reflect.TypeOf(next.Screen) {
		m.offset = 0
	}
	m.normalizeViewport()

	if prev.Pending != nil && next.Pending == nil {
		m.settle(*prev.Pending, ev)
	} else if isCompletion(ev) {
		m.log.Debug("ignoring stale response", "id", completionID(ev))
	}

	if next.Done {
		m.stopFetch()
		m.log.Info("session ended")
		return m, tea.Quit
	}

	if fetch != nil {
		return m, m.startFetch(*fetch)
	}
	return m, nil
}

// settle handles the end of the outstanding fetch f, however it ended.
func (m *Model) settle(f nav.Fetch, ev nav.Event) {
	m.stopFetch()
	elapsed := time.Since(m.startedAt).Round(time.Millisecond)

	if !isCompletion(ev) {
		m.log.Info("fetch abandoned", "id", f.ID, "kind", f.Kind.String(), "arg", f.Arg)
		return
	}
	if m.state.Err != nil {
		m.log.Warn("fetch failed", "id", f.ID, "kind", f.Kind.String(), "arg", f.Arg, "elapsed", elapsed, "err", m.state.Err)
		return
	}

	switch ev := ev.(type) {
	case nav.SearchDone:
		m.log.Info("search completed", "id", f.ID, "query", f.Arg, "results", len(ev.Results), "elapsed", elapsed)
		m.record(func(j Journal) error {
			return j.RecordSearch(m.session, f.Arg, len(ev.Results))
		})
	case nav.DetailsDone:
		m.log.Info("details loaded", "id", f.ID, "path", f.Arg, "downloads", len(m.state.DownloadItems()), "elapsed", elapsed)
	case nav.FilesDone:
		m.log.Info("files loaded", "id", f.ID, "key", f.Arg, "files", len(ev.Files), "elapsed", elapsed)
		result, _ := m.state.SelectedResult()
		item, _ := m.state.SelectedDownload()
		m.record(func(j Journal) error {
			return j.RecordListing(m.session, result.Title, item.FileName, f.Arg, len(ev.Files))
		})
	}
}

func (m *Model) record(fn func(Journal) error) {
	if m.journal == nil {
		return
	}
	if err := fn(m.journal); err != nil {
		m.log.Warn("history write failed", "err", err)
	}
}

func (m *Model) startFetch(f nav.Fetch) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.startedAt = time.Now()
	m.log.Debug("fetch started", "id", f.ID, "kind", f.Kind.String(), "arg", f.Arg)
	return runFetch(ctx, m.catalog, f)
}

func (m *Model) stopFetch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// runFetch performs f against the catalog and reports the outcome as an engine event.
func runFetch(ctx context.Context, c Catalog, f nav.Fetch) tea.Cmd {
	return func() tea.Msg {
		switch f.Kind {
		case nav.FetchSearch:
			results, err := c.Search(ctx, f.Arg)
			return nav.SearchDone{ID: f.ID, Results: results, Err: err}
		case nav.FetchDetails:
			details, err := c.Details(ctx, f.Arg)
			return nav.DetailsDone{ID: f.ID, Details: details, Err: err}
		case nav.FetchFiles:
			resp, err := c.Download(ctx, f.Arg)
			var files []catalog.FileItem
			if resp != nil {
				files = resp.Files
			}
			return nav.FilesDone{ID: f.ID, Files: files, Err: err}
		}
		return nil
	}
}

func isCompletion(ev nav.Event) bool {
	switch ev.(type) {
	case nav.SearchDone, nav.DetailsDone, nav.FilesDone:
		return true
	}
	return false
}

func completionID(ev nav.Event) uint64 {
	switch ev := ev.(type) {
	case nav.SearchDone:
		return ev.ID
	case nav.DetailsDone:
		return ev.ID
	case nav.FilesDone:
		return ev.ID
	}
	return 0
}

// normalizeViewport keeps the selected row of the active list inside the visible window.
func (m *Model) normalizeViewport() {
	sel, ok := m.state.Selection()
	if !ok {
		m.offset = 0
		return
	}
	m.offset = scrollOffset(m.offset, sel, m.listLen(), m.listRows())
}

func scrollOffset(offset, cursor, total, rows int) int {
	if rows < 1 {
		rows = 1
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+rows {
		offset = cursor - rows + 1
	}
	maxOffset := total - rows
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Run starts the TUI and blocks until the session ends.
func Run(ctx context.Context, c Catalog, opts Options) error {
	p := tea.NewProgram(NewModel(c, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.state.Done {
		fmt.Fprintln(os.Stdout, "Search canceled")
	}
	return nil
}
