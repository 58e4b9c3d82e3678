package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/conductor"
	"github.com/five82/shelf/internal/form"
	"github.com/five82/shelf/internal/logtail"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBooks View = iota
	ViewDiagnostics
)

type focusArea int

const (
	focusTitle focusArea = iota
	focusAuthor
	focusList
)

const (
	defaultPollTick = 100 * time.Millisecond
	logTailLines    = 400
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Conductor *conductor.Conductor
	Logger    *slog.Logger
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	LogPath   string // file shown in the Diagnostics view
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	conductor *conductor.Conductor
	logger    *slog.Logger
	prefsPath string
	logPath   string
	pollTick  time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Form state
	inputs [2]textinput.Model // title, author
	focus  focusArea
	notice notice

	// Data state
	snapshots   *snapshotReader
	snapshotSeq uint64
	status      conductor.Status
	snapshot    state.Snapshot
	lastUpdated time.Time
	inFlight    int

	// Books list state
	booksViewport viewport.Model
	filterInput   textinput.Model
	filtering     bool
	filter        string

	// Diagnostics state
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error
	follow      bool
}

type notice struct {
	text  string
	isErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Prompt = "Title  > "
	title.Focus()

	author := textinput.New()
	author.Placeholder = "Author"
	author.CharLimit = 200
	author.Prompt = "Author > "

	filter := textinput.New()
	filter.Placeholder = "fuzzy filter"
	filter.CharLimit = 100
	filter.Prompt = "/"

	m := Model{
		ctx:         ctx,
		conductor:   opts.Conductor,
		logger:      logger,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewBooks,
		inputs:      [2]textinput.Model{title, author},
		focus:       focusTitle,
		filterInput: filter,
		follow:      true,
		snapshot:    state.EmptySnapshot(),
	}
	if m.conductor != nil {
		m.snapshots = &snapshotReader{conductor: m.conductor}
		initial := m.snapshots.read()
		m.snapshotSeq = initial.seq
		m.status = initial.status
		m.snapshot = initial.snapshot
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tickCmd(m.pollTick),
	}
	if m.conductor != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.snapshots))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.booksViewport = viewport.New(m.width, m.booksHeight())
			m.logViewport = viewport.New(m.width, m.logHeight())
		}
		m.ready = true
		m.booksViewport.Width = m.width
		m.booksViewport.Height = m.booksHeight()
		m.logViewport.Width = m.width
		m.logViewport.Height = m.logHeight()
		m.updateBooksViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		// Fetches run concurrently; an older read can arrive after a newer one.
		if msg.seq <= m.snapshotSeq {
			return m, nil
		}
		m.snapshotSeq = msg.seq
		m.status = msg.status
		m.snapshot = msg.snapshot
		m.lastUpdated = time.Now()
		m.updateBooksViewport()
		return m, nil

	case submitDoneMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		if msg.err != nil {
			m.notice = notice{text: "Could not add " + quoteTitle(msg.book) + ": " + msg.err.Error(), isErr: true}
		} else {
			m.notice = notice{text: "Added " + quoteTitle(msg.book)}
		}
		if m.conductor != nil {
			return m, fetchSnapshotCmd(m.snapshots)
		}
		return m, nil

	case logLinesMsg:
		m.logEntries = msg.entries
		m.logErr = msg.err
		m.updateLogViewport()
		return m, nil
	}

	// Cursor blink and other input-internal messages.
	return m.updateFocusedInput(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	switch m.currentView {
	case ViewDiagnostics:
		b.WriteString(m.renderDiagnostics())
	default:
		b.WriteString(m.renderBooks())
	}
	return b.String()
}

// inputFocused reports whether keystrokes go to a text input.
func (m Model) inputFocused() bool {
	return m.filtering || (m.currentView == ViewBooks && m.focus != focusList)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	if m.inputFocused() {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
			m.logger.Warn("save prefs failed", slog.Any("error", err))
		}
		m.updateBooksViewport()
		m.updateLogViewport()
		return m, nil
	case key.Matches(msg, m.keys.ViewBooks):
		m.currentView = ViewBooks
		return m, nil
	case key.Matches(msg, m.keys.ViewDiagnostics):
		m.currentView = ViewDiagnostics
		return m, readLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewDiagnostics {
			m.currentView = ViewBooks
			return m, nil
		}
		m.filter = ""
		m.filterInput.Reset()
		m.updateBooksViewport()
		return m, nil
	}

	if m.currentView == ViewDiagnostics {
		return m.handleDiagnosticsKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab):
		return m, m.setFocus(m.focus + 1)
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.setFocus(m.focus + focusList)
	case key.Matches(msg, m.keys.Escape):
		return m, m.setFocus(focusList)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m.updateFocusedInput(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.Edit):
		return m, m.setFocus(focusTitle)
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.setFocus(focusAuthor)
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filterInput.SetValue(m.filter)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.Up):
		m.booksViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.booksViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.booksViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.booksViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.booksViewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.booksViewport.PageDown()
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.filtering = false
		m.filterInput.Blur()
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.updateBooksViewport()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.filter = ""
		m.updateBooksViewport()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filter = strings.TrimSpace(m.filterInput.Value())
	m.updateBooksViewport()
	return m, cmd
}

func (m Model) handleDiagnosticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Follow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Up):
		m.follow = false
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.logViewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
	}
	return m, nil
}

// setFocus moves focus, wrapping across title, author, and the list.
func (m *Model) setFocus(next focusArea) tea.Cmd {
	m.focus = next % (focusList + 1)
	var cmd tea.Cmd
	for i := range m.inputs {
		if focusArea(i) == m.focus {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus == focusList {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the form and, when every field has a value, dispatches
// it in the background. Invalid input is logged and never reaches the
// conductor.
func (m Model) submit() (tea.Model, tea.Cmd) {
	values := form.Serialize(form.BookFields(m.inputs[0].Value(), m.inputs[1].Value()))
	if err := values.Validate(); err != nil {
		m.logger.Warn(form.ErrMissingField.Error(), slog.Any("error", err))
		m.notice = notice{text: "Both title and author are required", isErr: true}
		return m, nil
	}
	if m.conductor == nil {
		return m, nil
	}

	book := values.Book()
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	cmd := m.setFocus(focusTitle)
	m.inFlight++
	m.notice = notice{text: "Adding " + quoteTitle(book) + "..."}
	return m, tea.Batch(cmd, submitCmd(m.ctx, m.conductor, book))
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.conductor != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.snapshots))
	}
	if m.currentView == ViewDiagnostics && m.follow {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) booksHeight() int {
	// header, command bar, form panel (4 rows + border), notice line
	h := m.height - 2 - 6 - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) logHeight() int {
	h := m.height - 2 - 1
	if h < 1 {
		h = 1
	}
	return h
}

func quoteTitle(b shelf.Book) string {
	return fmt.Sprintf("%q", b.Title)
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	seq      uint64
	status   conductor.Status
	snapshot state.Snapshot
}

type submitDoneMsg struct {
	book shelf.Book
	err  error
}

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// snapshotReader numbers conductor reads so the model can drop stale ones.
// Models share one reader across copies.
type snapshotReader struct {
	mu        sync.Mutex
	seq       uint64
	conductor *conductor.Conductor
}

func (r *snapshotReader) read() snapshotMsg {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return snapshotMsg{
		seq:      r.seq,
		status:   r.conductor.Status(),
		snapshot: r.conductor.Store().Snapshot(),
	}
}

func fetchSnapshotCmd(r *snapshotReader) tea.Cmd {
	return func() tea.Msg {
		return r.read()
	}
}

func submitCmd(ctx context.Context, c *conductor.Conductor, book shelf.Book) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{book: book, err: c.SubmitForm(ctx, book)}
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{entries: logtail.ParseLines(lines), err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
