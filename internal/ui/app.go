package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/prefs"
	"github.com/five82/checklist/internal/todos"
)

// Loader performs the collection reads. *session.Session implements it.
type Loader interface {
	Start(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Mutator runs mutations. *mutation.Coordinator implements it.
type Mutator interface {
	Add(ctx context.Context, p mutation.AddParams) (todos.Item, error)
	Toggle(ctx context.Context, p mutation.ToggleParams) (todos.Item, error)
	Delete(ctx context.Context, p mutation.DeleteParams) error
	Status(kind mutation.Kind) mutation.Status
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *cache.Store
	Loader    Loader
	Mutator   Mutator
	Logger    *slog.Logger
	Endpoint  string
	LogPath   string
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *cache.Store
	loader    Loader
	mutator   Mutator
	logger    *slog.Logger
	endpoint  string
	logPath   string
	prefsPath string
	keys      keyMap

	// Snapshot subscription
	snapCh      <-chan cache.Snapshot
	unsubscribe func()

	// UI state
	theme  Theme
	filter prefs.Filter
	width  int
	height int
	ready  bool

	// Data state
	snapshot cache.Snapshot
	cursor   int // index into visibleItems()

	// Draft input
	draft    textinput.Model
	drafting bool
	adding   bool // submitted draft awaiting the server

	// Overlays
	modal    Modal
	showHelp bool

	spinner spinner.Model
	notice  notice
}

// notice is a transient message shown above the footer.
type notice struct {
	text  string
	isErr bool
	seq   int
}

// New creates a new Bubble Tea model and subscribes it to the store.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	filter := opts.Prefs.Filter
	if !filter.Valid() {
		filter = prefs.FilterAll
	}

	draft := textinput.New()
	draft.Prompt = "> "
	draft.Placeholder = "New item..."
	draft.CharLimit = DraftCharLimit

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		loader:    opts.Loader,
		mutator:   opts.Mutator,
		logger:    logging.OrDiscard(opts.Logger),
		endpoint:  opts.Endpoint,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		filter:    filter,
		draft:     draft,
		spinner:   sp,
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
		m.snapCh, m.unsubscribe = m.store.Subscribe()
	}
	return m
}

// Close stops the snapshot subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.startCmd(),
	}
	if m.snapCh != nil {
		cmds = append(cmds, waitForSnapshot(m.snapCh))
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
		m.draft.Width = maxInt(10, msg.Width-6)
		m.ready = true
		return m, nil

	case snapshotMsg:
		m.applySnapshot(cache.Snapshot(msg))
		return m, waitForSnapshot(m.snapCh)

	case loadedMsg:
		if msg.err != nil {
			m.logger.Debug("load failed", "error", msg.err)
			if m.snapshot.IsReady() {
				cmd := m.setNotice("Refresh failed: "+msg.err.Error(), true)
				return m, cmd
			}
		}
		return m, nil

	case addedMsg:
		return m.handleAdded(msg)

	case toggledMsg:
		if msg.err != nil {
			cmd := m.setNotice("Toggle failed: "+msg.err.Error(), true)
			return m, cmd
		}
		return m, nil

	case deleteDecisionMsg:
		return m, m.deleteCmd(msg.item, msg.confirmed)

	case deletedMsg:
		if msg.err != nil {
			cmd := m.setNotice("Delete failed: "+msg.err.Error(), true)
			return m, cmd
		}
		if msg.confirmed {
			cmd := m.setNotice("Deleted "+truncate(msg.text, 40), false)
			return m, cmd
		}
		return m, nil

	case noticeExpiredMsg:
		if int(msg) == m.notice.seq {
			m.notice.text = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.drafting {
		var cmd tea.Cmd
		m.draft, cmd = m.draft.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.renderModal()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.drafting {
		return m.handleDraftKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Add):
		m.drafting = true
		cmd := m.draft.Focus()
		return m, cmd
	}

	// List keys need data
	if !m.snapshot.IsReady() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.filter = m.filter.Next()
		m.clampCursor()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, m.toggleCmd(item)

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.modal = newConfirmDelete(item)
		return m, nil
	}

	return m.handleListNav(msg), nil
}

// handleDraftKey routes keys to the draft input.
func (m Model) handleDraftKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if m.adding {
			return m, nil
		}
		m.adding = true
		return m, m.addCmd(m.draft.Value())
	case key.Matches(msg, m.keys.Cancel):
		m.drafting = false
		m.draft.Reset()
		m.draft.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	return m, cmd
}

// handleAdded clears the draft on success or blank text and keeps it on
// failure. A draft edited or cancelled since submit is left alone.
func (m Model) handleAdded(msg addedMsg) (tea.Model, tea.Cmd) {
	m.adding = false
	if msg.err != nil && !isBlank(msg.err) {
		cmd := m.setNotice("Add failed: "+msg.err.Error(), true)
		return m, cmd
	}
	if !m.drafting || m.draft.Value() != msg.text {
		return m, nil
	}
	m.draft.Reset()
	m.draft.Blur()
	m.drafting = false
	return m, nil
}

// handleListNav moves the cursor.
func (m Model) handleListNav(msg tea.KeyMsg) Model {
	count := len(m.visibleItems())
	if count == 0 {
		return m
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < count-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = count - 1
	}
	return m
}

func (m *Model) applySnapshot(snap cache.Snapshot) {
	if snap.Version < m.snapshot.Version {
		return
	}
	// Keep the cursor on the same item when the list shifts.
	selected, hadSelection := m.selectedItem()
	m.snapshot = snap
	if hadSelection {
		for i, it := range m.visibleItems() {
			if it.ID == selected.ID {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	count := len(m.visibleItems())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// visibleItems returns the cached items that pass the current filter.
func (m Model) visibleItems() []todos.Item {
	if !m.snapshot.IsReady() {
		return nil
	}
	if m.filter == prefs.FilterAll {
		return m.snapshot.Items
	}
	out := make([]todos.Item, 0, len(m.snapshot.Items))
	for _, it := range m.snapshot.Items {
		if (m.filter == prefs.FilterDone) == it.Done {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) selectedItem() (todos.Item, bool) {
	items := m.visibleItems()
	if m.cursor < 0 || m.cursor >= len(items) {
		return todos.Item{}, false
	}
	return items[m.cursor], true
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Filter: m.filter}); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice.seq++
	m.notice.text = strings.TrimSpace(text)
	m.notice.isErr = isErr
	seq := m.notice.seq
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg(seq)
	})
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderBody(m.bodyHeight()))

	if m.drafting {
		b.WriteString("\n")
		b.WriteString(m.renderDraft())
	}
	if m.notice.text != "" {
		b.WriteString("\n")
		b.WriteString(m.renderNotice())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// bodyHeight is the number of rows left for the list.
func (m Model) bodyHeight() int {
	rows := m.height - 2 // header + footer
	if m.drafting {
		rows--
	}
	if m.notice.text != "" {
		rows--
	}
	return maxInt(1, rows)
}

// Messages

type snapshotMsg cache.Snapshot

type loadedMsg struct{ err error }

type addedMsg struct {
	text string
	err  error
}

type toggledMsg struct{ err error }

type deletedMsg struct {
	text      string
	confirmed bool
	err       error
}

type noticeExpiredMsg int

// deleteDecisionMsg is emitted by the delete confirmation modal.
type deleteDecisionMsg struct {
	item      todos.Item
	confirmed bool
}

func isBlank(err error) bool {
	return errors.Is(err, mutation.ErrBlankText)
}

// Commands

// waitForSnapshot blocks until the store publishes. It yields nil once the
// subscription is closed.
func waitForSnapshot(ch <-chan cache.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) startCmd() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return loadedMsg{err: loader.Start(ctx)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return loadedMsg{err: loader.Refresh(ctx)}
	}
}

func (m Model) addCmd(text string) tea.Cmd {
	ctx, mut := m.ctx, m.mutator
	return func() tea.Msg {
		_, err := mut.Add(ctx, mutation.AddParams{Text: text})
		return addedMsg{text: text, err: err}
	}
}

func (m Model) toggleCmd(item todos.Item) tea.Cmd {
	ctx, mut := m.ctx, m.mutator
	return func() tea.Msg {
		_, err := mut.Toggle(ctx, mutation.ToggleParams{ID: item.ID, Done: item.Done})
		return toggledMsg{err: err}
	}
}

func (m Model) deleteCmd(item todos.Item, confirmed bool) tea.Cmd {
	ctx, mut := m.ctx, m.mutator
	return func() tea.Msg {
		err := mut.Delete(ctx, mutation.DeleteParams{ID: item.ID, Confirmed: confirmed})
		return deletedMsg{text: item.Text, confirmed: confirmed, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
