package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedview/internal/events"
	"feedview/internal/feed"
	"feedview/internal/history"
	"feedview/internal/logger"
	"feedview/internal/tui/render"
	"feedview/internal/virtual"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

// chromeHeight 是标题与状态行占用的高度，帮助行另计。
const chromeHeight = 2

type Options struct {
	Source        feed.Source
	Config        virtual.Config
	FrameInterval time.Duration
	Query         string
	Events        *events.EventQueue
	// History 非空时记录提交的查询，并在搜索框中用 ↑/↓ 回溯。
	History *history.Store
	// Clipboard 为空时使用系统剪贴板。
	Clipboard func(string) error
	Clock     func() time.Time
}

// frameMsg 触发一次合并后的窗口重算。
type frameMsg struct{}

// pageMsg 携带一次 Fetch 的结果，必须交回引擎。
type pageMsg struct {
	fetch   *virtual.Fetch
	page    virtual.Page
	err     error
	elapsed time.Duration
}

type Model struct {
	source   feed.Source
	engine   *virtual.Engine
	cursor   *feed.Cursor
	surface  *termSurface
	viewport render.WindowViewport
	footer   *FooterWidget
	search   textinput.Model
	help     help.Model
	keys     keyMap
	spin     spinner.Model
	bus      *events.EventQueue
	history  *history.Store

	clip  func(string) error
	clock func() time.Time

	query         string
	searching     bool
	recent        []string
	recentIdx     int
	expanded      map[string]bool
	focus         int
	frameInterval time.Duration
	framePending  bool
	status        string
	err           error
	width         int
	height        int
}

func New(opts Options) *Model {
	cfg := opts.Config
	ti := textinput.New()
	ti.Placeholder = "fuzzy search…"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	m := &Model{
		source:        opts.Source,
		surface:       newTermSurface(),
		viewport:      render.NewWindowViewport(0, 0),
		footer:        NewFooterWidget(FooterOptions{Height: int(cfg.FooterHeight), Clock: clock}),
		search:        ti,
		help:          help.New(),
		keys:          defaultKeyMap(),
		spin:          spin,
		bus:           opts.Events,
		history:       opts.History,
		clip:          clip,
		clock:         clock,
		query:         opts.Query,
		expanded:      make(map[string]bool),
		frameInterval: interval,
		focus:         -1,
	}
	m.cursor = feed.NewCursor(opts.Source, opts.Query, cfg.PageSize)
	m.engine = virtual.New(virtual.Options{
		Config:         cfg,
		Loader:         m.cursor,
		OnWindowChange: m.onWindowChange,
		Log:            log,
	})
	m.engine.Mount(m.surface)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.scheduleFrame())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.finish(cmds...)
	case frameMsg:
		m.framePending = false
		if cmd := m.frame(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case pageMsg:
		m.resolve(msg)
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.engine.Pagination().Loading {
			m.present()
		}
		return m.finish(cmds...)
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.engine.ScrollBy(-3)
		case tea.MouseButtonWheelDown:
			m.engine.ScrollBy(3)
		}
		return m.finish(cmds...)
	case tea.KeyMsg:
		if m.searching {
			cmds = append(cmds, m.updateSearch(msg))
			return m.finish(cmds...)
		}
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	}
	return m.finish(cmds...)
}

// finish 在有待处理的重算且尚未排帧时安排唯一的一帧。
func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	if cmd := m.scheduleFrame(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) scheduleFrame() tea.Cmd {
	if m.framePending || !m.engine.Dirty() || m.engine.Closed() {
		return nil
	}
	m.framePending = true
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	page := float64(max(m.viewport.Height-1, 1))
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.engine.ScrollBy(-1)
	case key.Matches(msg, m.keys.Down):
		m.engine.ScrollBy(1)
	case key.Matches(msg, m.keys.PageUp):
		m.engine.ScrollBy(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.engine.ScrollBy(page)
	case key.Matches(msg, m.keys.Top):
		m.engine.ScrollToIndex(0)
	case key.Matches(msg, m.keys.Bottom):
		// 页脚行位于 Len()，偏移被钳制到轨道末端。
		m.engine.ScrollToIndex(m.engine.Len())
	case key.Matches(msg, m.keys.Search):
		m.openSearch()
		return m.search.Focus()
	case key.Matches(msg, m.keys.Expand):
		m.toggleExpand()
	case key.Matches(msg, m.keys.Copy):
		m.copyFocused()
	case key.Matches(msg, m.keys.Retry):
		m.err = nil
		m.status = "retrying"
		m.engine.Invalidate()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.reset(strings.TrimSpace(m.search.Value()))
		return nil
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyUp:
		m.recallQuery(1)
		return nil
	case tea.KeyDown:
		m.recallQuery(-1)
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) openSearch() {
	m.searching = true
	m.search.SetValue(m.query)
	m.search.CursorEnd()
	m.recent = nil
	m.recentIdx = -1
	if m.history == nil {
		return
	}
	recent, err := m.history.Recent(20)
	if err != nil {
		log.Debugf("load query history: %v", err)
		return
	}
	m.recent = recent
}

// recallQuery 在历史查询中移动，step 为 1 表示更早。
func (m *Model) recallQuery(step int) {
	if len(m.recent) == 0 {
		return
	}
	idx := min(max(m.recentIdx+step, -1), len(m.recent)-1)
	m.recentIdx = idx
	if idx < 0 {
		m.search.SetValue(m.query)
	} else {
		m.search.SetValue(m.recent[idx])
	}
	m.search.CursorEnd()
}

// reset 以新查询替换整个序列；在途加载的结果会因 epoch 变化被丢弃。
func (m *Model) reset(query string) {
	m.query = query
	m.cursor = feed.NewCursor(m.source, query, m.engine.Config().PageSize)
	m.engine.Reset(virtual.Sequence{HasMore: true, Loader: m.cursor})
	clear(m.expanded)
	m.focus = -1
	m.err = nil
	m.status = ""
	m.viewport.Invalidate()
	m.publish(events.TypeSequenceReset, events.SequenceReset{Query: query, Items: m.engine.Len()})
	if m.history != nil {
		if err := m.history.Append(query); err != nil {
			log.Warnf("save query history: %v", err)
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-4, 10)
	m.help.Width = width
	m.layout()
}

func (m *Model) layout() {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = lipgloss.Height(m.help.View(m.keys))
	}
	listHeight := max(m.height-chromeHeight-helpHeight, 1)
	if m.viewport.Resize(m.width, listHeight) {
		m.viewport.Invalidate()
	}
	m.surface.set(m.width, listHeight)
}

// frame 执行合并后的重算，实例化窗口行并派发可能的分页请求。
func (m *Model) frame() tea.Cmd {
	fr := m.engine.Frame()
	m.present()
	if fr.Fetch == nil {
		return nil
	}
	m.publish(events.TypePageRequested, events.PageRequested{Loaded: m.engine.Len()})
	return m.runFetch(fr.Fetch)
}

func (m *Model) runFetch(f *virtual.Fetch) tea.Cmd {
	clock := m.clock
	return func() tea.Msg {
		start := clock()
		page, err := f.Run()
		return pageMsg{fetch: f, page: page, err: err, elapsed: clock().Sub(start)}
	}
}

func (m *Model) resolve(msg pageMsg) {
	current := msg.fetch.Epoch() == m.engine.Epoch()
	if err := m.engine.Resolve(msg.fetch, msg.page, msg.err); err != nil {
		m.err = err
		m.status = ""
		log.WithField("query", m.query).Warnf("%v", err)
		m.publish(events.TypePageFailed, events.PageFailed{Err: err.Error(), Elapsed: msg.elapsed})
	} else if current && msg.err == nil {
		state := m.engine.Pagination()
		m.publish(events.TypePageLoaded, events.PageLoaded{
			Added:   len(msg.page.Items),
			Total:   m.engine.Len(),
			HasMore: state.HasMore,
			Elapsed: msg.elapsed,
		})
	}
	m.present()
}

// present 实例化窗口行：先按估算高度放置，渲染后回报真实高度。
// 回报改变了布局时引擎会变脏，finish 再安排一帧修正。
func (m *Model) present() {
	rows := m.engine.Rows()
	m.footer.SetKind(footerKindOf(rows))
	m.footer.SetSpinnerFrame(m.spin.View())
	if len(rows) == 0 {
		m.viewport.Present(0, nil, 0)
		m.focus = -1
		return
	}

	scroll := m.engine.Viewport().ScrollOffset
	m.focus = -1
	for _, row := range rows {
		if !row.IsFooter() && row.Offset+row.Height > scroll {
			m.focus = row.Index
			break
		}
	}

	now := m.clock()
	lines := make([]string, 0, m.viewport.Height*2)
	for _, row := range rows {
		var rendered []string
		if row.IsFooter() {
			buf := &render.Buffer{}
			m.footer.Render(render.Rect{Width: m.width, Height: m.footer.DesiredHeight(m.width)}, buf)
			rendered = render.PadLines(render.LinesToStrings(buf.Lines), int(row.Height))
		} else {
			block, _ := row.Item.(feed.Block)
			card := render.Card{
				Block:    block,
				Expanded: m.expanded[block.ID()],
				Focused:  row.Index == m.focus,
				Now:      now,
			}
			cardLines := card.Lines(m.width)
			m.engine.Report(row.Index, float64(len(cardLines)))
			rendered = render.LinesToStrings(cardLines)
		}
		lines = append(lines, rendered...)
	}
	m.viewport.Present(int(rows[0].Offset), lines, int(scroll))
}

func footerKindOf(rows []virtual.Row) virtual.FooterKind {
	if n := len(rows); n > 0 && rows[n-1].IsFooter() {
		return rows[n-1].Footer
	}
	return virtual.FooterNone
}

func (m *Model) toggleExpand() {
	item, ok := m.engine.Item(m.focus)
	if !ok {
		return
	}
	id := item.ID()
	m.expanded[id] = !m.expanded[id]
	m.engine.ResetLayoutFrom(m.focus)
	m.publish(events.TypeLayoutReset, events.LayoutReset{From: m.focus})
}

func (m *Model) copyFocused() {
	item, ok := m.engine.Item(m.focus)
	if !ok {
		return
	}
	if err := m.clip(item.ID()); err != nil {
		m.err = fmt.Errorf("copy block id: %w", err)
		return
	}
	m.status = "copied " + item.ID()
}

func (m *Model) onWindowChange(w virtual.Window) {
	m.publish(events.TypeWindowChanged, events.WindowChanged{Start: w.Start, End: w.End})
}

func (m *Model) publish(typ events.Type, payload any) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(context.Background(), events.New(typ, m.engine.Epoch(), payload)); err != nil {
		log.WithField("type", string(typ)).Debugf("publish feed event: %v", err)
	}
}

func (m *Model) View() string {
	header := m.renderHeader()
	if m.searching {
		header = m.search.View()
	}
	body := m.viewport.View()
	status := m.renderStatus()
	hints := lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, hints)
}

func (m *Model) renderHeader() string {
	const name = "feedview"
	info := fmt.Sprintf(" %d items", m.engine.Len())
	if m.query != "" {
		info = fmt.Sprintf(" %q · %d items", m.query, m.engine.Len())
	}
	info = render.Truncate(info, max(m.width-len(name), 0))
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Render(name)
	return title + lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Render(info)
}

func (m *Model) renderStatus() string {
	parts := []string{}
	total := m.engine.TotalSize()
	if total > 0 {
		vp := m.engine.Viewport()
		percent := int(min(100, 100*(vp.ScrollOffset+vp.Height)/total))
		parts = append(parts, fmt.Sprintf("%3d%%", percent))
	}
	parts = append(parts, "window "+m.engine.Window().String())
	if m.engine.Pagination().Loading {
		parts = append(parts, "Loading "+m.spin.View())
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
		parts = append(parts, errStyle.Render(fmt.Sprintf("Error: %v (r to retry)", m.err)))
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		Padding(0, 1).
		Width(max(20, m.width)).
		Render(strings.Join(parts, " • "))
}

// Engine 返回宿主持有的引擎，测试与诊断使用。
func (m *Model) Engine() *virtual.Engine {
	return m.engine
}

// Query 返回当前查询。
func (m *Model) Query() string {
	return m.query
}
