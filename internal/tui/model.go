package tui

import (
	"fmt"
	"strings"
	"time"

	"echo-transcript/internal/animator"
	"echo-transcript/internal/events"
	"echo-transcript/internal/features"
	"echo-transcript/internal/logger"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

// Options 配置转写界面。
type Options struct {
	// Events 是来源事件的订阅通道，为 nil 时界面只显示空转写。
	Events     <-chan events.Event
	SourceName string
	Delay      time.Duration
	Separator  string
	Features   features.Set
	// ExitOnDone 在来源结束且动画定格后自动退出。
	ExitOnDone bool
	AltScreen  bool
	Clock      func() time.Time
	// CopyText 替换剪贴板写入，测试中使用。
	CopyText func(string) error
}

// transcriptMsg 携带一次完整的序列替换。
type transcriptMsg struct {
	Segments []string
}

type sourceDoneMsg struct {
	Err error
}

// revealTickMsg 是一次揭示步骤；gen 与当前代数不符即视为已取消。
type revealTickMsg struct {
	gen uint64
}

type copiedMsg struct {
	chars int
	err   error
}

// Model 是转写界面的 Bubble Tea 模型，持有动画状态与 tick 代数。
type Model struct {
	anim      *animator.Animator
	delay     time.Duration
	gen       uint64
	ticking   bool
	sub       <-chan events.Event
	source    string
	features  features.Set
	exitOnEnd bool
	copyText  func(string) error

	viewport viewport.Model
	spin     spinner.Model
	status   *StatusIndicator
	search   searchState

	sourceDone bool
	err        error
	notice     string
	quitting   bool
	width      int
	height     int
}

// New 按 Options 构造界面，未设置的延迟与剪贴板使用默认值。
func New(opts Options) *Model {
	delay := opts.Delay
	if delay <= 0 {
		delay = animator.DefaultRevealDelay
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	vp := viewport.New(80, 20)
	name := opts.SourceName
	if name == "" {
		name = "transcript"
	}

	m := &Model{
		anim:      animator.New(animator.Options{Separator: opts.Separator}),
		delay:     delay,
		sub:       opts.Events,
		source:    name,
		features:  opts.Features,
		exitOnEnd: opts.ExitOnDone,
		copyText:  copyText,
		viewport:  vp,
		spin:      spin,
		status:    NewStatusIndicator(opts.Clock),
		search:    newSearchState(),
		width:     80,
		height:    24,
	}
	m.resize(m.width, m.height)
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen()}
	if m.features.Enabled(features.Spinner) {
		cmds = append(cmds, m.spin.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case transcriptMsg:
		if cmd := m.OnSequenceUpdated(msg.Segments); cmd != nil {
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.listen())
		return m, tea.Batch(cmds...)
	case sourceDoneMsg:
		m.sourceDone = true
		m.err = msg.Err
		m.syncStatus()
		if m.shouldExit() {
			return m, m.quit()
		}
		return m, nil
	case revealTickMsg:
		return m, m.handleRevealTick(msg)
	case copiedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.notice = fmt.Sprintf("copied %d characters", msg.chars)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// OnSequenceUpdated is the explicit "sequence changed" entry point: it
// cancels the pending reveal step, re-evaluates and schedules the next step.
// An unchanged sequence keeps the running animation untouched.
func (m *Model) OnSequenceUpdated(segments []string) tea.Cmd {
	if m.quitting || !m.anim.Changed(segments) {
		return nil
	}
	m.cancelReveal()
	tr := m.anim.Update(segments)
	if tr.Pending && m.features.Enabled(features.InstantReveal) {
		m.anim.Finish()
		tr.Pending = false
	}
	log.WithField("kind", tr.Kind.String()).
		WithField("segments", len(segments)).
		Debug("sequence updated")
	m.search.refresh(m.anim.Segments())
	m.refresh()
	if tr.Pending {
		return m.scheduleReveal()
	}
	return nil
}

func (m *Model) handleRevealTick(msg revealTickMsg) tea.Cmd {
	if !m.ticking || msg.gen != m.gen {
		return nil
	}
	m.ticking = false
	more := m.anim.Tick()
	m.refresh()
	if more {
		return m.scheduleReveal()
	}
	if m.shouldExit() {
		return m.quit()
	}
	return nil
}

func (m *Model) scheduleReveal() tea.Cmd {
	m.ticking = true
	gen := m.gen
	m.syncStatus()
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// cancelReveal 让已发出的 tick 全部失效。
func (m *Model) cancelReveal() {
	m.gen++
	m.ticking = false
}

func (m *Model) quit() tea.Cmd {
	m.cancelReveal()
	m.quitting = true
	return tea.Quit
}

func (m *Model) shouldExit() bool {
	return m.exitOnEnd && m.sourceDone && !m.ticking
}

func (m *Model) listen() tea.Cmd {
	if m.sub == nil || m.sourceDone {
		return nil
	}
	sub := m.sub
	return func() tea.Msg {
		for ev := range sub {
			switch ev.Type {
			case events.EventTranscriptUpdated:
				return transcriptMsg{Segments: ev.Segments}
			case events.EventSourceCompleted, events.EventSourceFailed:
				return sourceDoneMsg{Err: ev.Err}
			}
		}
		return sourceDoneMsg{}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.search.active {
		return m.handleSearchKey(msg)
	}
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "y":
		if !m.features.Enabled(features.Clipboard) {
			return nil
		}
		return m.copyTranscript()
	case "/":
		if !m.features.Enabled(features.Search) {
			return nil
		}
		return m.search.open(m.anim.Segments())
	case "s":
		// 跳过动画，直接显示完整文本。
		m.cancelReveal()
		m.anim.Finish()
		m.refresh()
		if m.shouldExit() {
			return m.quit()
		}
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.search.close()
		return nil
	case "enter":
		if idx, ok := m.search.selected(); ok {
			m.viewport.SetYOffset(m.lineOfSegment(idx))
		}
		m.search.close()
		return nil
	case "up", "ctrl+p":
		m.search.move(-1)
		return nil
	case "down", "ctrl+n":
		m.search.move(1)
		return nil
	}
	return m.search.update(msg, m.anim.Segments())
}

func (m *Model) copyTranscript() tea.Cmd {
	text := m.anim.Settled()
	copyText := m.copyText
	return func() tea.Msg {
		err := copyText(text)
		return copiedMsg{chars: len([]rune(text)), err: err}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	bodyHeight := height - headerHeight - footerHeight - 2 // border
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.viewport.Width = maxInt(10, width-4)
	m.viewport.Height = bodyHeight
	m.refresh()
}

// refresh 重绘正文，原本停在底部时继续跟随。
func (m *Model) refresh() {
	follow := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderBody())
	if follow {
		m.viewport.GotoBottom()
	}
	m.syncStatus()
}

func (m *Model) renderBody() string {
	text := m.anim.Output()
	if m.ticking {
		text += cursorStyle.Render("▌")
	}
	if text == "" {
		return placeholderStyle.Render("Waiting for transcript…")
	}
	return wrap(text, m.viewport.Width)
}

func (m *Model) lineOfSegment(idx int) int {
	segments := m.anim.Segments()
	if idx <= 0 || idx >= len(segments) {
		return 0
	}
	sep := m.anim.Separator()
	before := strings.Join(segments[:idx], sep)
	return lipgloss.Height(wrap(before, m.viewport.Width)) - 1 + strings.Count(sep, "\n")
}

func (m *Model) syncStatus() {
	switch {
	case m.err != nil:
		m.status.SetState(StatusError, m.err.Error())
	case m.ticking:
		m.status.SetState(StatusTyping, m.source)
	case m.sourceDone:
		m.status.SetState(StatusDone, m.source)
	default:
		m.status.SetState(StatusListening, m.source)
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	header := renderHeader(m.source, m.width)
	body := renderPane(m.viewport.View(), m.width)
	spinFrame := "•"
	if m.features.Enabled(features.Spinner) {
		spinFrame = m.spin.View()
	}
	status := m.status.Render(maxInt(10, m.width-2), spinFrame, len(m.anim.Segments()))
	if m.notice != "" {
		status = lipgloss.JoinHorizontal(lipgloss.Top, status, noticeStyle.Render("  "+m.notice))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, header, body, " "+status, renderHints(m.width, m.features))
	if m.search.active {
		return lipgloss.JoinVertical(lipgloss.Left, content, modalStyle.Render(m.search.view()))
	}
	return content
}

// Output 返回当前的动画文本。
func (m *Model) Output() string {
	return m.anim.Output()
}

// Segments 返回最近一次观测到的序列。
func (m *Model) Segments() []string {
	return m.anim.Segments()
}

// Err 返回来源的失败原因。
func (m *Model) Err() error {
	return m.err
}
