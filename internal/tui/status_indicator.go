package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusIndicatorState 枚举了状态行可显示的所有状态。
type StatusIndicatorState int

const (
	// StatusListening 表示来源仍在运行、没有进行中的动画，计时器持续累加。
	StatusListening StatusIndicatorState = iota
	// StatusTyping 表示正在逐字揭示，计时器持续累加。
	StatusTyping
	// StatusDone 表示来源结束且动画已定格。
	StatusDone
	// StatusError 表示来源失败。
	StatusError
)

func (s StatusIndicatorState) String() string {
	switch s {
	case StatusListening:
		return "listening"
	case StatusTyping:
		return "typing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s StatusIndicatorState) header() string {
	switch s {
	case StatusListening:
		return "Listening"
	case StatusTyping:
		return "Typing"
	case StatusDone:
		return "Done"
	case StatusError:
		return "Error"
	default:
		return ""
	}
}

func (s StatusIndicatorState) tracksElapsed() bool {
	return s == StatusListening || s == StatusTyping
}

// StatusIndicator 管理状态行（spinner + 标题 + 段数 + 计时）。
type StatusIndicator struct {
	state  StatusIndicatorState
	detail string

	elapsedRunning time.Duration
	lastResumeAt   time.Time
	paused         bool

	clock func() time.Time
}

// NewStatusIndicator 构造处于 Listening 的状态行。
func NewStatusIndicator(clock func() time.Time) *StatusIndicator {
	if clock == nil {
		clock = time.Now
	}
	return &StatusIndicator{state: StatusListening, clock: clock, lastResumeAt: clock()}
}

// State 返回当前状态。
func (w *StatusIndicator) State() StatusIndicatorState {
	return w.state
}

// SetState 更新状态并根据状态是否计时自动暂停/恢复计时器。
func (w *StatusIndicator) SetState(state StatusIndicatorState, detail string) {
	now := w.clock()
	if state.tracksElapsed() && w.paused {
		w.resumeTimerAt(now)
	}
	if !state.tracksElapsed() && !w.paused {
		w.pauseTimerAt(now)
	}
	w.state = state
	w.detail = detail
}

// ElapsedSeconds 返回累计秒数。
func (w *StatusIndicator) ElapsedSeconds() uint64 {
	return w.elapsedSecondsAt(w.clock())
}

// Render 绘制状态行并按显示宽度截断。
func (w *StatusIndicator) Render(width int, spinnerFrame string, segments int) string {
	if width <= 0 {
		return ""
	}
	frame := spinnerFrame
	switch w.state {
	case StatusDone:
		frame = "✓"
	case StatusError:
		frame = "!"
	}
	parts := []string{frame, w.state.header()}
	info := fmt.Sprintf("(%s • %d segments", fmtElapsedCompact(w.ElapsedSeconds()), segments)
	if w.detail != "" {
		info += " • " + w.detail
	}
	info += ")"
	parts = append(parts, info)

	line := truncateToWidth(strings.Join(parts, " "), width)
	style := lipgloss.NewStyle().Faint(true)
	if w.state == StatusError {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	}
	return style.Render(line)
}

func (w *StatusIndicator) pauseTimerAt(now time.Time) {
	if w.paused {
		return
	}
	w.elapsedRunning += now.Sub(w.lastResumeAt)
	w.paused = true
}

func (w *StatusIndicator) resumeTimerAt(now time.Time) {
	if !w.paused {
		return
	}
	w.lastResumeAt = now
	w.paused = false
}

func (w *StatusIndicator) elapsedDurationAt(now time.Time) time.Duration {
	if w.paused {
		return w.elapsedRunning
	}
	return w.elapsedRunning + now.Sub(w.lastResumeAt)
}

func (w *StatusIndicator) elapsedSecondsAt(now time.Time) uint64 {
	return uint64(w.elapsedDurationAt(now).Seconds())
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	w := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		out = append(out, r)
		w += rw
	}
	return string(out)
}
