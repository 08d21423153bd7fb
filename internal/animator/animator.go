// Package animator reveals the trailing segment of a transcript one
// character at a time.
//
// Animator is a plain state machine: Update evaluates a new segment sequence
// and Tick advances the active animation by one character. Scheduling the
// ticks is left to the host (see Driver for a timer based host and the tui
// package for a bubbletea one).
package animator

import (
	"slices"
	"strings"
	"time"
)

const (
	// DefaultRevealDelay 每个字符之间的揭示间隔。
	DefaultRevealDelay = 18 * time.Millisecond
	// DefaultSeparator 段与段之间的分隔符。
	DefaultSeparator = "\n"
)

// TransitionKind 描述一次序列更新被判定成了哪种情况。
type TransitionKind int

const (
	// TransitionUnchanged 序列与上次观测值相同，什么也不做。
	TransitionUnchanged TransitionKind = iota
	// TransitionCleared 序列为空，输出被清空。
	TransitionCleared
	// TransitionReveal 出现了新的尾段，从第 0 个字符开始揭示。
	TransitionReveal
	// TransitionExtend 尾段原地增长，只揭示新增的部分。
	TransitionExtend
	// TransitionSettled 尾段没有可揭示的新内容，输出直接定格为完整文本。
	TransitionSettled
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionUnchanged:
		return "unchanged"
	case TransitionCleared:
		return "cleared"
	case TransitionReveal:
		return "reveal"
	case TransitionExtend:
		return "extend"
	case TransitionSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Transition 是 Update 的结果。Pending 为 true 时宿主需要在一个间隔后调用 Tick。
type Transition struct {
	Kind    TransitionKind
	Pending bool
}

// Options 控制 Animator 的构造。
type Options struct {
	Separator string
}

// Animator 持有动画输出、最后一个完整揭示的段下标，以及至多一个进行中的动画。
// 它不是并发安全的，宿主负责串行调用。
type Animator struct {
	sep          string
	segments     []string
	observed     bool
	output       string
	lastAnimated int
	active       *Animation
}

// New 构造一个空的 Animator。
func New(opts Options) *Animator {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Animator{sep: sep, lastAnimated: -1}
}

// Output 返回当前的动画文本。
func (a *Animator) Output() string {
	return a.output
}

// LastAnimated 返回最后一个完整揭示的段下标，没有时为 -1。
func (a *Animator) LastAnimated() int {
	return a.lastAnimated
}

// Animating 表示是否还有未完成的动画。
func (a *Animator) Animating() bool {
	return a.active != nil
}

// Segments 返回最近一次观测到的序列副本。
func (a *Animator) Segments() []string {
	return slices.Clone(a.segments)
}

// Separator 返回段之间的分隔符。
func (a *Animator) Separator() string {
	return a.sep
}

// Settled 返回序列完整拼接后的文本，也就是动画最终会停留的输出。
func (a *Animator) Settled() string {
	return strings.Join(a.segments, a.sep)
}

// Changed reports whether segments differs from the last observed sequence.
// Hosts call it before cancelling their pending step so that re-supplying an
// equal sequence leaves a running animation alone.
func (a *Animator) Changed(segments []string) bool {
	if !a.observed {
		return true
	}
	return !slices.Equal(a.segments, segments)
}

// Update is the "on sequence updated" entry point. The caller must have
// cancelled its pending step already unless the result is Unchanged.
func (a *Animator) Update(segments []string) Transition {
	if !a.Changed(segments) {
		return Transition{Kind: TransitionUnchanged, Pending: a.active != nil}
	}
	a.observed = true
	a.segments = slices.Clone(segments)
	a.active = nil

	if len(segments) == 0 {
		a.output = ""
		a.lastAnimated = -1
		return Transition{Kind: TransitionCleared}
	}

	last := len(segments) - 1
	prefix := fixedPrefix(segments, a.sep)
	target := []rune(segments[last])

	if last > a.lastAnimated {
		anim := &Animation{Prefix: prefix, Target: target, Index: last, Mode: ModeReveal}
		a.output = anim.Frame()
		if anim.Done() {
			a.lastAnimated = last
			return Transition{Kind: TransitionReveal}
		}
		a.active = anim
		return Transition{Kind: TransitionReveal, Pending: true}
	}

	// 序列变短时 lastAnimated 保持不变，尾段按原地增长处理。
	if last < a.lastAnimated {
		log.WithField("segments", len(segments)).
			WithField("last_animated", a.lastAnimated).
			Warn("transcript shrank")
	}

	previous := []rune(remainderAfter(a.output, prefix))
	i := commonPrefixLen(target, previous)
	if i == len(target) {
		a.output = prefix + string(target)
		return Transition{Kind: TransitionSettled}
	}
	if i == 0 && len(previous) > 0 {
		log.WithField("index", last).Debug("trailing segment replaced; revealing from first character")
	}

	anim := &Animation{Prefix: prefix, Target: target, Revealed: i + 1, Index: last, Mode: ModeExtend}
	a.output = anim.Frame()
	if anim.Done() {
		return Transition{Kind: TransitionExtend}
	}
	a.active = anim
	return Transition{Kind: TransitionExtend, Pending: true}
}

// Tick 推进一个字符，返回是否还需要下一次 tick。没有进行中的动画时返回 false。
func (a *Animator) Tick() bool {
	if a.active == nil {
		return false
	}
	a.active.Revealed++
	a.output = a.active.Frame()
	if !a.active.Done() {
		return true
	}
	if a.active.Mode == ModeReveal {
		a.lastAnimated = a.active.Index
	}
	a.active = nil
	return false
}

// Finish 立即把进行中的动画推进到结尾。
func (a *Animator) Finish() {
	for a.Tick() {
	}
}
