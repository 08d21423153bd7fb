package animator

import (
	"sync"
	"time"
)

// DriverOptions 控制 Driver 的构造。
type DriverOptions struct {
	Separator string
	Delay     time.Duration
	Scheduler Scheduler
	// OnFrame 在每一步写入输出后被调用（持锁调用，回调内不能再调用 Driver）。
	OnFrame func(output string)
	// OnSettled 在动画结束、输出定格时被调用。
	OnSettled func(output string)
}

// Driver 把 Animator 绑定到调度器上，拥有唯一一个待执行的步骤句柄。
type Driver struct {
	mu        sync.Mutex
	anim      *Animator
	delay     time.Duration
	sched     Scheduler
	pending   Timer
	gen       uint64
	closed    bool
	onFrame   func(string)
	onSettled func(string)
}

// NewDriver 构造 Driver，未指定调度器时使用 TimerScheduler。
func NewDriver(opts DriverOptions) *Driver {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = TimerScheduler{}
	}
	return &Driver{
		anim:      New(Options{Separator: opts.Separator}),
		delay:     delay,
		sched:     sched,
		onFrame:   opts.OnFrame,
		onSettled: opts.OnSettled,
	}
}

// Update 接收一次完整的序列替换。序列未变化时不会打断进行中的动画。
func (d *Driver) Update(segments []string) Transition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Transition{Kind: TransitionUnchanged}
	}
	if !d.anim.Changed(segments) {
		return Transition{Kind: TransitionUnchanged, Pending: d.pending != nil}
	}
	d.cancelLocked()

	tr := d.anim.Update(segments)
	log.WithField("kind", tr.Kind.String()).
		WithField("segments", len(segments)).
		Debug("transcript updated")
	d.emitLocked()
	if tr.Pending {
		d.scheduleLocked()
	} else {
		d.settledLocked()
	}
	return tr
}

// Output 返回当前的动画文本。
func (d *Driver) Output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anim.Output()
}

// LastAnimated 返回最后一个完整揭示的段下标。
func (d *Driver) LastAnimated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anim.LastAnimated()
}

// Animating 表示是否还有待执行的步骤。
func (d *Driver) Animating() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Close 取消待执行的步骤，之后的 Update 与已调度的回调都不会再修改输出。
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.cancelLocked()
	d.closed = true
}

func (d *Driver) step(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Stop on a real timer can lose the race with a callback that already
	// started; the generation check makes such a callback a no-op.
	if d.closed || gen != d.gen {
		return
	}
	d.pending = nil
	more := d.anim.Tick()
	d.emitLocked()
	if more {
		d.scheduleLocked()
		return
	}
	d.settledLocked()
}

func (d *Driver) scheduleLocked() {
	gen := d.gen
	d.pending = d.sched.AfterFunc(d.delay, func() { d.step(gen) })
}

func (d *Driver) cancelLocked() {
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

func (d *Driver) emitLocked() {
	if d.onFrame != nil {
		d.onFrame(d.anim.Output())
	}
}

func (d *Driver) settledLocked() {
	if d.onSettled != nil {
		d.onSettled(d.anim.Output())
	}
}
