package animator

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to one scheduled callback.
type Timer interface {
	// Stop 取消回调，返回 false 表示回调已经触发或早已取消。
	Stop() bool
}

// Scheduler 抽象延迟回调，便于测试替换真实时钟。
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TimerScheduler 使用 time.AfterFunc 调度。
type TimerScheduler struct{}

// AfterFunc 满足 Scheduler 接口。
func (TimerScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler 是手动推进的确定性调度器，回调在 Advance 的调用方 goroutine 中执行。
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler 构造一个时间从零开始的调度器。
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc 满足 Scheduler 接口。
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Now 返回自创建以来推进过的时间。
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending 返回尚未触发且未取消的回调数量。
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance 推进时间并按到期顺序执行回调，回调中新调度且在窗口内到期的也会执行。
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	deadline := s.now + d
	s.mu.Unlock()

	for {
		t := s.nextDue(deadline)
		if t == nil {
			break
		}
		t.f()
	}

	s.mu.Lock()
	s.now = deadline
	s.mu.Unlock()
}

// RunAll 不断推进到下一个到期时间直到队列耗尽，返回推进的次数。
func (s *ManualScheduler) RunAll() int {
	n := 0
	for {
		s.mu.Lock()
		var next *manualTimer
		s.compactLocked()
		if len(s.pending) > 0 {
			next = s.pending[0]
		}
		s.mu.Unlock()
		if next == nil {
			return n
		}
		s.Advance(next.at - s.Now())
		n++
	}
}

func (s *ManualScheduler) nextDue(deadline time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compactLocked()
	if len(s.pending) == 0 || s.pending[0].at > deadline {
		return nil
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	t.fired = true
	if t.at > s.now {
		s.now = t.at
	}
	return t
}

func (s *ManualScheduler) compactLocked() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].at == s.pending[j].at {
			return s.pending[i].seq < s.pending[j].seq
		}
		return s.pending[i].at < s.pending[j].at
	})
}
