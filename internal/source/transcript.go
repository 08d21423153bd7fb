package source

import (
	"slices"
	"sync"
)

// Transcript accumulates segments the way streaming recognisers report
// them: finished segments are immutable, only the trailing one may grow.
type Transcript struct {
	mu       sync.Mutex
	segments []string
}

// Append 追加一个新的尾段。
func (t *Transcript) Append(text string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = append(t.segments, text)
	return slices.Clone(t.segments)
}

// Extend 在尾段末尾追加文本；没有尾段时等同于 Append。
func (t *Transcript) Extend(delta string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.segments) == 0 {
		t.segments = append(t.segments, delta)
	} else {
		t.segments[len(t.segments)-1] += delta
	}
	return slices.Clone(t.segments)
}

// Replace 用新的假设文本覆盖尾段；没有尾段时等同于 Append。
func (t *Transcript) Replace(text string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.segments) == 0 {
		t.segments = append(t.segments, text)
	} else {
		t.segments[len(t.segments)-1] = text
	}
	return slices.Clone(t.segments)
}

// Reset 清空全部段。
func (t *Transcript) Reset() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = nil
	return []string{}
}

// Snapshot 返回当前序列的副本。
func (t *Transcript) Snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.segments)
}

// Len 返回段数。
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.segments)
}
