package animator

import "strings"

// Mode 描述当前动画是从头揭示新段，还是只揭示尾段新增的部分。
type Mode int

const (
	ModeReveal Mode = iota
	ModeExtend
)

func (m Mode) String() string {
	switch m {
	case ModeReveal:
		return "reveal"
	case ModeExtend:
		return "extend"
	default:
		return "unknown"
	}
}

// Animation 是一次揭示动画的全部状态，由外部 tick 逐步推进。
type Animation struct {
	Prefix   string
	Target   []rune
	Revealed int
	Index    int
	Mode     Mode
}

// Frame 返回当前应当显示的完整文本。
func (a Animation) Frame() string {
	n := a.Revealed
	if n > len(a.Target) {
		n = len(a.Target)
	}
	if n < 0 {
		n = 0
	}
	return a.Prefix + string(a.Target[:n])
}

// Done 表示尾段已经完全显示。
func (a Animation) Done() bool {
	return a.Revealed >= len(a.Target)
}

// fixedPrefix joins every segment but the trailing one and appends the
// separator when there is more than one segment.
func fixedPrefix(segments []string, sep string) string {
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], sep) + sep
}

// commonPrefixLen counts leading runes shared by a and b.
func commonPrefixLen(a, b []rune) int {
	i := 0
	for i < len(a) && i < len(b) && a[i] == b[i] {
		i++
	}
	return i
}

// remainderAfter returns what output shows past the prefix boundary.
func remainderAfter(output, prefix string) string {
	if len(output) <= len(prefix) {
		return ""
	}
	return output[len(prefix):]
}
