package source

import (
	"context"
	"time"
	"unicode/utf8"
)

// StaticSource 逐段发布一份已知的转写，用于回放保存的会话。
// 两段之间等待 Pause 加上前一段每个字符 PerRune 的时间，让前一段有机会揭示完。
type StaticSource struct {
	Label    string
	Segments []string
	Pause    time.Duration
	PerRune  time.Duration
}

func (s *StaticSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "static"
}

func (s *StaticSource) Run(ctx context.Context, sink Sink) error {
	var t Transcript
	for i, seg := range s.Segments {
		if i > 0 {
			prev := utf8.RuneCountInString(s.Segments[i-1])
			if err := sleepCtx(ctx, s.Pause+time.Duration(prev)*s.PerRune); err != nil {
				return err
			}
		}
		sink(t.Append(seg))
	}
	return nil
}
