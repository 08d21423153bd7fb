package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

const maxLineBytes = 1 << 20

// Line protocol directives.
const (
	extendPrefix  = "+"
	replacePrefix = "~"
	escapePrefix  = `\`
	clearCommand  = "/clear"
)

// LineSource 按行协议读取转写：
//
//	plain text   追加新段
//	+text        在尾段后追加 text
//	~text        用 text 替换尾段（识别中的临时结果）
//	/clear       清空
//	\+text       以字面量 "+text" 追加新段
//
// 空行被忽略。
type LineSource struct {
	Label  string
	Reader io.Reader
	// Pace 为每行之间的间隔，用于回放文件。
	Pace time.Duration
}

func (s *LineSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "lines"
}

func (s *LineSource) Run(ctx context.Context, sink Sink) error {
	if s.Reader == nil {
		return fmt.Errorf("%s: nil reader", s.Name())
	}
	var t Transcript
	scanner := bufio.NewScanner(s.Reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if snapshot, ok := ApplyLine(&t, scanner.Text()); ok {
			sink(snapshot)
			if s.Pace > 0 {
				if err := sleepCtx(ctx, s.Pace); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: read: %w", s.Name(), err)
	}
	return nil
}

// ApplyLine 把一行协议文本应用到 t，返回新的快照；被忽略的行返回 false。
func ApplyLine(t *Transcript, line string) ([]string, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return nil, false
	}
	switch {
	case strings.TrimSpace(line) == clearCommand:
		return t.Reset(), true
	case strings.HasPrefix(line, escapePrefix):
		return t.Append(strings.TrimPrefix(line, escapePrefix)), true
	case strings.HasPrefix(line, extendPrefix):
		return t.Extend(strings.TrimPrefix(line, extendPrefix)), true
	case strings.HasPrefix(line, replacePrefix):
		return t.Replace(strings.TrimPrefix(line, replacePrefix)), true
	default:
		return t.Append(line), true
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
