package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	whisperxResult struct {
		Segments []whisperxSegment `json:"segments"`
	}

	whisperxSegment struct {
		Text  string          `json:"text"`
		Start decimal.Decimal `json:"start"`
		End   decimal.Decimal `json:"end"`
		Words []whisperxWord  `json:"words"`
	}

	whisperxWord struct {
		Text  string           `json:"word"`
		Start *decimal.Decimal `json:"start"`
		End   *decimal.Decimal `json:"end"`
	}
)

// WhisperxSource 按原始时间轴回放 whisperx 的 JSON 结果：
// 每个段开始一个新尾段，段内的词依次扩展尾段。
type WhisperxSource struct {
	Path string
	// Reader 优先于 Path。
	Reader io.Reader
	// Speed 为回放倍速，<=0 时为 1。
	Speed float64
	// Sleep 可替换等待函数，测试中用于跳过真实等待。
	Sleep func(ctx context.Context, d time.Duration) error
}

func (s *WhisperxSource) Name() string {
	return "whisperx"
}

func (s *WhisperxSource) Run(ctx context.Context, sink Sink) error {
	result, err := s.load()
	if err != nil {
		return err
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	speed := decimal.NewFromInt(1)
	if s.Speed > 0 {
		speed = decimal.NewFromFloat(s.Speed)
	}

	var t Transcript
	clock := decimal.Zero
	wait := func(at decimal.Decimal) error {
		if at.LessThanOrEqual(clock) {
			return ctx.Err()
		}
		d := scaledDuration(at.Sub(clock), speed)
		clock = at
		return sleep(ctx, d)
	}

	for _, seg := range result.Segments {
		words := seg.Words
		if len(words) == 0 {
			if err := wait(seg.Start); err != nil {
				return err
			}
			sink(t.Append(strings.TrimSpace(seg.Text)))
			continue
		}
		started := false
		for _, w := range words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			// 对齐失败的词没有时间戳，沿用当前时钟。
			if w.Start != nil {
				if err := wait(*w.Start); err != nil {
					return err
				}
			}
			if !started {
				started = true
				sink(t.Append(text))
			} else {
				sink(t.Extend(" " + text))
			}
		}
		if err := wait(seg.End); err != nil {
			return err
		}
	}
	return nil
}

func (s *WhisperxSource) load() (whisperxResult, error) {
	var res whisperxResult
	r := s.Reader
	if r == nil {
		f, err := os.Open(s.Path)
		if err != nil {
			return res, fmt.Errorf("opening whisperx transcribe result: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return res, fmt.Errorf("decoding whisperx json result: %w", err)
	}
	return res, nil
}

// scaledDuration 把以秒为单位的时间差按倍速换算成 Duration。
func scaledDuration(seconds, speed decimal.Decimal) time.Duration {
	ms := seconds.Mul(decimal.NewFromInt(1000)).Div(speed).Round(0).IntPart()
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
