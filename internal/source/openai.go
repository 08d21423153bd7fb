package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	transcriptDeltaEvent = "transcript.text.delta"
	transcriptDoneEvent  = "transcript.text.done"
)

// TranscriptionEvent 是流式转写接口的一条事件。
type TranscriptionEvent struct {
	Type  string
	Delta string
	Text  string
}

// Transcriber 把一段音频转成事件流。
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, emit func(TranscriptionEvent)) error
}

// OpenAIOptions 是流式转写客户端的连接参数。
type OpenAIOptions struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

type openAITranscriber struct {
	api      *openai.Client
	model    string
	language string
}

// NewOpenAITranscriber 构造基于 openai-go 的 Transcriber。
func NewOpenAITranscriber(opts OpenAIOptions) (Transcriber, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	cfg := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg = append(cfg, option.WithBaseURL(strings.TrimRight(base, "/")))
	}
	client := openai.NewClient(cfg...)
	return &openAITranscriber{api: &client, model: opts.Model, language: opts.Language}, nil
}

func (t *openAITranscriber) Transcribe(ctx context.Context, audio io.Reader, emit func(TranscriptionEvent)) error {
	params := openai.AudioTranscriptionNewParams{
		File:  audio,
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}
	stream := t.api.Audio.Transcriptions.NewStreaming(ctx, params)
	defer stream.Close()
	for stream.Next() {
		ev := stream.Current()
		emit(TranscriptionEvent{Type: ev.Type, Delta: ev.Delta, Text: ev.Text})
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("transcription stream: %w", err)
	}
	return nil
}

// OpenAISource 依次转写每个音频文件：每个文件是一个新段，
// 增量事件扩展尾段，完成事件用最终文本替换尾段。
type OpenAISource struct {
	Files       []string
	Transcriber Transcriber
}

func (s *OpenAISource) Name() string {
	return "openai"
}

func (s *OpenAISource) Run(ctx context.Context, sink Sink) error {
	if s.Transcriber == nil {
		return errors.New("openai: transcriber not configured")
	}
	if len(s.Files) == 0 {
		return errors.New("openai: no audio files")
	}
	var t Transcript
	for _, path := range s.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.transcribeFile(ctx, &t, path, sink); err != nil {
			return err
		}
	}
	return nil
}

func (s *OpenAISource) transcribeFile(ctx context.Context, t *Transcript, path string, sink Sink) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio %s: %w", path, err)
	}
	defer f.Close()

	started := false
	err = s.Transcriber.Transcribe(ctx, f, func(ev TranscriptionEvent) {
		switch ev.Type {
		case transcriptDeltaEvent:
			if ev.Delta == "" {
				return
			}
			if !started {
				started = true
				sink(t.Append(strings.TrimLeft(ev.Delta, " ")))
				return
			}
			sink(t.Extend(ev.Delta))
		case transcriptDoneEvent:
			final := strings.TrimSpace(ev.Text)
			if !started {
				started = true
				sink(t.Append(final))
				return
			}
			sink(t.Replace(final))
		}
	})
	if err != nil {
		return fmt.Errorf("transcribe %s: %w", path, err)
	}
	return nil
}
