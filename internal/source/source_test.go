package source

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"echo-transcript/internal/events"
)

type collector struct {
	snapshots [][]string
}

func (c *collector) sink(segments []string) {
	c.snapshots = append(c.snapshots, segments)
}

func (c *collector) last() []string {
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

func TestTranscriptOperations(t *testing.T) {
	var tr Transcript
	if got := tr.Extend("he"); !slices.Equal(got, []string{"he"}) {
		t.Fatalf("Extend on empty = %q", got)
	}
	tr.Extend("llo")
	tr.Append("next")
	got := tr.Replace("nest")
	if !slices.Equal(got, []string{"hello", "nest"}) {
		t.Fatalf("segments = %q", got)
	}
	got[0] = "mutated"
	if tr.Snapshot()[0] != "hello" {
		t.Fatal("snapshot must be a copy")
	}
	if reset := tr.Reset(); len(reset) != 0 || tr.Len() != 0 {
		t.Fatalf("reset = %q len=%d", reset, tr.Len())
	}
}

func TestApplyLineProtocol(t *testing.T) {
	var tr Transcript
	steps := []struct {
		line string
		ok   bool
		want []string
	}{
		{"Hello", true, []string{"Hello"}},
		{"+ world\r", true, []string{"Hello world"}},
		{"   ", false, nil},
		{"Second", true, []string{"Hello world", "Second"}},
		{"~Secant", true, []string{"Hello world", "Secant"}},
		{`\+literal`, true, []string{"Hello world", "Secant", "+literal"}},
		{" /clear ", true, []string{}},
	}
	for _, step := range steps {
		got, ok := ApplyLine(&tr, step.line)
		if ok != step.ok {
			t.Fatalf("ApplyLine(%q) ok = %v", step.line, ok)
		}
		if ok && !slices.Equal(got, step.want) {
			t.Fatalf("ApplyLine(%q) = %q, want %q", step.line, got, step.want)
		}
	}
}

func TestLineSourceRun(t *testing.T) {
	src := &LineSource{Reader: strings.NewReader("one\n+ more\n\ntwo\n")}
	var c collector
	if err := src.Run(context.Background(), c.sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.snapshots) != 3 {
		t.Fatalf("snapshots = %q", c.snapshots)
	}
	if !slices.Equal(c.last(), []string{"one more", "two"}) {
		t.Fatalf("last = %q", c.last())
	}
}

func TestLineSourceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &LineSource{Reader: strings.NewReader("a\nb\n")}
	var c collector
	if err := src.Run(ctx, c.sink); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(c.snapshots) != 0 {
		t.Fatalf("snapshots after cancel: %q", c.snapshots)
	}
}

const whisperxJSON = `{
  "segments": [
    {"text": " Hello there.", "start": 0.5, "end": 1.25, "words": [
      {"word": "Hello", "start": 0.5, "end": 0.8},
      {"word": "there.", "start": 0.9, "end": 1.25}
    ]},
    {"text": " Unaligned 42", "start": 2.0, "end": 3.0, "words": [
      {"word": "Unaligned", "start": 2.0, "end": 2.5},
      {"word": "42"}
    ]},
    {"text": " No words", "start": 3.5, "end": 4.0, "words": []}
  ]
}`

func TestWhisperxSourceReplaysTimeline(t *testing.T) {
	var waits []time.Duration
	src := &WhisperxSource{
		Reader: strings.NewReader(whisperxJSON),
		Speed:  2,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	var c collector
	if err := src.Run(context.Background(), c.sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := [][]string{
		{"Hello"},
		{"Hello there."},
		{"Hello there.", "Unaligned"},
		{"Hello there.", "Unaligned 42"},
		{"Hello there.", "Unaligned 42", "No words"},
	}
	if len(c.snapshots) != len(want) {
		t.Fatalf("snapshots = %q", c.snapshots)
	}
	for i := range want {
		if !slices.Equal(c.snapshots[i], want[i]) {
			t.Fatalf("snapshot %d = %q, want %q", i, c.snapshots[i], want[i])
		}
	}
	// 原始间隔 0.5s、0.4s、0.35s、0.75s、1s、0.5s 在 2 倍速下减半。
	wantWaits := []time.Duration{
		250 * time.Millisecond,
		200 * time.Millisecond,
		175 * time.Millisecond,
		375 * time.Millisecond,
		500 * time.Millisecond,
		250 * time.Millisecond,
	}
	if !slices.Equal(waits, wantWaits) {
		t.Fatalf("waits = %v, want %v", waits, wantWaits)
	}
}

func TestWhisperxSourceBadJSON(t *testing.T) {
	src := &WhisperxSource{Reader: strings.NewReader("{")}
	if err := src.Run(context.Background(), func([]string) {}); err == nil {
		t.Fatal("expected decode error")
	}
	missing := &WhisperxSource{Path: filepath.Join(t.TempDir(), "missing.json")}
	if err := missing.Run(context.Background(), func([]string) {}); err == nil {
		t.Fatal("expected open error")
	}
}

type fakeTranscriber struct {
	events map[string][]TranscriptionEvent
	err    error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader, emit func(TranscriptionEvent)) error {
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	for _, ev := range f.events[string(data)] {
		emit(ev)
	}
	return f.err
}

func writeAudio(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestOpenAISourceDeltasExtendTrailingSegment(t *testing.T) {
	dir := t.TempDir()
	first := writeAudio(t, dir, "a.wav", "A")
	second := writeAudio(t, dir, "b.wav", "B")

	src := &OpenAISource{
		Files: []string{first, second},
		Transcriber: &fakeTranscriber{events: map[string][]TranscriptionEvent{
			"A": {
				{Type: transcriptDeltaEvent, Delta: " Hel"},
				{Type: transcriptDeltaEvent, Delta: "lo"},
				{Type: transcriptDoneEvent, Text: "Hello."},
			},
			"B": {
				{Type: transcriptDoneEvent, Text: " Bye "},
			},
		}},
	}
	var c collector
	if err := src.Run(context.Background(), c.sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := [][]string{
		{"Hel"},
		{"Hello"},
		{"Hello."},
		{"Hello.", "Bye"},
	}
	if len(c.snapshots) != len(want) {
		t.Fatalf("snapshots = %q", c.snapshots)
	}
	for i := range want {
		if !slices.Equal(c.snapshots[i], want[i]) {
			t.Fatalf("snapshot %d = %q, want %q", i, c.snapshots[i], want[i])
		}
	}
}

func TestOpenAISourceErrors(t *testing.T) {
	if err := (&OpenAISource{}).Run(context.Background(), func([]string) {}); err == nil {
		t.Fatal("expected error without transcriber")
	}
	dir := t.TempDir()
	path := writeAudio(t, dir, "a.wav", "A")
	boom := errors.New("boom")
	src := &OpenAISource{Files: []string{path}, Transcriber: &fakeTranscriber{err: boom}}
	if err := src.Run(context.Background(), func([]string) {}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if _, err := NewOpenAITranscriber(OpenAIOptions{}); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestStaticSource(t *testing.T) {
	src := &StaticSource{Segments: []string{"a", "b", "c"}}
	var c collector
	if err := src.Run(context.Background(), c.sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.snapshots) != 3 || !slices.Equal(c.last(), []string{"a", "b", "c"}) {
		t.Fatalf("snapshots = %q", c.snapshots)
	}
}

func TestRunPublishesUpdatesAndCompletion(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	src := &StaticSource{Label: "saved", Segments: []string{"x", "y"}}

	if err := Run(context.Background(), src, bus); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var got []events.Event
	for i := 0; i < 3; i++ {
		got = append(got, <-sub)
	}
	if got[0].Type != events.EventTranscriptUpdated || got[1].Source != "saved" {
		t.Fatalf("events = %+v", got)
	}
	if !slices.Equal(got[1].Segments, []string{"x", "y"}) {
		t.Fatalf("segments = %q", got[1].Segments)
	}
	if got[2].Type != events.EventSourceCompleted {
		t.Fatalf("final event = %s", got[2].Type)
	}
}

type failingSource struct{ err error }

func (f failingSource) Name() string { return "failing" }

func (f failingSource) Run(context.Context, Sink) error { return f.err }

func TestRunPublishesFailure(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Subscribe()
	boom := errors.New("boom")
	if err := Run(context.Background(), failingSource{err: boom}, bus); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	ev := <-sub
	if ev.Type != events.EventSourceFailed || !errors.Is(ev.Err, boom) {
		t.Fatalf("event = %+v", ev)
	}

	// 取消不算失败。
	if err := Run(context.Background(), failingSource{err: context.Canceled}, bus); err != nil {
		t.Fatalf("canceled run err = %v", err)
	}
	if ev := <-sub; ev.Type != events.EventSourceCompleted {
		t.Fatalf("event = %+v", ev)
	}
}

// commandEnv 只保留 PATH，避免宿主的 BASH_ENV 等影响输出。
func commandEnv() []string {
	return []string{"PATH=" + os.Getenv("PATH")}
}

func TestCommandSource(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	src := &CommandSource{Command: `printf 'first\n+ line\nsecond\n'`, Env: commandEnv()}
	var c collector
	err := src.Run(context.Background(), c.sink)
	if err != nil && strings.Contains(err.Error(), "failed to start pty") {
		t.Skipf("pty unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(c.last(), []string{"first line", "second"}) {
		t.Fatalf("last = %q", c.last())
	}
}

func TestCommandSourceKeepsStderrOutOfTranscript(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	src := &CommandSource{
		Command: `echo 'warming up' >&2; echo hello; printf 'partial' >&2; echo world`,
		Env:     commandEnv(),
	}
	var c collector
	err := src.Run(context.Background(), c.sink)
	if err != nil && strings.Contains(err.Error(), "failed to start pty") {
		t.Skipf("pty unavailable: %v", err)
	}
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(c.last(), []string{"hello", "world"}) {
		t.Fatalf("last = %q", c.last())
	}
}

func TestCommandSourceEmpty(t *testing.T) {
	if err := (&CommandSource{}).Run(context.Background(), func([]string) {}); err == nil {
		t.Fatal("expected error for empty command")
	}
}
