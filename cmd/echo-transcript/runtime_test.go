package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"echo-transcript/internal/config"
	"echo-transcript/internal/features"
	"echo-transcript/internal/logger"
	"echo-transcript/internal/session"
	"echo-transcript/internal/source"

	"github.com/sirupsen/logrus"
)

func TestLoadConfigMergesFlags(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	root := rootArgs{overrides: []string{"animation.reveal_delay_ms=30", "source.kind=command"}}
	args := &sourceArgs{
		cfgPath:   filepath.Join(t.TempDir(), "missing.toml"),
		kind:      "whisperx",
		files:     csvSlice{"a.json", "b.json"},
		speed:     2,
		overrides: stringSlice{"features.search=false"},
	}
	cfg, err := loadConfig(root, args)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RevealDelay() != 30*time.Millisecond {
		t.Fatalf("delay = %v", cfg.RevealDelay())
	}
	if cfg.Source.Kind != "whisperx" || cfg.Source.Path != "a.json" || cfg.Source.Speed != 2 {
		t.Fatalf("source = %+v", cfg.Source)
	}
	if !reflect.DeepEqual(cfg.Source.Files, []string{"a.json", "b.json"}) {
		t.Fatalf("files = %v", cfg.Source.Files)
	}
	if features.Resolve(cfg.Features).Enabled(features.Search) {
		t.Fatal("search should be disabled by override")
	}

	args.delayMs = 5
	cfg, err = loadConfig(root, args)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RevealDelay() != 5*time.Millisecond {
		t.Fatalf("--delay should win, got %v", cfg.RevealDelay())
	}
}

func TestBuildSourceKinds(t *testing.T) {
	dir := t.TempDir()
	linesPath := filepath.Join(dir, "lines.txt")
	if err := os.WriteFile(linesPath, []byte("one\n+ two\n"), 0o644); err != nil {
		t.Fatalf("write lines: %v", err)
	}
	store := &session.Store{Dir: filepath.Join(dir, "transcripts")}
	if _, err := store.Save("stdin", []string{"saved", "text"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	base := config.Default()
	with := func(mut func(*config.Config)) config.Config {
		cfg := base
		mut(&cfg)
		return cfg
	}
	cases := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr string
	}{
		{name: "stdin", cfg: base, want: "stdin"},
		{name: "file", cfg: with(func(c *config.Config) { c.Source.Kind = "file"; c.Source.Path = linesPath }), want: "file"},
		{name: "file missing path", cfg: with(func(c *config.Config) { c.Source.Kind = "file" }), wantErr: "--file"},
		{name: "command", cfg: with(func(c *config.Config) { c.Source.Kind = "command"; c.Source.Command = "echo hi" }), want: "command"},
		{name: "command empty", cfg: with(func(c *config.Config) { c.Source.Kind = "command" }), wantErr: "--command"},
		{name: "whisperx", cfg: with(func(c *config.Config) { c.Source.Kind = "whisperx"; c.Source.Path = "x.json" }), want: "whisperx"},
		{name: "whisperx missing", cfg: with(func(c *config.Config) { c.Source.Kind = "whisperx" }), wantErr: "--file"},
		{name: "openai", cfg: with(func(c *config.Config) {
			c.Source.Kind = "openai"
			c.Source.Files = []string{"a.wav"}
			c.OpenAI.Token = "sk-test"
		}), want: "openai"},
		{name: "openai no token", cfg: with(func(c *config.Config) { c.Source.Kind = "openai"; c.Source.Path = "a.wav" }), wantErr: "OPENAI_API_KEY"},
		{name: "session last", cfg: with(func(c *config.Config) { c.Source.Kind = "session" }), want: "session "},
		{name: "session unknown", cfg: with(func(c *config.Config) { c.Source.Kind = "session"; c.Source.Path = "nope" }), wantErr: "nope"},
		{name: "unknown", cfg: with(func(c *config.Config) { c.Source.Kind = "carrier-pigeon" }), wantErr: "unknown source kind"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := buildSource(tc.cfg, store, strings.NewReader(""))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSource: %v", err)
			}
			if !strings.HasPrefix(src.Name(), tc.want) {
				t.Fatalf("name = %q, want prefix %q", src.Name(), tc.want)
			}
		})
	}
}

func TestFileSourceReadsLineProtocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	if err := os.WriteFile(path, []byte("one\n+ two\nthree\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := config.Default()
	cfg.Source.Kind = "file"
	cfg.Source.Path = path
	cfg.Source.Speed = 1000
	src, err := buildSource(cfg, nil, nil)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	var last []string
	if err := src.Run(context.Background(), func(s []string) { last = s }); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(last, []string{"one two", "three"}) {
		t.Fatalf("segments = %q", last)
	}
}

func TestSessionSourceReplaysRecord(t *testing.T) {
	store := &session.Store{Dir: t.TempDir()}
	id, err := store.Save("stdin", []string{"a", "b"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg := config.Default()
	cfg.Source.Kind = "session"
	cfg.Source.Path = id
	cfg.Source.Speed = 1000
	cfg.Animation.RevealDelayMs = 1
	src, err := buildSource(cfg, store, nil)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	static, ok := src.(*source.StaticSource)
	if !ok {
		t.Fatalf("source type = %T", src)
	}
	if !reflect.DeepEqual(static.Segments, []string{"a", "b"}) || static.PerRune != time.Millisecond {
		t.Fatalf("static source = %+v", static)
	}
}

func TestShouldSave(t *testing.T) {
	cfg := config.Default()
	if shouldSave(cfg, features.Resolve(nil)) {
		t.Fatal("save should be off by default")
	}
	if !shouldSave(cfg, features.Resolve(map[string]bool{features.AutoSave: true})) {
		t.Fatal("auto_save feature should enable saving")
	}
	cfg.UI.Save = true
	if !shouldSave(cfg, features.Resolve(nil)) {
		t.Fatal("ui.save should enable saving")
	}
}

func TestPrintFeatures(t *testing.T) {
	var out bytes.Buffer
	printFeatures(&out, features.Resolve(map[string]bool{features.InstantReveal: true}))
	if !strings.Contains(out.String(), "instant_reveal\texperimental\ttrue") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExpandAudioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.wav", "a.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := expandAudioFiles([]string{"single.wav", dir})
	if err != nil {
		t.Fatalf("expandAudioFiles: %v", err)
	}
	want := []string{"single.wav", filepath.Join(dir, "a.mp3"), filepath.Join(dir, "b.wav")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
}

func TestCheckInteractiveStdin(t *testing.T) {
	cases := []struct {
		kind     string
		terminal bool
		wantErr  bool
	}{
		{kind: "", terminal: true, wantErr: true},
		{kind: "stdin", terminal: true, wantErr: true},
		{kind: " STDIN ", terminal: true, wantErr: true},
		{kind: "stdin", terminal: false},
		{kind: "", terminal: false},
		{kind: "file", terminal: true},
		{kind: "command", terminal: true},
	}
	for _, tc := range cases {
		var cfg config.Config
		cfg.Source.Kind = tc.kind
		err := checkInteractiveStdin(cfg, tc.terminal)
		if (err != nil) != tc.wantErr {
			t.Fatalf("kind=%q terminal=%v: err = %v, wantErr %v", tc.kind, tc.terminal, err, tc.wantErr)
		}
	}
}

func TestSetupLogFileFailureDiscardsLogs(t *testing.T) {
	l := logrus.New()
	logger.SetRoot(l)
	t.Cleanup(func() { logger.SetRoot(nil) })

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	closeLog := setupLogFile(filepath.Join(blocker, "sub", "app.log"))
	defer closeLog()
	if l.Out != io.Discard {
		t.Fatal("log output should be discarded when the log file cannot be opened")
	}
}
