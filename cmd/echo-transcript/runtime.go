package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"echo-transcript/internal/config"
	"echo-transcript/internal/features"
	"echo-transcript/internal/i18n"
	"echo-transcript/internal/logger"
	"echo-transcript/internal/search"
	"echo-transcript/internal/session"
	"echo-transcript/internal/source"

	"github.com/mattn/go-isatty"
)

// sourceArgs 是 watch/replay 共用的来源参数，非空时覆盖配置。
type sourceArgs struct {
	cfgPath   string
	kind      string
	command   string
	files     csvSlice
	delayMs   int
	speed     float64
	overrides stringSlice
}

func (a *sourceArgs) register(fs *flag.FlagSet) {
	fs.StringVar(&a.cfgPath, "config", "", "Path to config file (default ~/.echo/transcript.toml)")
	fs.StringVar(&a.kind, "source", "", "Transcript source: stdin|file|command|whisperx|openai|session")
	fs.StringVar(&a.command, "command", "", "Shell command whose output follows the line protocol (source=command)")
	fs.Var(&a.files, "file", "Input file, session id or audio files (comma separated or repeatable)")
	fs.IntVar(&a.delayMs, "delay", 0, "Per-character reveal delay in milliseconds")
	fs.Float64Var(&a.speed, "speed", 0, "Playback speed for recorded sources")
	fs.Var(&a.overrides, "c", "Override config value key=value (repeatable)")
}

// loadConfig 依次合并配置文件、环境变量、根参数与子命令参数。
func loadConfig(root rootArgs, args *sourceArgs) (config.Config, error) {
	cfg, err := config.Load(args.cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, []string(args.overrides)))
	if args.kind != "" {
		cfg.Source.Kind = args.kind
	}
	if args.command != "" {
		cfg.Source.Command = args.command
	}
	if len(args.files) > 0 {
		cfg.Source.Path = args.files[0]
		cfg.Source.Files = append([]string(nil), args.files...)
	}
	if args.delayMs > 0 {
		cfg.Animation.RevealDelayMs = args.delayMs
	}
	if args.speed > 0 {
		cfg.Source.Speed = args.speed
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warnf("ignoring log level: %v", err)
	}
	return cfg, nil
}

// buildSource 根据配置构造来源；stdin 只在 kind=stdin 时使用。
func buildSource(cfg config.Config, store *session.Store, stdin io.Reader) (source.Source, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	switch kind {
	case "", "stdin":
		return &source.LineSource{Label: "stdin", Reader: stdin}, nil
	case "file":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("source file requires --file")
		}
		f, err := os.Open(cfg.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("open transcript file: %w", err)
		}
		return &closingSource{
			Source: &source.LineSource{Label: "file", Reader: f, Pace: scaled(filePace, cfg.Source.Speed)},
			closer: f,
		}, nil
	case "command":
		if strings.TrimSpace(cfg.Source.Command) == "" {
			return nil, fmt.Errorf("source command requires --command")
		}
		return &source.CommandSource{Command: cfg.Source.Command}, nil
	case "whisperx":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("source whisperx requires --file")
		}
		return &source.WhisperxSource{Path: cfg.Source.Path, Speed: cfg.Source.Speed}, nil
	case "openai":
		files := cfg.Source.Files
		if len(files) == 0 && cfg.Source.Path != "" {
			files = []string{cfg.Source.Path}
		}
		files, err := expandAudioFiles(files)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("source openai requires audio files via --file")
		}
		if strings.TrimSpace(cfg.OpenAI.Token) == "" {
			return nil, fmt.Errorf("source openai requires OPENAI_API_KEY or openai.token")
		}
		tr, err := source.NewOpenAITranscriber(source.OpenAIOptions{
			APIKey:   cfg.OpenAI.Token,
			BaseURL:  cfg.OpenAI.URL,
			Model:    cfg.OpenAI.Model,
			Language: i18n.Normalize(cfg.OpenAI.Language).Code(),
		})
		if err != nil {
			return nil, err
		}
		log.WithField("language", i18n.Language(cfg.OpenAI.Language).DisplayName()).Debug("openai transcriber ready")
		return &source.OpenAISource{Files: files, Transcriber: tr}, nil
	case "session":
		if store == nil {
			return nil, fmt.Errorf("transcript store unavailable")
		}
		rec, err := loadRecord(store, cfg.Source.Path)
		if err != nil {
			return nil, err
		}
		return &source.StaticSource{
			Label:    "session " + shortID(rec.ID),
			Segments: rec.Segments,
			Pause:    scaled(sessionPause, cfg.Source.Speed),
			PerRune:  cfg.RevealDelay(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Source.Kind)
	}
}

func readsStdin(cfg config.Config) bool {
	kind := strings.ToLower(strings.TrimSpace(cfg.Source.Kind))
	return kind == "" || kind == "stdin"
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// checkInteractiveStdin 拒绝在终端上同时用 stdin 作转写来源：
// 界面的按键读取和行扫描会争抢同一个输入。
func checkInteractiveStdin(cfg config.Config, terminal bool) error {
	if terminal && readsStdin(cfg) {
		return fmt.Errorf("stdin is a terminal; pipe a transcript in or choose another --source")
	}
	return nil
}

// expandAudioFiles 把目录展开为其中的音频文件，普通文件原样保留。
func expandAudioFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := search.FindFiles(p, 0, search.AudioExtensions...)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		out = append(out, found...)
	}
	return out, nil
}

const (
	filePace     = 300 * time.Millisecond
	sessionPause = 400 * time.Millisecond
)

func scaled(d time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		return d
	}
	return time.Duration(float64(d) / speed)
}

// loadRecord 按 ID 读取记录，空 ID 或 "last" 取最近一条。
func loadRecord(store *session.Store, id string) (session.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == "last" {
		rec, err := store.Last()
		if err != nil {
			return rec, fmt.Errorf("load last transcript: %w", err)
		}
		return rec, nil
	}
	rec, err := store.Load(id)
	if err != nil {
		return rec, fmt.Errorf("load transcript %s: %w", id, err)
	}
	return rec, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// shouldSave 判断退出时是否保存转写。
func shouldSave(cfg config.Config, set features.Set) bool {
	return cfg.UI.Save || set.Enabled(features.AutoSave)
}

func saveTranscript(store *session.Store, name string, segments []string) {
	if store == nil || len(segments) == 0 {
		return
	}
	id, err := store.Save(name, segments)
	if err != nil {
		log.Warnf("failed to save transcript: %v", err)
		return
	}
	fmt.Printf("Saved transcript %s (run echo-transcript sessions show %s)\n", id, id)
}

type closingSource struct {
	source.Source
	closer io.Closer
}

func (s *closingSource) Run(ctx context.Context, sink source.Sink) error {
	defer s.closer.Close()
	return s.Source.Run(ctx, sink)
}
