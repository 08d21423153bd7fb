package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultRevealDelayMs = 18
	defaultSeparator     = "\n"
	defaultOpenAIModel   = "gpt-4o-transcribe"
)

// Config is the only persisted config file schema.
type Config struct {
	Animation Animation       `toml:"animation"`
	Source    Source          `toml:"source"`
	OpenAI    OpenAI          `toml:"openai"`
	UI        UI              `toml:"ui"`
	Log       Log             `toml:"log"`
	Features  map[string]bool `toml:"features,omitempty"`
	Path      string          `toml:"-"`
}

// Animation 控制逐字揭示。
type Animation struct {
	RevealDelayMs int    `toml:"reveal_delay_ms"`
	Separator     string `toml:"separator"`
}

// Source 选择转写来源。Kind: stdin|file|command|whisperx|openai|session。
type Source struct {
	Kind    string   `toml:"kind"`
	Command string   `toml:"command,omitempty"`
	Path    string   `toml:"path,omitempty"`
	Files   []string `toml:"files,omitempty"`
	Speed   float64  `toml:"speed,omitempty"`
}

// OpenAI 是流式转写接口的连接配置。
type OpenAI struct {
	URL   string `toml:"url,omitempty"`
	Token string `toml:"token,omitempty"`
	Model string `toml:"model"`
	// Language 为空或 auto 时由服务端自动检测。
	Language string `toml:"language,omitempty"`
}

type UI struct {
	AltScreen bool `toml:"alt_screen"`
	Save      bool `toml:"save"`
}

type Log struct {
	Level string `toml:"level,omitempty"`
	Path  string `toml:"path,omitempty"`
}

func Default() Config {
	return Config{
		Animation: Animation{RevealDelayMs: defaultRevealDelayMs, Separator: defaultSeparator},
		Source:    Source{Kind: "stdin", Speed: 1},
		OpenAI:    OpenAI{Model: defaultOpenAIModel},
		UI:        UI{AltScreen: true},
	}
}

// RevealDelay 返回每字符的揭示间隔，非正值回退到默认值。
func (c Config) RevealDelay() time.Duration {
	if c.Animation.RevealDelayMs <= 0 {
		return defaultRevealDelayMs * time.Millisecond
	}
	return time.Duration(c.Animation.RevealDelayMs) * time.Millisecond
}

// Separator 返回段分隔符，空串回退到换行。
func (c Config) Separator() string {
	if c.Animation.Separator == "" {
		return defaultSeparator
	}
	return c.Animation.Separator
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".echo", "transcript.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Path = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.OpenAI.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.OpenAI.Token = env
	}
}
