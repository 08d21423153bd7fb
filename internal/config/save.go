package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Save 写入配置文件。path 为空时依次使用 cfg.Path 与默认路径。
// token 只应来自环境变量，写盘前会被清空。
func Save(path string, cfg Config) (string, error) {
	if path == "" {
		path = cfg.Path
	}
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return "", errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	cfg.OpenAI.Token = ""
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
