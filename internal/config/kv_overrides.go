package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// Unknown keys and unparsable values are skipped.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if name, ok := strings.CutPrefix(key, "features."); ok && name != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				if cfg.Features == nil {
					cfg.Features = map[string]bool{}
				}
				cfg.Features[name] = b
			}
			continue
		}
		switch key {
		case "animation.reveal_delay_ms":
			if n, err := strconv.Atoi(val); err == nil {
				cfg.Animation.RevealDelayMs = n
			}
		case "animation.separator":
			cfg.Animation.Separator = unescape(parts[1])
		case "source.kind":
			cfg.Source.Kind = val
		case "source.command":
			cfg.Source.Command = val
		case "source.path":
			cfg.Source.Path = val
		case "source.files":
			cfg.Source.Files = splitCSV(val)
		case "source.speed":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				cfg.Source.Speed = f
			}
		case "openai.url":
			cfg.OpenAI.URL = val
		case "openai.token":
			cfg.OpenAI.Token = val
		case "openai.model":
			cfg.OpenAI.Model = val
		case "openai.language":
			cfg.OpenAI.Language = val
		case "ui.alt_screen":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.UI.AltScreen = b
			}
		case "ui.save":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.UI.Save = b
			}
		case "log.level":
			cfg.Log.Level = val
		case "log.path":
			cfg.Log.Path = val
		}
	}
	return cfg
}

// unescape 允许在命令行里写 \n、\t 作为分隔符。
func unescape(raw string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t")
	return r.Replace(raw)
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
