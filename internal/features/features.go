package features

// Stage mirrors the lifecycle buckets used for feature flags.
type Stage string

const (
	StageStable       Stage = "stable"
	StageBeta         Stage = "beta"
	StageExperimental Stage = "experimental"
)

// Spec describes a feature flag exposed by the CLI.
type Spec struct {
	Key            string
	Stage          Stage
	DefaultEnabled bool
}

const (
	Clipboard     = "clipboard"
	Search        = "search"
	Spinner       = "spinner"
	AutoSave      = "auto_save"
	InstantReveal = "instant_reveal"
)

// Specs lists every known flag.
var Specs = []Spec{
	{Key: Clipboard, Stage: StageStable, DefaultEnabled: true},
	{Key: Search, Stage: StageBeta, DefaultEnabled: true},
	{Key: Spinner, Stage: StageStable, DefaultEnabled: true},
	{Key: AutoSave, Stage: StageBeta, DefaultEnabled: false},
	// InstantReveal 跳过逐字动画，直接显示完整文本。
	{Key: InstantReveal, Stage: StageExperimental, DefaultEnabled: false},
}

var known = func() map[string]Spec {
	m := make(map[string]Spec, len(Specs))
	for _, spec := range Specs {
		m[spec.Key] = spec
	}
	return m
}()

// IsKnown reports whether the feature key is recognized.
func IsKnown(key string) bool {
	_, ok := known[key]
	return ok
}

// StageFor returns the lifecycle stage for a feature, defaulting to experimental.
func StageFor(key string) Stage {
	if spec, ok := known[key]; ok {
		return spec.Stage
	}
	return StageExperimental
}

// DefaultEnabled reports the default value for the given feature key.
func DefaultEnabled(key string) bool {
	if spec, ok := known[key]; ok {
		return spec.DefaultEnabled
	}
	return false
}

// Set 是解析后的开关集合，未显式设置的键回退到默认值。
type Set map[string]bool

// Resolve 合并配置里的覆盖值，忽略未知键。
func Resolve(overrides map[string]bool) Set {
	s := make(Set, len(Specs))
	for _, spec := range Specs {
		s[spec.Key] = spec.DefaultEnabled
	}
	for k, v := range overrides {
		if IsKnown(k) {
			s[k] = v
		}
	}
	return s
}

// Enabled reports whether key is on. A nil Set uses defaults.
func (s Set) Enabled(key string) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return DefaultEnabled(key)
}
