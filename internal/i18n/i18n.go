package i18n

import "strings"

// Language 是转写使用的语言代码（ISO-639-1，如 zh、en）。
// 空值表示交给识别服务自动检测。
type Language string

const (
	LanguageAuto    Language = ""
	LanguageChinese Language = "zh"
	LanguageEnglish Language = "en"
	LanguageJapan   Language = "ja"
)

// Normalize 将用户输入的语言值转换为识别接口接受的代码。
// "auto" 与空串表示自动检测，未知值原样透传。
func Normalize(value string) Language {
	lang := strings.ToLower(strings.TrimSpace(value))
	switch lang {
	case "", "auto", "detect":
		return LanguageAuto
	case "zh", "zh-cn", "zh_cn", "zh-hans", "zh-tw", "cn", "chinese", "中文":
		return LanguageChinese
	case "en", "en-us", "en_us", "en-gb", "english":
		return LanguageEnglish
	case "ja", "ja-jp", "jp", "japanese", "日本語":
		return LanguageJapan
	default:
		// BCP-47 标签只保留主语言部分。
		if base, _, ok := strings.Cut(strings.ReplaceAll(lang, "_", "-"), "-"); ok && base != "" {
			return Language(base)
		}
		return Language(lang)
	}
}

// Code 返回规范化后的语言代码，自动检测时为空串。
func (l Language) Code() string {
	return string(Normalize(string(l)))
}

// DisplayName 返回适合展示的语言名称。
func (l Language) DisplayName() string {
	switch Normalize(string(l)) {
	case LanguageAuto:
		return "auto"
	case LanguageChinese:
		return "中文"
	case LanguageEnglish:
		return "English"
	case LanguageJapan:
		return "日本語"
	default:
		return strings.TrimSpace(string(l))
	}
}
