package language

import (
	"fmt"
	"sort"

	"qa-paper-be/internal/apperr"
)

// Config describes one answer language. FontFamily and RTL are carried for the
// artifact renderer; the pipeline only needs Name and NativeName for the
// prompt instruction.
type Config struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	FontFamily string `json:"font_family"`
	RTL        bool   `json:"rtl"`
}

var supported = map[string]Config{
	"en": {Code: "en", Name: "English", NativeName: "English", FontFamily: "Arial, Helvetica, sans-serif"},
	"es": {Code: "es", Name: "Spanish", NativeName: "Español", FontFamily: "Arial, Helvetica, sans-serif"},
	"fr": {Code: "fr", Name: "French", NativeName: "Français", FontFamily: "Arial, Helvetica, sans-serif"},
	"de": {Code: "de", Name: "German", NativeName: "Deutsch", FontFamily: "Arial, Helvetica, sans-serif"},
	"zh": {Code: "zh", Name: "Chinese", NativeName: "中文", FontFamily: "SimSun, Microsoft YaHei, sans-serif"},
	"ja": {Code: "ja", Name: "Japanese", NativeName: "日本語", FontFamily: "MS Gothic, Yu Gothic, sans-serif"},
	"hi": {Code: "hi", Name: "Hindi", NativeName: "हिन्दी", FontFamily: "Noto Sans Devanagari, Mangal, sans-serif"},
	"ar": {Code: "ar", Name: "Arabic", NativeName: "العربية", FontFamily: "Arial, Tahoma, sans-serif", RTL: true},
	"pt": {Code: "pt", Name: "Portuguese", NativeName: "Português", FontFamily: "Arial, Helvetica, sans-serif"},
	"ru": {Code: "ru", Name: "Russian", NativeName: "Русский", FontFamily: "Arial, Helvetica, sans-serif"},
}

// Supported lists every configured language sorted by code.
func Supported() []Config {
	configs := make([]Config, 0, len(supported))
	for _, cfg := range supported {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Code < configs[j].Code })
	return configs
}

// IsSupported reports whether code names a configured language.
func IsSupported(code string) bool {
	_, ok := supported[code]
	return ok
}

// Lookup resolves a language code to its configuration.
func Lookup(code string) (Config, error) {
	cfg, ok := supported[code]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", apperr.ErrLanguageNotSupported, code)
	}
	return cfg, nil
}
