package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageEnglish = "en"
	LanguageSpanish = "es"
)

var languageAliases = map[string]string{
	"english": LanguageEnglish,
	"inglés":  LanguageEnglish,
	"ingles":  LanguageEnglish,
	"spanish": LanguageSpanish,
	"español": LanguageSpanish,
	"espanol": LanguageSpanish,
}

// NormalizeLanguage maps a free-form language name or BCP 47 tag onto a base
// language code: "Español" and "es-MX" both become "es". Unknown values are
// returned lower-cased and trimmed; empty input stays empty.
func NormalizeLanguage(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	if lowered == "" {
		return ""
	}
	if code, ok := languageAliases[lowered]; ok {
		return code
	}

	tag, err := language.Parse(lowered)
	if err != nil {
		return lowered
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return lowered
	}
	return base.String()
}

// IsSpanish reports whether a normalized or raw language value means Spanish.
func IsSpanish(value string) bool {
	return NormalizeLanguage(value) == LanguageSpanish
}
