package i18n

import (
	"strings"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Config captures locale resolution behaviour for the translation service.
type Config struct {
	DefaultLocale     string   `json:"default_locale" yaml:"default_locale"`
	Locales           []string `json:"locales" yaml:"locales"`
	LocaleKey         string   `json:"locale_key,omitempty" yaml:"locale_key,omitempty"`
	TemplateHelperKey string   `json:"template_helper_key,omitempty" yaml:"template_helper_key,omitempty"`
}

func FromModuleConfig(defaultLocale string, locales []string) Config {
	return Config{
		DefaultLocale: defaultLocale,
		Locales:       locales,
	}
}

// HelperConfig projects the template-facing options into the shared contract.
func (c Config) HelperConfig() interfaces.HelperConfig {
	return interfaces.HelperConfig{
		LocaleKey:         c.LocaleKey,
		TemplateHelperKey: c.TemplateHelperKey,
	}
}

func (c Config) normalizedDefault() string {
	return NormalizeLocale(c.DefaultLocale)
}

// NormalizeLocale lowercases and trims a locale code so lookups are
// insensitive to tag casing (en-US and en-us address the same catalogue).
func NormalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}

// BaseLocale strips a regional suffix: es-mx yields es. Codes without a
// region return the empty string so callers can detect the end of the chain.
func BaseLocale(locale string) string {
	normalized := NormalizeLocale(locale)
	if idx := strings.IndexAny(normalized, "-_"); idx > 0 {
		return normalized[:idx]
	}
	return ""
}
