package interfaces

type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

type TranslatorWithMetadata interface {
	TranslatorWithMetadata(locale, key string, args ...any) (string, map[string]any, error)
}

type Formatter interface {
	Format(template string, args ...any) (string, error)
}

type FormatterRegistry interface {
	FuncMap(locale string) map[string]any
}

type MissingTranslationHandler func(locale, key string, args []any, err error) string

type HelperConfig struct {
	LocaleKey         string
	TemplateHelperKey string
	OnMissing         MissingTranslationHandler
	Registry          FormatterRegistry
}

type TemplateHelperProvider interface {
	TemplateHelpers(translator Translator, cfg HelperConfig) map[string]any
}

type Service interface {
	Translator() Translator
	TemplateHelpers(cfg HelperConfig) map[string]any
	DefaultLocale() string
	Locales() []string
}
