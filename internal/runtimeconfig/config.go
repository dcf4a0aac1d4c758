package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDefaultLocaleRequired indicates the i18n section is missing a default locale.
var ErrDefaultLocaleRequired = errors.New("folio config: default locale is required")

// ErrDefaultLocaleUnlisted ensures the configured locales include the default.
var ErrDefaultLocaleUnlisted = errors.New("folio config: locales must include the default locale")

var ErrMarkdownContentDirRequired = errors.New("folio config: markdown content directory is required when markdown is enabled")
var ErrGeneratorOutputDirRequired = errors.New("folio config: generator output directory is required when generator is enabled")
var ErrThemeBasePathRequired = errors.New("folio config: theme base path is required when generator is enabled")
var ErrArchiveDSNRequired = errors.New("folio config: storage DSN is required when the archive feature is enabled")
var ErrLoggingProviderRequired = errors.New("folio config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("folio config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("folio config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("folio config: logging format is invalid")
var ErrGeneratorWorkersInvalid = errors.New("folio config: generator workers must be zero or positive")

// Config aggregates feature flags and adapter bindings for the folio module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled    bool             `yaml:"enabled"`
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	I18N       I18NConfig       `yaml:"i18n"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Navigation NavigationConfig `yaml:"navigation"`
	Themes     ThemeConfig      `yaml:"themes"`
	Features   Features         `yaml:"features"`
	Markdown   MarkdownConfig   `yaml:"markdown"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SiteConfig carries identity metadata rendered into templates, feeds, and
// the sitemap.
type SiteConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	BaseURL     string         `yaml:"base_url"`
	Author      string         `yaml:"author"`
	Params      map[string]any `yaml:"params"`
}

// ContentConfig locates the content tree on disk.
type ContentConfig struct {
	PagesDir      string `yaml:"pages_dir"`
	PostsDir      string `yaml:"posts_dir"`
	DataDir       string `yaml:"data_dir"`
	ProjectsFile  string `yaml:"projects_file"`
	IncludeDrafts bool   `yaml:"include_drafts"`
}

// I18NConfig wires translation catalogues and locale resolution.
type I18NConfig struct {
	Enabled         bool     `yaml:"enabled"`
	DefaultLocale   string   `yaml:"default_locale"`
	Locales         []string `yaml:"locales"`
	TranslationsDir string   `yaml:"translations_dir"`
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles for repository lookups.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"-"`
}

// NavigationConfig declares the menus rendered by templates. Each entry maps
// a menu code to ordered items.
type NavigationConfig struct {
	Menus map[string][]MenuItemConfig `yaml:"menus"`
}

// MenuItemConfig describes a single navigation entry. Label holds a
// translation key resolved per locale at build time. Hidden items stay in
// configuration but are skipped when menus are built.
type MenuItemConfig struct {
	Label  string `yaml:"label"`
	Route  string `yaml:"route"`
	Weight int    `yaml:"weight"`
	Hidden bool   `yaml:"hidden"`
}

// ThemeConfig captures configuration for theme discovery.
type ThemeConfig struct {
	BasePath         string            `yaml:"base_path"`
	DefaultTheme     string            `yaml:"default_theme"`
	DefaultVariant   string            `yaml:"default_variant"`
	PartialFallbacks map[string]string `yaml:"partial_fallbacks"`
}

// Features toggles module functionality.
type Features struct {
	Markdown bool `yaml:"markdown"`
	Archive  bool `yaml:"archive"`
	Logger   bool `yaml:"logger"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown loading.
type MarkdownConfig struct {
	Enabled        bool                 `yaml:"enabled"`
	Pattern        string               `yaml:"pattern"`
	Recursive      bool                 `yaml:"recursive"`
	LocalePatterns map[string]string    `yaml:"locale_patterns"`
	Parser         MarkdownParserConfig `yaml:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled         bool   `yaml:"enabled"`
	OutputDir       string `yaml:"output_dir"`
	CleanBuild      bool   `yaml:"clean_build"`
	Incremental     bool   `yaml:"incremental"`
	CopyAssets      bool   `yaml:"copy_assets"`
	GenerateSitemap bool   `yaml:"generate_sitemap"`
	GenerateRobots  bool   `yaml:"generate_robots"`
	GenerateFeeds   bool   `yaml:"generate_feeds"`
	Workers         int    `yaml:"workers"`
}

// DefaultConfig returns opinionated defaults for a single-locale site.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			Name: "folio",
		},
		Content: ContentConfig{
			PagesDir:     "content/pages",
			PostsDir:     "content/posts",
			DataDir:      "data",
			ProjectsFile: "projects.yaml",
		},
		I18N: I18NConfig{
			Enabled:         true,
			DefaultLocale:   "en",
			Locales:         []string{"en"},
			TranslationsDir: "translations",
		},
		Storage: StorageConfig{
			Provider: "filesystem",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Navigation: NavigationConfig{
			Menus: map[string][]MenuItemConfig{},
		},
		Themes: ThemeConfig{
			BasePath:       "themes",
			DefaultVariant: "default",
		},
		Features: Features{
			Markdown: true,
		},
		Markdown: MarkdownConfig{
			Enabled:        true,
			Pattern:        "*.md",
			Recursive:      true,
			LocalePatterns: map[string]string{},
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			CleanBuild:      true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.I18N.Enabled {
		defaultLocale := strings.TrimSpace(cfg.I18N.DefaultLocale)
		if defaultLocale == "" {
			return ErrDefaultLocaleRequired
		}
		if len(cfg.I18N.Locales) > 0 && !containsLocale(cfg.I18N.Locales, defaultLocale) {
			return fmt.Errorf("%w: %s", ErrDefaultLocaleUnlisted, defaultLocale)
		}
	}
	if cfg.Markdown.Enabled && cfg.Features.Markdown {
		if strings.TrimSpace(cfg.Content.PostsDir) == "" && strings.TrimSpace(cfg.Content.PagesDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if strings.TrimSpace(cfg.Themes.BasePath) == "" {
			return ErrThemeBasePathRequired
		}
		if cfg.Generator.Workers < 0 {
			return fmt.Errorf("%w: %d", ErrGeneratorWorkersInvalid, cfg.Generator.Workers)
		}
	}
	if cfg.Features.Archive {
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrArchiveDSNRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func containsLocale(locales []string, code string) bool {
	for _, locale := range locales {
		if strings.EqualFold(strings.TrimSpace(locale), code) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
