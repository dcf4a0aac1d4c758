package folio

import "github.com/goliatone/go-folio/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired      = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnlisted      = runtimeconfig.ErrDefaultLocaleUnlisted
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrThemeBasePathRequired      = runtimeconfig.ErrThemeBasePathRequired
	ErrArchiveDSNRequired         = runtimeconfig.ErrArchiveDSNRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	ContentConfig        = runtimeconfig.ContentConfig
	I18NConfig           = runtimeconfig.I18NConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	MenuItemConfig       = runtimeconfig.MenuItemConfig
	ThemeConfig          = runtimeconfig.ThemeConfig
	Features             = runtimeconfig.Features
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	GeneratorConfig      = runtimeconfig.GeneratorConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

// DefaultConfig returns opinionated defaults for a single-locale site.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfigFile reads and validates a YAML site configuration from disk.
func LoadConfigFile(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}

// LoadConfig parses and validates a YAML site configuration document.
func LoadConfig(data []byte) (Config, error) {
	return runtimeconfig.Load(data)
}
