package di

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/logging/console"
	"github.com/goliatone/go-folio/internal/logging/gologger"
	"github.com/goliatone/go-folio/internal/markdown"
	"github.com/goliatone/go-folio/internal/navigation"
	"github.com/goliatone/go-folio/internal/render"
	"github.com/goliatone/go-folio/internal/routes"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/pkg/interfaces"
	"github.com/goliatone/go-folio/pkg/storage"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Container wires module dependencies from runtime configuration. Every
// binding can be overridden through an Option before the services are
// finalised.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	template       interfaces.TemplateRenderer
	storage        interfaces.StorageProvider
	assets         generator.AssetResolver
	contentFS      fs.FS
	dataFS         fs.FS
	translationsFS fs.FS

	bunDB         *bun.DB
	ownsBunDB     bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	archive  content.DocumentArchive
	i18nRepo i18n.Repository

	markdownSvc interfaces.MarkdownService
	i18nSvc     i18n.Service
	contentSvc  content.Service
	routeSvc    *routes.Resolver
	navSvc      navigation.Service
	genSvc      generator.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithTemplate overrides the default template renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

// WithStorageProvider overrides the artifact storage backend.
func WithStorageProvider(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.storage = sp
	}
}

// WithAssetResolver overrides the theme asset resolver.
func WithAssetResolver(resolver generator.AssetResolver) Option {
	return func(c *Container) {
		c.assets = resolver
	}
}

// WithContentFS serves Markdown documents from the provided filesystem
// instead of the host disk. Paths in the content configuration resolve
// against this filesystem.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.contentFS = fsys
	}
}

// WithDataFS serves the structured data directory (projects) from the
// provided filesystem.
func WithDataFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.dataFS = fsys
	}
}

// WithTranslationsFS serves translation bundles from the provided filesystem.
func WithTranslationsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.translationsFS = fsys
	}
}

// WithBunDB injects an existing bun handle, bypassing DSN-based setup.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithDocumentArchive overrides the content archive binding.
func WithDocumentArchive(archive content.DocumentArchive) Option {
	return func(c *Container) {
		c.archive = archive
	}
}

// WithI18nRepository overrides the translation repository binding.
func WithI18nRepository(repo i18n.Repository) Option {
	return func(c *Container) {
		c.i18nRepo = repo
	}
}

// WithMarkdownService overrides the default Markdown service binding.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithI18nService overrides the default i18n service binding.
func WithI18nService(svc i18n.Service) Option {
	return func(c *Container) {
		c.i18nSvc = svc
	}
}

// WithContentService overrides the default content service binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.contentSvc = svc
	}
}

// WithNavigationService overrides the default navigation service binding.
func WithNavigationService(svc navigation.Service) Option {
	return func(c *Container) {
		c.navSvc = svc
	}
}

// WithGeneratorService overrides the default generator service binding.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.genSvc = svc
	}
}

// NewContainer builds the service graph described by cfg.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
		assets:   generator.DirAssetResolver{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorageBackend(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	if err := c.configureI18n(); err != nil {
		return nil, err
	}
	if err := c.configureRoutes(); err != nil {
		return nil, err
	}
	if err := c.configureNavigation(); err != nil {
		return nil, err
	}
	if err := c.configureContent(); err != nil {
		return nil, err
	}
	if err := c.configureGenerator(); err != nil {
		return nil, err
	}

	return c, nil
}

// Close releases resources owned by the container, currently the bun handle
// opened from a configured DSN. Injected handles stay open.
func (c *Container) Close() error {
	if c.bunDB != nil && c.ownsBunDB {
		return c.bunDB.Close()
	}
	return nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level := consoleLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureStorageBackend() error {
	if c.bunDB != nil || !c.Config.Features.Archive {
		return nil
	}

	dsn := strings.TrimSpace(c.Config.Storage.DSN)
	if dsn == "" {
		return runtimeconfig.ErrArchiveDSNRequired
	}

	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("di: open storage dsn: %w", err)
	}
	c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
	c.ownsBunDB = true

	// The container owns this handle, so it also owns the schema.
	// Injected handles are the host's responsibility.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := content.EnsureArchiveSchema(ctx, c.bunDB); err != nil {
		return fmt.Errorf("di: migrate archive schema: %w", err)
	}
	if err := i18n.EnsureTranslationSchema(ctx, c.bunDB); err != nil {
		return fmt.Errorf("di: migrate translation schema: %w", err)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureMarkdown() error {
	if c.markdownSvc != nil {
		return nil
	}
	if !c.Config.Features.Markdown || !c.Config.Markdown.Enabled {
		return nil
	}

	mdCfg := markdown.Config{
		DefaultLocale:  c.Config.I18N.DefaultLocale,
		Locales:        c.Config.I18N.Locales,
		LocalePatterns: c.Config.Markdown.LocalePatterns,
		Pattern:        c.Config.Markdown.Pattern,
		Recursive:      c.Config.Markdown.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Parser.Extensions,
			Sanitize:   c.Config.Markdown.Parser.Sanitize,
			HardWraps:  c.Config.Markdown.Parser.HardWraps,
			SafeMode:   c.Config.Markdown.Parser.SafeMode,
		},
	}

	if c.contentFS != nil {
		c.markdownSvc = markdown.NewServiceWithFS(mdCfg, c.contentFS, nil)
		return nil
	}

	svc, err := markdown.NewService(mdCfg, nil)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureI18n() error {
	if c.i18nSvc != nil {
		return nil
	}
	if !c.Config.I18N.Enabled {
		c.i18nSvc = i18n.NewNoOpService()
		return nil
	}

	cfg := i18n.FromModuleConfig(c.Config.I18N.DefaultLocale, c.Config.I18N.Locales)

	// Translation bundles stay the source of truth even when the
	// archive opens a database; DB-backed translations are opt-in
	// through WithI18nRepository.
	repo := c.i18nRepo
	if repo == nil {
		catalogs, err := c.loadTranslationBundles()
		if err != nil {
			return err
		}
		if len(catalogs) == 0 {
			fixture, err := i18n.DefaultFixture()
			if err != nil {
				return err
			}
			catalogs = fixture.Translations
		}
		repo = i18n.NewMemoryRepositoryFromCatalogs(catalogs)
	}
	c.i18nRepo = repo

	svc, err := i18n.NewService(context.Background(), cfg, i18n.Dependencies{
		Repository: repo,
		Logger:     logging.I18nLogger(c.loggerProvider),
	})
	if err != nil {
		return err
	}
	c.i18nSvc = svc
	return nil
}

func (c *Container) loadTranslationBundles() (map[string]map[string]string, error) {
	fsys := c.translationsFS
	dir := "."
	if fsys == nil {
		root := strings.TrimSpace(c.Config.I18N.TranslationsDir)
		if root == "" {
			return nil, nil
		}
		if _, err := os.Stat(root); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		fsys = os.DirFS(root)
	}
	return i18n.LoadBundles(fsys, dir)
}

func (c *Container) configureRoutes() error {
	if c.routeSvc != nil {
		return nil
	}

	resolver, err := routes.NewResolver(routes.Config{
		BaseURL:       c.Config.Site.BaseURL,
		DefaultLocale: c.Config.I18N.DefaultLocale,
		Locales:       c.Config.I18N.Locales,
	})
	if err != nil {
		return err
	}
	c.routeSvc = resolver
	return nil
}

func (c *Container) configureNavigation() error {
	if c.navSvc != nil {
		return nil
	}

	menus := make(map[string][]navigation.ItemConfig, len(c.Config.Navigation.Menus))
	for code, items := range c.Config.Navigation.Menus {
		entries := make([]navigation.ItemConfig, 0, len(items))
		for _, item := range items {
			entries = append(entries, navigation.ItemConfig{
				Label:  item.Label,
				Route:  item.Route,
				Weight: item.Weight,
				Hidden: item.Hidden,
			})
		}
		menus[code] = entries
	}

	svc, err := navigation.NewService(navigation.Config{Menus: menus}, navigation.Dependencies{
		Routes:     c.routeSvc,
		Translator: c.i18nSvc,
		Logger:     logging.ModuleLogger(c.loggerProvider, "folio.navigation"),
	})
	if err != nil {
		return err
	}
	c.navSvc = svc
	return nil
}

func (c *Container) configureContent() error {
	if c.contentSvc != nil {
		return nil
	}
	if c.markdownSvc == nil {
		return nil
	}

	if c.archive == nil && c.Config.Features.Archive && c.bunDB != nil {
		c.archive = content.NewBunDocumentArchiveWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}

	dataFS := c.dataFS
	projectsPath := strings.TrimSpace(c.Config.Content.ProjectsFile)
	if dataFS == nil {
		dataDir := strings.TrimSpace(c.Config.Content.DataDir)
		if dataDir != "" {
			dataFS = os.DirFS(dataDir)
		}
	}

	svc, err := content.NewService(content.Config{
		PagesDir:      c.Config.Content.PagesDir,
		PostsDir:      c.Config.Content.PostsDir,
		ProjectsPath:  projectsPath,
		DefaultLocale: c.Config.I18N.DefaultLocale,
		Locales:       c.Config.I18N.Locales,
		IncludeDrafts: c.Config.Content.IncludeDrafts,
	}, content.Dependencies{
		Markdown: c.markdownSvc,
		DataFS:   dataFS,
		Archive:  c.archive,
		Logger:   logging.ContentLogger(c.loggerProvider),
	})
	if err != nil {
		return err
	}
	c.contentSvc = svc
	return nil
}

func (c *Container) configureGenerator() error {
	if c.genSvc != nil {
		return nil
	}
	if !c.Config.Generator.Enabled {
		c.genSvc = generator.NewDisabledService()
		return nil
	}
	if c.contentSvc == nil {
		return runtimeconfig.ErrMarkdownContentDirRequired
	}

	if c.template == nil {
		renderer, err := c.buildRenderer()
		if err != nil {
			return err
		}
		if renderer != nil {
			c.template = renderer
		}
	}

	if c.storage == nil {
		outputDir := c.Config.Generator.OutputDir
		c.storage = storage.NewFilesystem(outputDir, outputDir)
	}

	menus := make(map[string]string, len(c.Config.Navigation.Menus))
	for code := range c.Config.Navigation.Menus {
		menus[code] = code
	}

	c.genSvc = generator.NewService(generator.Config{
		OutputDir:       c.Config.Generator.OutputDir,
		BaseURL:         c.Config.Site.BaseURL,
		SiteName:        c.Config.Site.Name,
		SiteDescription: c.Config.Site.Description,
		SiteAuthor:      c.Config.Site.Author,
		SiteParams:      c.Config.Site.Params,
		CleanBuild:      c.Config.Generator.CleanBuild,
		Incremental:     c.Config.Generator.Incremental,
		CopyAssets:      c.Config.Generator.CopyAssets,
		GenerateSitemap: c.Config.Generator.GenerateSitemap,
		GenerateRobots:  c.Config.Generator.GenerateRobots,
		GenerateFeeds:   c.Config.Generator.GenerateFeeds,
		Workers:         c.Config.Generator.Workers,
		DefaultLocale:   c.Config.I18N.DefaultLocale,
		Locales:         c.Config.I18N.Locales,
		Menus:           menus,
		Theming: generator.ThemingConfig{
			BasePath:         c.Config.Themes.BasePath,
			DefaultTheme:     c.Config.Themes.DefaultTheme,
			DefaultVariant:   c.Config.Themes.DefaultVariant,
			PartialFallbacks: c.Config.Themes.PartialFallbacks,
		},
	}, generator.Dependencies{
		Content:    c.contentSvc,
		Navigation: c.navSvc,
		Routes:     c.routeSvc,
		I18N:       c.i18nSvc,
		Renderer:   c.template,
		Storage:    c.storage,
		Assets:     c.assets,
		Logger:     logging.GeneratorLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) buildRenderer() (interfaces.TemplateRenderer, error) {
	base := strings.TrimSpace(c.Config.Themes.BasePath)
	theme := strings.TrimSpace(c.Config.Themes.DefaultTheme)

	dir := base
	if theme != "" {
		dir = filepath.Join(base, theme)
	}
	if templates := filepath.Join(dir, "templates"); dirExists(templates) {
		dir = templates
	}
	if !dirExists(dir) {
		// No theme on disk; builds will surface the missing renderer.
		return nil, nil
	}

	funcs := map[string]any{}
	i18nCfg := i18n.FromModuleConfig(c.Config.I18N.DefaultLocale, c.Config.I18N.Locales)
	for name, fn := range c.i18nSvc.TemplateHelpers(i18nCfg.HelperConfig()) {
		funcs[name] = fn
	}
	for name, fn := range c.routeSvc.TemplateHelpers() {
		funcs[name] = fn
	}

	return render.New(render.Config{BaseDir: dir, Funcs: funcs})
}

// LoggerProvider exposes the configured logging provider; nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module-scoped logger backed by the configured provider.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// MarkdownService returns the configured Markdown loader; nil when the
// markdown feature is disabled.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

// I18nService returns the configured translation service.
func (c *Container) I18nService() i18n.Service {
	return c.i18nSvc
}

// ContentService returns the configured content tree service.
func (c *Container) ContentService() content.Service {
	return c.contentSvc
}

// RouteResolver returns the locale-aware route table.
func (c *Container) RouteResolver() *routes.Resolver {
	return c.routeSvc
}

// NavigationService returns the configured menu builder.
func (c *Container) NavigationService() navigation.Service {
	return c.navSvc
}

// GeneratorService returns the configured static site generator.
func (c *Container) GeneratorService() generator.Service {
	return c.genSvc
}

// StorageProvider exposes the configured artifact storage backend.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.storage
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

// DocumentArchive exposes the configured archive; nil unless the archive
// feature is enabled.
func (c *Container) DocumentArchive() content.DocumentArchive {
	return c.archive
}

// BunDB exposes the underlying bun handle; nil without an archive backend.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
