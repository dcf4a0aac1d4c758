package di

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/runtimeconfig"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func baseConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.BaseURL = "https://example.test"
	cfg.I18N.Locales = []string{"en", "de"}
	cfg.Generator.Enabled = false
	return cfg
}

func contentFixture() fstest.MapFS {
	return fstest.MapFS{
		"content/pages/home.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Home\n---\n\nWelcome."),
		},
		"content/posts/hello.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Hello\ndate: 2026-01-02T00:00:00Z\n---\n\nFirst."),
		},
	}
}

func translationsFixture() fstest.MapFS {
	return fstest.MapFS{
		"en.yaml": &fstest.MapFile{Data: []byte("nav:\n  home: Home\n")},
		"de.yaml": &fstest.MapFile{Data: []byte("nav:\n  home: Start\n")},
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.I18N.DefaultLocale = ""

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrDefaultLocaleRequired) {
		t.Fatalf("expected default locale error, got %v", err)
	}
}

func TestNewContainerWiresCoreServices(t *testing.T) {
	cfg := baseConfig()

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.MarkdownService() == nil {
		t.Fatal("expected markdown service")
	}
	if c.ContentService() == nil {
		t.Fatal("expected content service")
	}
	if c.RouteResolver() == nil {
		t.Fatal("expected route resolver")
	}
	if c.NavigationService() == nil {
		t.Fatal("expected navigation service")
	}

	value, err := c.I18nService().Translate("de", "nav.home")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if value != "Start" {
		t.Fatalf("expected bundle-backed translation, got %q", value)
	}

	if err := c.ContentService().LoadTree(context.Background()); err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	posts, err := c.ContentService().Posts(context.Background(), "en")
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "hello" {
		t.Fatalf("unexpected posts: %#v", posts)
	}
}

func TestNewContainerDisabledGeneratorRejectsBuilds(t *testing.T) {
	cfg := baseConfig()

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if _, err := c.GeneratorService().Build(context.Background(), generator.BuildOptions{}); !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected disabled generator, got %v", err)
	}
}

func TestNewContainerI18nFallsBackToDefaultLocale(t *testing.T) {
	cfg := baseConfig()
	cfg.I18N.Locales = []string{"en", "de", "hi"}

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	// hi has no bundle; the lookup resolves through the default locale.
	res := c.I18nService().Lookup("hi", "nav.home")
	if res.Value != "Home" || !res.FallbackUsed {
		t.Fatalf("expected default-locale fallback, got %+v", res)
	}
}

func TestNewContainerArchiveRequiresDSN(t *testing.T) {
	cfg := baseConfig()
	cfg.Features.Archive = true
	cfg.Storage.DSN = ""

	_, err := NewContainer(cfg, WithContentFS(contentFixture()))
	if !errors.Is(err, runtimeconfig.ErrArchiveDSNRequired) {
		t.Fatalf("expected DSN error, got %v", err)
	}
}

func TestNewContainerArchiveUsesInjectedBunDB(t *testing.T) {
	db, err := testsupport.NewSQLiteBunDB("di_container_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := content.EnsureArchiveSchema(context.Background(), db); err != nil {
		t.Fatalf("archive schema: %v", err)
	}

	cfg := baseConfig()
	cfg.Features.Archive = true
	cfg.Storage.DSN = "file::memory:?cache=shared"

	c, err := NewContainer(cfg,
		WithBunDB(db),
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.BunDB() != db {
		t.Fatal("expected injected bun handle to win over DSN setup")
	}
	if c.DocumentArchive() == nil {
		t.Fatal("expected archive binding when the feature is enabled")
	}

	// Enabling the archive must not reroute translations away from the
	// configured bundles.
	value, err := c.I18nService().Translate("de", "nav.home")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if value != "Start" {
		t.Fatalf("expected bundle-backed translation, got %q", value)
	}
}

func TestNewContainerArchiveDSNMigratesSchema(t *testing.T) {
	cfg := baseConfig()
	cfg.Features.Archive = true
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "folio.db")

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	doc := &content.ArchivedDocument{
		ID:           identity.DocumentUUID("hello", "en"),
		Source:       "content/posts/hello.md",
		Kind:         content.KindPost,
		Slug:         "hello",
		Locale:       "en",
		Title:        "Hello",
		Checksum:     "abc123",
		LastModified: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		RecordedAt:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if _, err := c.DocumentArchive().Record(ctx, doc); err != nil {
		t.Fatalf("record: %v", err)
	}
	stored, err := c.DocumentArchive().GetBySource(ctx, "content/posts/hello.md")
	if err != nil {
		t.Fatalf("get by source: %v", err)
	}
	if stored.Slug != "hello" {
		t.Fatalf("unexpected archived document: %#v", stored)
	}

	repo := i18n.NewBunRepository(c.BunDB())
	if err := repo.Upsert(ctx, "en", "nav.about", "About"); err != nil {
		t.Fatalf("upsert translation: %v", err)
	}
	catalog, err := repo.Catalog(ctx, "en")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if catalog["nav.about"] != "About" {
		t.Fatalf("unexpected catalog: %#v", catalog)
	}
}

func TestNewContainerZeroConfigUsesEmbeddedDefaults(t *testing.T) {
	cfg := baseConfig()
	cfg.I18N.TranslationsDir = ""

	c, err := NewContainer(cfg, WithContentFS(contentFixture()))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if err := c.I18nService().Verify(context.Background()); err != nil {
		t.Fatalf("verify: %v", err)
	}
	value, err := c.I18nService().Translate("en", "nav.home")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if value != "Home" {
		t.Fatalf("expected embedded default catalogue, got %q", value)
	}
}

func TestNewContainerHonorsServiceOverrides(t *testing.T) {
	cfg := baseConfig()

	custom, err := i18n.NewInMemoryService(i18n.Config{DefaultLocale: "en"}, map[string]map[string]string{
		"en": {"nav.home": "Override"},
	})
	if err != nil {
		t.Fatalf("custom i18n: %v", err)
	}

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithI18nService(custom),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	value, err := c.I18nService().Translate("en", "nav.home")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if value != "Override" {
		t.Fatalf("expected override service, got %q", value)
	}
}

func TestNewContainerLoggingProviderSelection(t *testing.T) {
	cfg := baseConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "console"

	c, err := NewContainer(cfg,
		WithContentFS(contentFixture()),
		WithTranslationsFS(translationsFixture()),
	)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.LoggerProvider() == nil {
		t.Fatal("expected logger provider when the feature is enabled")
	}
	if c.Logger("folio.test") == nil {
		t.Fatal("expected module logger")
	}
}
