package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/markdown"
	"github.com/goliatone/go-folio/internal/navigation"
	"github.com/goliatone/go-folio/internal/render"
	"github.com/goliatone/go-folio/internal/routes"
	"github.com/goliatone/go-folio/pkg/interfaces"
	"github.com/goliatone/go-folio/pkg/storage"
)

// TestIntegrationBuildWritesSiteToDisk runs the whole pipeline: markdown
// documents through the content tree, configured menus, the html/template
// renderer, and the filesystem artifact store.
func TestIntegrationBuildWritesSiteToDisk(t *testing.T) {
	ctx := context.Background()

	siteFS := fstest.MapFS{
		"pages/home.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Home\ntemplate: home.html\n---\n\nWelcome to the site."),
		},
		"pages/about.md": &fstest.MapFile{
			Data: []byte("---\ntitle: About\n---\n\nAbout me."),
		},
		"pages/about.de.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Über mich\n---\n\nÜber mich."),
		},
		"posts/first-light.md": &fstest.MapFile{
			Data: []byte("---\ntitle: First Light\ndate: 2026-02-01T00:00:00Z\ntags:\n  - go\n---\n\nFirst post."),
		},
		"posts/first-light.de.md": &fstest.MapFile{
			Data: []byte("---\ntitle: Erstes Licht\ndate: 2026-02-01T00:00:00Z\ntags:\n  - go\n---\n\nErster Beitrag."),
		},
	}

	md := markdown.NewServiceWithFS(markdown.Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	}, siteFS, nil)

	contentSvc, err := content.NewService(content.Config{
		PagesDir:      "pages",
		PostsDir:      "posts",
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	}, content.Dependencies{Markdown: md})
	if err != nil {
		t.Fatalf("content service: %v", err)
	}

	resolver, err := routes.NewResolver(routes.Config{
		BaseURL:       "https://example.test",
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	})
	if err != nil {
		t.Fatalf("route resolver: %v", err)
	}

	i18nSvc, err := i18n.NewInMemoryService(i18n.Config{
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
	}, map[string]map[string]string{
		"en": {"nav.home": "Home", "nav.blog": "Blog"},
		"de": {"nav.home": "Start", "nav.blog": "Blog"},
	})
	if err != nil {
		t.Fatalf("i18n service: %v", err)
	}

	nav, err := navigation.NewService(navigation.Config{
		Menus: map[string][]navigation.ItemConfig{
			"primary": {
				{Label: "nav.home", Route: "home", Weight: 0},
				{Label: "nav.blog", Route: "blog.index", Weight: 10},
			},
		},
	}, navigation.Dependencies{Routes: resolver, Translator: i18nSvc})
	if err != nil {
		t.Fatalf("navigation service: %v", err)
	}

	templates := t.TempDir()
	writeTemplate(t, templates, "home.html", `<h1>{{ .Page.Page.Title }}</h1>{{ range index .Page.Menus "main" }}<a href="{{ .Path }}">{{ .Label }}</a>{{ end }}`)
	writeTemplate(t, templates, "page.html", `<article>{{ .Page.Page.Title }}</article>`)
	writeTemplate(t, templates, "post.html", `<article>{{ .Page.Post.Title }}{{ .Page.Post.BodyHTML | safeHTML }}</article>`)
	writeTemplate(t, templates, "blog.html", `<ul>{{ range .Page.Posts }}<li>{{ .Title }}</li>{{ end }}</ul>`)
	writeTemplate(t, templates, "tag.html", `<h2>{{ .Page.Tag.Name }}</h2>`)

	renderer, err := render.New(render.Config{
		BaseDir: templates,
		Funcs:   i18nSvc.TemplateHelpers(interfaces.HelperConfig{}),
	})
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	output := t.TempDir()
	store := storage.NewFilesystem(output, "dist")

	svc := generator.NewService(generator.Config{
		OutputDir:       "dist",
		BaseURL:         "https://example.test",
		SiteName:        "Integration Site",
		DefaultLocale:   "en",
		Locales:         []string{"en", "de"},
		GenerateSitemap: true,
		GenerateRobots:  true,
		GenerateFeeds:   true,
		Workers:         2,
		Menus:           map[string]string{"main": "primary"},
	}, generator.Dependencies{
		Content:    contentSvc,
		Navigation: nav,
		Routes:     resolver,
		I18N:       i18nSvc,
		Renderer:   renderer,
		Storage:    store,
	})

	result, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// per locale: home + about + post + blog index + tag index
	if result.PagesBuilt != 10 {
		t.Fatalf("expected 10 pages, built %d", result.PagesBuilt)
	}

	home := readOutput(t, output, "index.html")
	if !strings.Contains(home, "<h1>Home</h1>") {
		t.Fatalf("home page missing title:\n%s", home)
	}
	if !strings.Contains(home, `<a href="/">Home</a>`) || !strings.Contains(home, `<a href="/blog">Blog</a>`) {
		t.Fatalf("home page missing localized menu:\n%s", home)
	}

	deHome := readOutput(t, output, filepath.Join("de", "index.html"))
	if !strings.Contains(deHome, `<a href="/de">Start</a>`) {
		t.Fatalf("german home missing localized menu:\n%s", deHome)
	}

	dePost := readOutput(t, output, filepath.Join("de", "blog", "first-light", "index.html"))
	if !strings.Contains(dePost, "Erstes Licht") {
		t.Fatalf("german post missing translated title:\n%s", dePost)
	}

	about := readOutput(t, output, filepath.Join("about", "index.html"))
	if !strings.Contains(about, "<article>About</article>") {
		t.Fatalf("about page content wrong:\n%s", about)
	}

	sitemap := readOutput(t, output, "sitemap.xml")
	for _, loc := range []string{
		"https://example.test/about",
		"https://example.test/de/about",
		"https://example.test/blog/first-light",
	} {
		if !strings.Contains(sitemap, "<loc>"+loc+"</loc>") {
			t.Errorf("sitemap missing %s:\n%s", loc, sitemap)
		}
	}

	if _, err := os.Stat(filepath.Join(output, "feeds", "en.rss.xml")); err != nil {
		t.Fatalf("expected rss feed on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(output, ".folio-manifest.json")); err != nil {
		t.Fatalf("expected manifest on disk: %v", err)
	}

	// A second build against the same manifest is a no-op under the
	// incremental flag.
	incremental := generator.NewService(generator.Config{
		OutputDir:     "dist",
		BaseURL:       "https://example.test",
		SiteName:      "Integration Site",
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
		Incremental:   true,
		Workers:       1,
		Menus:         map[string]string{"main": "primary"},
	}, generator.Dependencies{
		Content:    contentSvc,
		Navigation: nav,
		Routes:     resolver,
		I18N:       i18nSvc,
		Renderer:   renderer,
		Storage:    store,
	})
	second, err := incremental.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("incremental build: %v", err)
	}
	if second.PagesBuilt != 0 || second.PagesSkipped != 10 {
		t.Fatalf("expected all pages skipped, built=%d skipped=%d", second.PagesBuilt, second.PagesSkipped)
	}
}

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write template %s: %v", name, err)
	}
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}
