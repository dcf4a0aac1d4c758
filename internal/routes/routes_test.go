package routes

import (
	"errors"
	"testing"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	resolver, err := NewResolver(Config{
		BaseURL:       "https://example.com",
		DefaultLocale: "en",
		Locales:       []string{"en", "de", "hi"},
	})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return resolver
}

func TestResolverLocalePrefixes(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name   string
		locale string
		route  string
		params map[string]string
		want   string
	}{
		{name: "default locale unprefixed", locale: "en", route: "about", want: "/about"},
		{name: "locale prefix", locale: "de", route: "about", want: "/de/about"},
		{name: "post slug", locale: "en", route: "blog.post", params: map[string]string{"slug": "hello-world"}, want: "/blog/hello-world"},
		{name: "prefixed tag", locale: "hi", route: "blog.tag", params: map[string]string{"tag": "go"}, want: "/hi/blog/tags/go"},
		{name: "root", locale: "en", route: "home", want: "/"},
		{name: "prefixed root", locale: "de", route: "home", want: "/de"},
		{name: "free-form page", locale: "en", route: "page", params: map[string]string{"slug": "contact"}, want: "/contact"},
		{name: "prefixed free-form page", locale: "hi", route: "page", params: map[string]string{"slug": "contact"}, want: "/hi/contact"},
		{name: "unknown locale falls back", locale: "fr", route: "projects", want: "/projects"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolver.Path(tc.locale, tc.route, tc.params)
			if err != nil {
				t.Fatalf("Path(%q, %q) error = %v", tc.locale, tc.route, err)
			}
			if got != tc.want {
				t.Fatalf("Path(%q, %q) = %q, want %q", tc.locale, tc.route, got, tc.want)
			}
		})
	}
}

func TestResolverAbsolute(t *testing.T) {
	resolver := newTestResolver(t)

	got, err := resolver.Absolute("de", "blog.post", map[string]string{"slug": "hallo-welt"})
	if err != nil {
		t.Fatalf("Absolute() error = %v", err)
	}
	if want := "https://example.com/de/blog/hallo-welt"; got != want {
		t.Fatalf("Absolute() = %q, want %q", got, want)
	}

	got, err = resolver.Absolute("en", "home", nil)
	if err != nil {
		t.Fatalf("Absolute(home) error = %v", err)
	}
	if want := "https://example.com"; got != want {
		t.Fatalf("Absolute(home) = %q, want %q", got, want)
	}
}

func TestResolverUnknownRoute(t *testing.T) {
	resolver := newTestResolver(t)

	if _, err := resolver.Path("en", "missing", nil); !errors.Is(err, ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
}

func TestResolverCustomPaths(t *testing.T) {
	resolver, err := NewResolver(Config{
		BaseURL:       "https://example.com/",
		DefaultLocale: "en",
		Locales:       []string{"en", "de"},
		Paths: map[string]string{
			"about": "/info",
			"feed":  "/feed.xml",
		},
	})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	got, err := resolver.Path("en", "about", nil)
	if err != nil {
		t.Fatalf("Path(about) error = %v", err)
	}
	if got != "/info" {
		t.Fatalf("expected override path /info, got %q", got)
	}

	got, err = resolver.Path("de", "feed", nil)
	if err != nil {
		t.Fatalf("Path(feed) error = %v", err)
	}
	if got != "/de/feed.xml" {
		t.Fatalf("expected /de/feed.xml, got %q", got)
	}
}

func TestResolverRequiresDefaultLocale(t *testing.T) {
	if _, err := NewResolver(Config{BaseURL: "https://example.com"}); !errors.Is(err, ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestResolverRouteTable(t *testing.T) {
	resolver := newTestResolver(t)

	if !resolver.Has("blog.index") {
		t.Fatal("expected blog.index in route table")
	}
	if resolver.Has("nope") {
		t.Fatal("did not expect nope in route table")
	}

	names := resolver.Names()
	if len(names) != len(DefaultPaths()) {
		t.Fatalf("expected %d route names, got %d", len(DefaultPaths()), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("route names not sorted: %v", names)
		}
	}
}

func TestResolverTemplateHelpers(t *testing.T) {
	resolver := newTestResolver(t)
	helpers := resolver.TemplateHelpers()

	route, ok := helpers["route"].(func(string, string, ...string) (string, error))
	if !ok {
		t.Fatalf("route helper has unexpected type %T", helpers["route"])
	}
	got, err := route("de", "blog.post", "slug", "hallo-welt")
	if err != nil {
		t.Fatalf("route helper error = %v", err)
	}
	if want := "/de/blog/hallo-welt"; got != want {
		t.Fatalf("route helper = %q, want %q", got, want)
	}
	if _, err := route("de", "blog.post", "slug"); err == nil {
		t.Fatal("expected error for dangling parameter pair")
	}

	absRoute, ok := helpers["absRoute"].(func(string, string, ...string) (string, error))
	if !ok {
		t.Fatalf("absRoute helper has unexpected type %T", helpers["absRoute"])
	}
	got, err = absRoute("en", "projects")
	if err != nil {
		t.Fatalf("absRoute helper error = %v", err)
	}
	if want := "https://example.com/projects"; got != want {
		t.Fatalf("absRoute helper = %q, want %q", got, want)
	}
}
