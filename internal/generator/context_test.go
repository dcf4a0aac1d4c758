package generator

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/navigation"
)

func TestResolveLocalesKeepsDefaultFirst(t *testing.T) {
	fixtures := newBuildFixtures(time.Now())
	svc := newTestGenerator(fixtures, &recordingRenderer{}, newMemoryStore()).(*service)

	set := svc.resolveLocales(BuildOptions{})
	if set.defaultCode != "en" {
		t.Fatalf("expected en default, got %q", set.defaultCode)
	}
	if len(set.ordered) != 2 || set.ordered[0].Code != "en" || !set.ordered[0].IsDefault {
		t.Fatalf("expected default-first ordering, got %#v", set.ordered)
	}
	if set.ordered[1].Code != "de" || set.ordered[1].IsDefault {
		t.Fatalf("expected de second, got %#v", set.ordered[1])
	}
}

func TestResolveLocalesHonorsRequestedSubset(t *testing.T) {
	fixtures := newBuildFixtures(time.Now())
	svc := newTestGenerator(fixtures, &recordingRenderer{}, newMemoryStore()).(*service)

	set := svc.resolveLocales(BuildOptions{Locales: []string{"DE", "de", " "}})
	if len(set.ordered) != 1 || set.ordered[0].Code != "de" {
		t.Fatalf("expected deduplicated de-only set, got %#v", set.ordered)
	}
	if set.defaultCode != "en" {
		t.Fatalf("default code must survive scoping, got %q", set.defaultCode)
	}
}

func TestLoadContextSchedulesAllPageKinds(t *testing.T) {
	fixtures := newBuildFixtures(time.Now())
	svc := newTestGenerator(fixtures, &recordingRenderer{}, newMemoryStore()).(*service)

	buildCtx, err := svc.loadContext(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("loadContext: %v", err)
	}

	kinds := map[PageKind]int{}
	for _, page := range buildCtx.Pages {
		kinds[page.Kind]++
		if page.Metadata.Hash == "" {
			t.Fatalf("page %s missing dependency hash", page.Document)
		}
	}
	if kinds[pageKindPage] != 4 || kinds[pageKindPost] != 2 || kinds[pageKindBlogIndex] != 2 || kinds[pageKindTagIndex] != 2 {
		t.Fatalf("unexpected kind distribution: %v", kinds)
	}
}

func TestSlugFilterMatchesDocumentsAndSlugs(t *testing.T) {
	post := &PageData{
		Kind:     pageKindPost,
		Document: postDocument("hello"),
		Post:     &content.Post{Slug: "hello"},
	}
	index := &PageData{Kind: pageKindBlogIndex, Document: blogIndexDocument}

	filter := slugFilter([]string{"HELLO"})
	if !post.matchesFilter(filter) {
		t.Fatalf("bare slug should match the post")
	}
	if index.matchesFilter(filter) {
		t.Fatalf("index pages must not match a bare slug filter")
	}

	filter = slugFilter([]string{blogIndexDocument})
	if !index.matchesFilter(filter) {
		t.Fatalf("document key should match the index")
	}
	if post.matchesFilter(filter) {
		t.Fatalf("unrelated documents must not match")
	}

	if !post.matchesFilter(nil) {
		t.Fatalf("nil filter matches everything")
	}
}

func TestBuildOutputPathLocalePrefixes(t *testing.T) {
	cases := []struct {
		route, locale, def, want string
	}{
		{"/", "en", "en", "index.html"},
		{"/about", "en", "en", "about/index.html"},
		{"/de/about", "de", "en", "de/about/index.html"},
		{"/about", "de", "en", "de/about/index.html"},
		{"/de", "de", "en", "de/index.html"},
		{"", "", "en", "index.html"},
	}
	for _, tc := range cases {
		if got := buildOutputPath(tc.route, tc.locale, tc.def); got != tc.want {
			t.Errorf("buildOutputPath(%q, %q, %q) = %q, want %q", tc.route, tc.locale, tc.def, got, tc.want)
		}
	}
}

func TestDependencyMetadataIsStable(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	page := &content.Page{
		Slug:         "about",
		Locale:       "en",
		Title:        "About",
		Checksum:     []byte{0xAA},
		LastModified: now,
		Extra:        map[string]any{"b": 2, "a": 1},
	}
	build := func() DependencyMetadata {
		return computeDependencyMetadata(&PageData{
			Kind:     pageKindPage,
			Document: pageDocument("about"),
			Page:     page,
			Route:    "/about",
			Template: "page.html",
		})
	}

	first := build()
	second := build()
	if first.Hash != second.Hash {
		t.Fatalf("hash must be deterministic: %s vs %s", first.Hash, second.Hash)
	}
	if !first.LastModified.Equal(now) {
		t.Fatalf("expected last modified %v, got %v", now, first.LastModified)
	}

	page.Checksum = []byte{0xBB}
	if changed := build(); changed.Hash == first.Hash {
		t.Fatalf("hash must react to content changes")
	}
}

func TestMenuCacheResolvesOncePerLocale(t *testing.T) {
	nav := &countingNav{items: []navigation.Item{{Label: "Home", Route: "home", Path: "/"}}}
	cache := newMenuCache(map[string]string{"main": "primary"})

	first, err := cache.resolveAll(nav, "en")
	if err != nil {
		t.Fatalf("resolveAll: %v", err)
	}
	if len(first["main"]) != 1 {
		t.Fatalf("expected aliased menu, got %#v", first)
	}

	if _, err := cache.resolveAll(nav, "en"); err != nil {
		t.Fatalf("resolveAll cached: %v", err)
	}
	if nav.calls != 1 {
		t.Fatalf("expected a single nav build per locale, got %d", nav.calls)
	}

	if _, err := cache.resolveAll(nav, "de"); err != nil {
		t.Fatalf("resolveAll de: %v", err)
	}
	if nav.calls != 2 {
		t.Fatalf("expected one more build for de, got %d", nav.calls)
	}
}

func TestMenuCacheToleratesUnknownMenus(t *testing.T) {
	nav := &countingNav{err: navigation.ErrUnknownMenu}
	cache := newMenuCache(map[string]string{"main": "missing"})

	menus, err := cache.resolveAll(nav, "en")
	if err != nil {
		t.Fatalf("unknown menus must not fail the build: %v", err)
	}
	if items := menus["main"]; items != nil {
		t.Fatalf("expected nil items for unknown menu, got %#v", items)
	}
}

type countingNav struct {
	items []navigation.Item
	err   error
	calls int
}

func (n *countingNav) Build(menu, locale, currentPath string) ([]navigation.Item, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	return append([]navigation.Item(nil), n.items...), nil
}

func (n *countingNav) Menus() []string { return []string{"primary"} }
func (n *countingNav) Verify() error   { return nil }
