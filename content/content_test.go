package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-folio/content"
)

func TestNormalizeSlug(t *testing.T) {
	got, err := content.NormalizeSlug("Hello World")
	if err != nil {
		t.Fatalf("NormalizeSlug: %v", err)
	}
	if got != "hello-world" {
		t.Fatalf("NormalizeSlug = %q, want %q", got, "hello-world")
	}
	if !content.IsValidSlug(got) {
		t.Fatalf("expected %q to validate", got)
	}
}

func TestDefaultSlugNormalizer(t *testing.T) {
	normalizer := content.DefaultSlugNormalizer()
	if normalizer == nil {
		t.Fatal("expected a default normalizer")
	}
}

func TestSlugFromPathStripsLocaleSuffix(t *testing.T) {
	got, err := content.SlugFromPath("posts/hello-world.de.md", []string{"en", "de", "hi"})
	if err != nil {
		t.Fatalf("SlugFromPath: %v", err)
	}
	if got != "hello-world" {
		t.Fatalf("SlugFromPath = %q, want %q", got, "hello-world")
	}

	if _, err := content.SlugFromPath("posts/.md", []string{"en"}); !errors.Is(err, content.ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
}

func TestMemoryDocumentArchiveRoundTrip(t *testing.T) {
	archive := content.NewMemoryDocumentArchive()

	doc := &content.ArchivedDocument{
		Source:   "content/posts/hello.md",
		Kind:     content.KindPost,
		Slug:     "hello",
		Locale:   "en",
		Checksum: "abc",
	}
	if _, err := archive.Record(context.Background(), doc); err != nil {
		t.Fatalf("record: %v", err)
	}

	stored, err := archive.GetBySource(context.Background(), "content/posts/hello.md")
	if err != nil {
		t.Fatalf("get by source: %v", err)
	}
	if stored.Slug != "hello" || stored.Kind != content.KindPost {
		t.Fatalf("unexpected archived document: %#v", stored)
	}

	var notFound *content.NotFoundError
	if _, err := archive.GetBySource(context.Background(), "missing.md"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
