package content

import (
	"github.com/goliatone/go-slug"

	internal "github.com/goliatone/go-folio/internal/content"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// SlugFromPath derives a document slug from its source filename,
// stripping the extension and any trailing locale suffix before
// normalizing. "posts/hello-world.de.md" yields "hello-world".
func SlugFromPath(source string, locales []string) (string, error) {
	return internal.SlugFromPath(source, locales)
}
