package content

import (
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugFromPath derives a document slug from its filename stem:
// "posts/hello-world.de.md" yields "hello-world". The extension and a
// trailing locale suffix are stripped before normalization. Filenames that
// do not survive normalization are build errors, not silent renames.
func SlugFromPath(source string, locales []string) (string, error) {
	stem := strings.TrimSuffix(path.Base(source), path.Ext(source))
	stem = stripLocaleSuffix(stem, locales)
	return normalizeSlug(stem, source)
}

func normalizeSlug(value, source string) (string, error) {
	normalized, err := slug.Normalize(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %s (%v)", ErrSlugInvalid, source, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("%w: %s", ErrSlugInvalid, source)
	}
	return normalized, nil
}

func stripLocaleSuffix(stem string, locales []string) string {
	suffix := path.Ext(stem)
	if suffix == "" {
		return stem
	}
	candidate := strings.TrimPrefix(suffix, ".")
	for _, locale := range locales {
		if candidate == locale {
			return strings.TrimSuffix(stem, suffix)
		}
	}
	return stem
}
