package generator

import (
	"path"
	"strings"
)

// buildOutputPath maps a resolved route onto a relative file path in
// the output tree. Every route becomes a directory with an index.html
// so the generated site serves clean URLs without rewrite rules. Pages
// in the default locale land at the tree root; other locales are
// nested under their locale code, with any locale prefix already
// present in the route collapsed so "/de/about" and "about" both
// resolve to "de/about/index.html".
func buildOutputPath(route string, locale string, defaultLocale string) string {
	locale = strings.TrimSpace(locale)
	defaultLocale = strings.TrimSpace(defaultLocale)
	if locale == "" {
		locale = defaultLocale
	}

	clean := strings.Trim(strings.TrimSpace(route), " \t\r\n/")

	if locale == "" || strings.EqualFold(locale, defaultLocale) {
		return path.Join(clean, "index.html")
	}

	var segments []string
	if clean != "" {
		segments = strings.Split(clean, "/")
		if strings.EqualFold(segments[0], locale) {
			segments = segments[1:]
		}
	}

	parts := append([]string{locale}, segments...)
	parts = append(parts, "index.html")
	return path.Join(parts...)
}
