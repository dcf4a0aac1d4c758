package generator

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

type sitemapEntry struct {
	Location   string
	LastMod    time.Time
	Alternates []sitemapAlternate
}

// sitemapAlternate is one xhtml:link hreflang entry. The default locale
// is additionally emitted as x-default so crawlers have an anchor when
// no language matches.
type sitemapAlternate struct {
	Locale   string
	Location string
}

func buildSitemap(baseURL, defaultLocale string, pages []RenderedPage, fallback time.Time) string {
	base := normalizeSitemapBase(baseURL)

	// Locale variants of one document share an alternate cluster keyed
	// by the manifest document identifier.
	alternates := map[string][]sitemapAlternate{}
	clustered := map[string]struct{}{}
	for _, page := range pages {
		doc := strings.TrimSpace(page.Document)
		if doc == "" {
			continue
		}
		locale := strings.TrimSpace(page.Locale)
		if _, ok := clustered[doc+"\x00"+locale]; ok {
			continue
		}
		clustered[doc+"\x00"+locale] = struct{}{}
		alternates[doc] = append(alternates[doc], sitemapAlternate{
			Locale:   locale,
			Location: base + normalizeSitemapRoute(page.Route),
		})
	}
	for doc := range alternates {
		cluster := alternates[doc]
		sort.Slice(cluster, func(i, j int) bool { return cluster[i].Locale < cluster[j].Locale })
		alternates[doc] = cluster
	}

	entries := make([]sitemapEntry, 0, len(pages))
	seen := map[string]struct{}{}
	for _, page := range pages {
		location := base + normalizeSitemapRoute(page.Route)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		lastMod := page.Metadata.LastModified
		if lastMod.IsZero() {
			lastMod = fallback
		}

		entry := sitemapEntry{Location: location, LastMod: lastMod}
		if cluster := alternates[strings.TrimSpace(page.Document)]; len(cluster) > 1 {
			entry.Alternates = cluster
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml=%q>`+"\n",
		xhtmlNamespace,
	))
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", html.EscapeString(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		for _, alt := range entry.Alternates {
			builder.WriteString(fmt.Sprintf(
				"    <xhtml:link rel=\"alternate\" hreflang=%q href=%q/>\n",
				alt.Locale, alt.Location,
			))
			if strings.EqualFold(alt.Locale, defaultLocale) {
				builder.WriteString(fmt.Sprintf(
					"    <xhtml:link rel=\"alternate\" hreflang=\"x-default\" href=%q/>\n",
					alt.Location,
				))
			}
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", normalizeSitemapBase(baseURL)))
	}
	return builder.String()
}

func normalizeSitemapBase(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = "http://localhost"
	}
	return base
}

func normalizeSitemapRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}
