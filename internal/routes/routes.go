// Package routes builds locale-prefixed paths and absolute URLs for the
// site's named routes. The default locale renders at the route root and
// every other locale under "/<locale>"; both views share one route table
// backed by a go-urlkit RouteManager.
package routes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// DefaultGroup names the root urlkit group; locale groups nest under it.
const DefaultGroup = "site"

var (
	// ErrDefaultLocaleRequired is returned when a resolver is constructed
	// without a default locale.
	ErrDefaultLocaleRequired = errors.New("routes: default locale required")

	// ErrUnknownRoute is returned when a route name has no entry in the
	// route table.
	ErrUnknownRoute = errors.New("routes: unknown route")
)

// DefaultPaths returns the named route table shared by every locale group.
// Parameters use urlkit placeholder syntax (":slug").
func DefaultPaths() map[string]string {
	return map[string]string{
		"home":       "/",
		"about":      "/about",
		"projects":   "/projects",
		"page":       "/:slug",
		"blog.index": "/blog",
		"blog.post":  "/blog/:slug",
		"blog.tag":   "/blog/tags/:tag",
	}
}

// Config describes the route table for one site.
type Config struct {
	// BaseURL is the absolute site root, e.g. "https://example.com".
	// Trailing slashes are trimmed.
	BaseURL string

	// DefaultLocale renders unprefixed at the route root.
	DefaultLocale string

	// Locales lists every locale the site renders, default included.
	// Each non-default locale gets a "/<locale>" group.
	Locales []string

	// Paths extends or overrides DefaultPaths entries.
	Paths map[string]string
}

// Resolver resolves named routes to locale-prefixed paths and absolute
// URLs. Locales without a configured group resolve against the default
// group, so an unknown locale produces unprefixed paths rather than an
// error.
type Resolver struct {
	manager       *urlkit.RouteManager
	baseURL       string
	defaultLocale string
	localeGroups  map[string]string
	paths         map[string]string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewResolver assembles a urlkit route manager with one group per locale:
// the default locale at the site root, the rest nested under "/<locale>".
func NewResolver(cfg Config) (*Resolver, error) {
	defaultLocale := normalizeLocale(cfg.DefaultLocale)
	if defaultLocale == "" {
		return nil, ErrDefaultLocaleRequired
	}

	paths := DefaultPaths()
	for name, path := range cfg.Paths {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		paths[name] = path
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	root := urlkit.GroupConfig{
		Name:    DefaultGroup,
		BaseURL: baseURL,
		Paths:   clonePaths(paths),
	}

	localeGroups := map[string]string{defaultLocale: DefaultGroup}
	for _, locale := range cfg.Locales {
		locale = normalizeLocale(locale)
		if locale == "" || locale == defaultLocale {
			continue
		}
		if _, seen := localeGroups[locale]; seen {
			continue
		}
		root.Groups = append(root.Groups, urlkit.GroupConfig{
			Name:  locale,
			Path:  "/" + locale,
			Paths: clonePaths(paths),
		})
		localeGroups[locale] = DefaultGroup + "." + locale
	}

	return &Resolver{
		manager:       urlkit.NewRouteManager(&urlkit.Config{Groups: []urlkit.GroupConfig{root}}),
		baseURL:       baseURL,
		defaultLocale: defaultLocale,
		localeGroups:  localeGroups,
		paths:         paths,
		groupCache:    make(map[string]*urlkit.Group),
	}, nil
}

// DefaultLocale returns the locale rendered at the route root.
func (r *Resolver) DefaultLocale() string {
	return r.defaultLocale
}

// BaseURL returns the normalized site root.
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// Names returns the route names in the table, sorted.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.paths))
	for name := range r.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the table contains the named route.
func (r *Resolver) Has(name string) bool {
	_, ok := r.paths[name]
	return ok
}

// Path builds the locale-prefixed path for a named route. The result has
// no trailing slash except for the bare root "/".
func (r *Resolver) Path(locale, name string, params map[string]string) (string, error) {
	absolute, err := r.build(locale, name, params)
	if err != nil {
		return "", err
	}

	path := absolute
	if r.baseURL != "" {
		path = strings.TrimPrefix(absolute, r.baseURL)
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

// Absolute builds the fully qualified URL for a named route against
// BaseURL.
func (r *Resolver) Absolute(locale, name string, params map[string]string) (string, error) {
	return r.build(locale, name, params)
}

// TemplateHelpers exposes the resolver as template functions. The map
// registers "route" and "absRoute"; both take a locale, a route name, and
// alternating key/value parameter pairs.
func (r *Resolver) TemplateHelpers() map[string]any {
	return map[string]any{
		"route": func(locale, name string, pairs ...string) (string, error) {
			params, err := pairsToParams(pairs)
			if err != nil {
				return "", err
			}
			return r.Path(locale, name, params)
		},
		"absRoute": func(locale, name string, pairs ...string) (string, error) {
			params, err := pairsToParams(pairs)
			if err != nil {
				return "", err
			}
			return r.Absolute(locale, name, params)
		},
	}
}

func (r *Resolver) build(locale, name string, params map[string]string) (string, error) {
	if _, ok := r.paths[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}

	group, err := r.groupFor(locale)
	if err != nil {
		return "", err
	}

	builder, err := safeBuilder(group, name)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}

	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("routes: build %q: %w", name, err)
	}
	if trimmed := strings.TrimSuffix(url, "/"); trimmed != "" {
		url = trimmed
	}
	return url, nil
}

func (r *Resolver) groupFor(locale string) (*urlkit.Group, error) {
	groupPath := r.localeGroups[normalizeLocale(locale)]
	if groupPath == "" {
		groupPath = DefaultGroup
	}

	r.mu.RLock()
	group, ok := r.groupCache[groupPath]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(groupPath, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[groupPath] = current
	r.mu.Unlock()
	return current, nil
}

// The urlkit manager panics on unknown groups and routes; these wrappers
// convert the panics into errors. Named returns keep the error visible
// after recover.

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, errors.New("routes: route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %q", ErrUnknownRoute, route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, errors.New("routes: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, errors.New("routes: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}

func pairsToParams(pairs []string) (map[string]string, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("routes: want key/value pairs, got %d values", len(pairs))
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		params[pairs[i]] = pairs[i+1]
	}
	return params, nil
}

func clonePaths(paths map[string]string) map[string]string {
	clone := make(map[string]string, len(paths))
	for name, path := range paths {
		clone[name] = path
	}
	return clone
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}
