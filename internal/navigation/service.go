// Package navigation resolves configured menus into localized navigation
// items. Menu entries reference named routes and translation keys; the
// service validates both up front so broken menus fail the build instead
// of rendering dead links.
package navigation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	// ErrRoutesRequired is returned when a service is constructed without
	// a route resolver.
	ErrRoutesRequired = errors.New("navigation: route resolver required")

	// ErrUnknownMenu is returned when Build is asked for a menu code that
	// is not configured.
	ErrUnknownMenu = errors.New("navigation: unknown menu")

	// ErrInvalidMenu is returned when configured entries reference routes
	// or labels that cannot resolve.
	ErrInvalidMenu = errors.New("navigation: invalid menu configuration")
)

// RouteResolver is the slice of the route table the menu builder needs.
type RouteResolver interface {
	Path(locale, name string, params map[string]string) (string, error)
	Has(name string) bool
}

// Translator resolves menu labels per locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// ItemConfig declares one configured menu entry. Label holds a translation
// key. Hidden entries stay configured but are never built.
type ItemConfig struct {
	Label  string
	Route  string
	Weight int
	Hidden bool
}

// Config maps menu codes to their entries. Entries are ordered by Weight,
// ties keep configuration order.
type Config struct {
	Menus map[string][]ItemConfig
}

// Item is a resolved navigation entry for one locale.
type Item struct {
	Label  string
	Route  string
	Path   string
	Weight int
	Active bool
}

// Service builds localized menus from configuration.
type Service interface {
	// Build resolves the named menu for a locale. currentPath marks the
	// matching item (and its section) active; pass "" to skip marking.
	Build(menu, locale, currentPath string) ([]Item, error)

	// Menus lists the configured menu codes, sorted.
	Menus() []string

	// Verify checks every configured entry against the route table.
	Verify() error
}

// Dependencies carries the collaborating services.
type Dependencies struct {
	Routes     RouteResolver
	Translator Translator
	Logger     interfaces.Logger
}

type service struct {
	menus      map[string][]ItemConfig
	routes     RouteResolver
	translator Translator
	logger     interfaces.Logger
}

// NewService validates the menu configuration against the route table and
// returns the builder. Configuration errors surface here, not at render
// time.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Routes == nil {
		return nil, ErrRoutesRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	menus := make(map[string][]ItemConfig, len(cfg.Menus))
	for code, items := range cfg.Menus {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		cloned := make([]ItemConfig, len(items))
		copy(cloned, items)
		sort.SliceStable(cloned, func(i, j int) bool {
			return cloned[i].Weight < cloned[j].Weight
		})
		menus[code] = cloned
	}

	svc := &service{
		menus:      menus,
		routes:     deps.Routes,
		translator: deps.Translator,
		logger:     logger,
	}
	if err := svc.Verify(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *service) Build(menu, locale, currentPath string) ([]Item, error) {
	entries, ok := s.menus[strings.TrimSpace(menu)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMenu, menu)
	}

	currentPath = normalizePath(currentPath)
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Hidden {
			continue
		}

		path, err := s.routes.Path(locale, entry.Route, nil)
		if err != nil {
			return nil, fmt.Errorf("navigation: menu %q item %q: %w", menu, entry.Label, err)
		}

		items = append(items, Item{
			Label:  s.label(locale, entry.Label),
			Route:  entry.Route,
			Path:   path,
			Weight: entry.Weight,
			Active: isActive(normalizePath(path), currentPath),
		})
	}
	return items, nil
}

func (s *service) Menus() []string {
	codes := make([]string, 0, len(s.menus))
	for code := range s.menus {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *service) Verify() error {
	var issues []string
	for _, code := range s.Menus() {
		for i, entry := range s.menus[code] {
			if strings.TrimSpace(entry.Label) == "" {
				issues = append(issues, fmt.Sprintf("menu %q entry %d: label key required", code, i))
			}
			route := strings.TrimSpace(entry.Route)
			if route == "" {
				issues = append(issues, fmt.Sprintf("menu %q entry %d: route required", code, i))
				continue
			}
			if !s.routes.Has(route) {
				issues = append(issues, fmt.Sprintf("menu %q entry %d: unknown route %q", code, i, route))
			}
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMenu, strings.Join(issues, "; "))
	}
	return nil
}

func (s *service) label(locale, key string) string {
	key = strings.TrimSpace(key)
	if key == "" || s.translator == nil {
		return key
	}
	value, err := s.translator.Translate(locale, key)
	if err != nil {
		s.logger.Warn("navigation.label.missing", "locale", locale, "key", key)
		return key
	}
	return value
}

// MarkActive clones items with Active recomputed against currentPath. Callers
// that cache a menu per locale use this to mark the current page per render.
func MarkActive(items []Item, currentPath string) []Item {
	if len(items) == 0 {
		return nil
	}
	currentPath = normalizePath(currentPath)
	marked := make([]Item, len(items))
	for i, item := range items {
		item.Active = isActive(normalizePath(item.Path), currentPath)
		marked[i] = item
	}
	return marked
}

// MarkActiveAll applies MarkActive to every menu in an alias map.
func MarkActiveAll(menus map[string][]Item, currentPath string) map[string][]Item {
	if len(menus) == 0 {
		return nil
	}
	marked := make(map[string][]Item, len(menus))
	for alias, items := range menus {
		marked[alias] = MarkActive(items, currentPath)
	}
	return marked
}

// isActive marks exact matches and section descendants. The root path only
// matches itself, otherwise every item would light up on every page.
func isActive(itemPath, currentPath string) bool {
	if currentPath == "" {
		return false
	}
	if itemPath == currentPath {
		return true
	}
	if itemPath == "/" {
		return false
	}
	return strings.HasPrefix(currentPath, itemPath+"/")
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return path
	}
	return strings.TrimSuffix(path, "/")
}
