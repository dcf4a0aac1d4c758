package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ThemingConfig controls theme selection and the theme context handed to
// templates.
type ThemingConfig struct {
	BasePath          string
	DefaultTheme      string
	DefaultVariant    string
	CSSVariablePrefix string
	// PartialFallbacks maps partial keys to the template path used when
	// the theme manifest does not override them.
	PartialFallbacks map[string]string
}

// Theme identifies a theme directory under the configured base path.
type Theme struct {
	Name    string
	Path    string
	Version string
}

// themeFromConfig resolves the active theme directory. A blank config means
// the site renders without a theme context.
func themeFromConfig(cfg ThemingConfig) *Theme {
	name := strings.TrimSpace(cfg.DefaultTheme)
	if name == "" {
		return nil
	}
	base := strings.TrimSpace(cfg.BasePath)
	if base == "" {
		base = "themes"
	}
	return &Theme{
		Name: name,
		Path: filepath.Join(base, name),
	}
}

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

type themeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         themeManifestLoader
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

func newThemeSelector(cfg ThemingConfig, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultTheme:   strings.TrimSpace(cfg.DefaultTheme),
		defaultVariant: strings.TrimSpace(cfg.DefaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

func (s *themeSelector) Selection(theme *Theme, variant string) (*gotheme.Selection, error) {
	if theme == nil {
		return nil, nil
	}

	manifest, err := s.ensureManifest(theme)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		// Theme directory without a manifest: templates still render,
		// but there is no variant or asset selection to resolve.
		return nil, nil
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(theme.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", theme.Name, err)
	}
	return selection, nil
}

func (s *themeSelector) ensureManifest(theme *Theme) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(theme.Name))
	if manifest, ok := s.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(theme.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.manifests[key] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("load theme manifest from %s: %w", theme.Path, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, theme.Name) {
		normalized.Name = strings.TrimSpace(theme.Name)
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(theme.Version)
	}
	if normalized.Name == "" {
		return nil, fmt.Errorf("theme name required for manifest registration")
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return &normalized, nil
}
