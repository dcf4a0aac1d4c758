package i18n

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// DefaultTemplateHelperKey names the translate helper registered with renderers.
const DefaultTemplateHelperKey = "translate"

// Service resolves translations with locale fallback. It extends the shared
// contract with lookup metadata and catalogue verification.
type Service interface {
	interfaces.Service
	Translate(locale, key string, args ...any) (string, error)
	Lookup(locale, key string) Resolution
	Keys(locale string) []string
	Verify(ctx context.Context) error
}

// Resolution describes how a key resolved through the fallback chain.
type Resolution struct {
	Value           string
	RequestedLocale string
	ResolvedLocale  string
	FallbackUsed    bool
	Missing         bool
}

// Dependencies wires collaborators into the service.
type Dependencies struct {
	Repository Repository
	Logger     interfaces.Logger
}

type service struct {
	config   Config
	catalogs map[string]map[string]string
	logger   interfaces.Logger
}

// NewInMemoryService builds a service over a translation snapshot. The
// snapshot is cloned so callers cannot mutate resolved catalogues.
func NewInMemoryService(cfg Config, translations map[string]map[string]string) (Service, error) {
	if cfg.normalizedDefault() == "" {
		return nil, ErrDefaultLocaleRequired
	}

	catalogs := make(map[string]map[string]string, len(translations))
	for locale, catalog := range translations {
		normalized := NormalizeLocale(locale)
		if normalized == "" {
			continue
		}
		entries := make(map[string]string, len(catalog))
		for key, value := range catalog {
			entries[key] = value
		}
		catalogs[normalized] = entries
	}

	return &service{
		config:   cfg,
		catalogs: catalogs,
		logger:   logging.NoOp(),
	}, nil
}

// NewService builds a service by loading every configured locale's catalogue
// from the repository. Locales without stored translations participate in
// fallback resolution with an empty catalogue.
func NewService(ctx context.Context, cfg Config, deps Dependencies) (Service, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("i18n: repository is required")
	}
	if cfg.normalizedDefault() == "" {
		return nil, ErrDefaultLocaleRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	stored, err := deps.Repository.Locales(ctx)
	if err != nil {
		return nil, fmt.Errorf("i18n: list locales: %w", err)
	}

	wanted := make([]string, 0, len(cfg.Locales)+len(stored)+1)
	wanted = append(wanted, cfg.DefaultLocale)
	wanted = append(wanted, cfg.Locales...)
	wanted = append(wanted, stored...)

	catalogs := make(map[string]map[string]string)
	for _, locale := range wanted {
		normalized := NormalizeLocale(locale)
		if normalized == "" {
			continue
		}
		if _, ok := catalogs[normalized]; ok {
			continue
		}
		catalog, err := deps.Repository.Catalog(ctx, normalized)
		if err != nil {
			if errors.Is(err, ErrLocaleNotFound) {
				continue
			}
			return nil, fmt.Errorf("i18n: load catalogue %s: %w", normalized, err)
		}
		catalogs[normalized] = catalog
		logger.Debug("i18n.catalog.loaded", "locale", normalized, "keys", len(catalog))
	}

	return &service{
		config:   cfg,
		catalogs: catalogs,
		logger:   logger,
	}, nil
}

func (s *service) DefaultLocale() string {
	return s.config.normalizedDefault()
}

// Locales returns the configured locale codes, normalised and deduplicated,
// with the default locale first.
func (s *service) Locales() []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(s.config.Locales)+1)

	appendLocale := func(locale string) {
		normalized := NormalizeLocale(locale)
		if normalized == "" || seen[normalized] {
			return
		}
		seen[normalized] = true
		out = append(out, normalized)
	}

	appendLocale(s.config.DefaultLocale)
	for _, locale := range s.config.Locales {
		appendLocale(locale)
	}
	return out
}

func (s *service) Translator() interfaces.Translator {
	return s
}

// Lookup resolves key through the fallback chain: the requested locale, its
// base locale for regional tags, then the default locale.
func (s *service) Lookup(locale, key string) Resolution {
	requested := NormalizeLocale(locale)
	res := Resolution{RequestedLocale: requested}

	if requested == "" {
		requested = s.DefaultLocale()
	}

	chain := []string{requested}
	if base := BaseLocale(requested); base != "" {
		chain = append(chain, base)
	}
	if defaultLocale := s.DefaultLocale(); defaultLocale != "" && defaultLocale != requested {
		chain = append(chain, defaultLocale)
	}

	for i, candidate := range chain {
		catalog, ok := s.catalogs[candidate]
		if !ok {
			continue
		}
		value, ok := catalog[key]
		if !ok {
			continue
		}
		res.Value = value
		res.ResolvedLocale = candidate
		res.FallbackUsed = i > 0 || res.RequestedLocale == ""
		return res
	}

	res.Missing = true
	return res
}

func (s *service) Translate(locale, key string, args ...any) (string, error) {
	res := s.Lookup(locale, key)
	if res.Missing {
		return "", &NotFoundError{Locale: res.RequestedLocale, Key: key}
	}
	if len(args) > 0 {
		return fmt.Sprintf(res.Value, args...), nil
	}
	return res.Value, nil
}

// Keys lists the keys stored directly in the locale's catalogue, without
// fallback, in sorted order.
func (s *service) Keys(locale string) []string {
	catalog, ok := s.catalogs[NormalizeLocale(locale)]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s *service) TemplateHelpers(cfg interfaces.HelperConfig) map[string]any {
	helperKey := strings.TrimSpace(cfg.TemplateHelperKey)
	if helperKey == "" {
		helperKey = DefaultTemplateHelperKey
	}

	onMissing := cfg.OnMissing
	if onMissing == nil {
		logger := s.logger
		onMissing = func(locale, key string, _ []any, _ error) string {
			logger.Warn("i18n.translation.missing", "locale", locale, "key", key)
			return key
		}
	}

	helpers := map[string]any{
		helperKey: func(locale, key string, args ...any) string {
			value, err := s.Translate(locale, key, args...)
			if err != nil {
				return onMissing(locale, key, args, err)
			}
			return value
		},
	}

	if cfg.Registry != nil {
		for name, fn := range cfg.Registry.FuncMap(s.DefaultLocale()) {
			if _, taken := helpers[name]; taken {
				continue
			}
			helpers[name] = fn
		}
	}

	return helpers
}

// NoOpService satisfies the service contract while translating nothing.
// Templates render raw keys, which keeps disabled-i18n sites functional.
type NoOpService struct{}

func NewNoOpService() Service {
	return NoOpService{}
}

func (NoOpService) Translator() interfaces.Translator {
	return noopTranslator{}
}

func (NoOpService) TemplateHelpers(cfg interfaces.HelperConfig) map[string]any {
	helperKey := strings.TrimSpace(cfg.TemplateHelperKey)
	if helperKey == "" {
		helperKey = DefaultTemplateHelperKey
	}
	return map[string]any{
		helperKey: func(_ string, key string, _ ...any) string {
			return key
		},
	}
}

func (NoOpService) DefaultLocale() string {
	return ""
}

func (NoOpService) Locales() []string {
	return nil
}

func (NoOpService) Translate(_ string, key string, _ ...any) (string, error) {
	return key, nil
}

func (NoOpService) Lookup(locale, key string) Resolution {
	return Resolution{
		RequestedLocale: NormalizeLocale(locale),
		Missing:         true,
	}
}

func (NoOpService) Keys(string) []string {
	return nil
}

func (NoOpService) Verify(context.Context) error {
	return nil
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	return key, nil
}
