package i18n

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository stores translation catalogues in-memory. Reads return
// copies so callers can mutate results without corrupting the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		catalogs: make(map[string]map[string]string),
	}
}

// NewMemoryRepositoryFromCatalogs seeds a repository with the provided
// translations, normalising locale codes along the way.
func NewMemoryRepositoryFromCatalogs(translations map[string]map[string]string) *MemoryRepository {
	repo := NewMemoryRepository()
	repo.ReplaceAll(translations)
	return repo
}

// ReplaceAll swaps the stored catalogues with the provided set.
func (r *MemoryRepository) ReplaceAll(translations map[string]map[string]string) {
	copied := make(map[string]map[string]string, len(translations))
	for locale, catalog := range translations {
		normalized := NormalizeLocale(locale)
		if normalized == "" {
			continue
		}
		entries := make(map[string]string, len(catalog))
		for key, value := range catalog {
			entries[key] = value
		}
		copied[normalized] = entries
	}

	r.mu.Lock()
	r.catalogs = copied
	r.mu.Unlock()
}

// Catalog returns a copy of the catalogue for locale or ErrLocaleNotFound.
func (r *MemoryRepository) Catalog(_ context.Context, locale string) (map[string]string, error) {
	normalized := NormalizeLocale(locale)

	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, ok := r.catalogs[normalized]
	if !ok {
		return nil, ErrLocaleNotFound
	}
	copied := make(map[string]string, len(catalog))
	for key, value := range catalog {
		copied[key] = value
	}
	return copied, nil
}

// Locales lists stored locale codes in sorted order.
func (r *MemoryRepository) Locales(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	locales := make([]string, 0, len(r.catalogs))
	for locale := range r.catalogs {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales, nil
}

// Upsert stores a single translation, creating the catalogue when needed.
func (r *MemoryRepository) Upsert(_ context.Context, locale, key, value string) error {
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return ErrLocaleNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, ok := r.catalogs[normalized]
	if !ok {
		catalog = make(map[string]string)
		r.catalogs[normalized] = catalog
	}
	catalog[key] = value
	return nil
}

// Delete removes a single translation.
func (r *MemoryRepository) Delete(_ context.Context, locale, key string) error {
	normalized := NormalizeLocale(locale)

	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, ok := r.catalogs[normalized]
	if !ok {
		return ErrLocaleNotFound
	}
	if _, ok := catalog[key]; !ok {
		return &NotFoundError{Locale: normalized, Key: key}
	}
	delete(catalog, key)
	return nil
}
