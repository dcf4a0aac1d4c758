package i18n

import "context"

// Repository persists translation catalogues keyed by locale.
type Repository interface {
	Catalog(ctx context.Context, locale string) (map[string]string, error)
	Locales(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, locale, key, value string) error
	Delete(ctx context.Context, locale, key string) error
}
