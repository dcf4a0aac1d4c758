package i18n

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists translation catalogues using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// EnsureTranslationSchema creates the translations table. The DI container
// runs this for database handles it opens itself.
func EnsureTranslationSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("i18n: translation schema requires a database")
	}
	_, err := db.NewCreateTable().
		Model((*translationModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Catalog returns every translation stored for locale.
func (r *BunRepository) Catalog(ctx context.Context, locale string) (map[string]string, error) {
	if r.db == nil {
		return nil, errors.New("i18n: bun repository requires a database")
	}
	normalized := NormalizeLocale(locale)

	var models []translationModel
	if err := r.db.NewSelect().
		Model(&models).
		Where("locale = ?", normalized).
		Scan(ctx); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrLocaleNotFound
	}

	catalog := make(map[string]string, len(models))
	for i := range models {
		catalog[models[i].Key] = models[i].Value
	}
	return catalog, nil
}

// Locales lists the distinct locale codes with stored translations.
func (r *BunRepository) Locales(ctx context.Context) ([]string, error) {
	if r.db == nil {
		return nil, errors.New("i18n: bun repository requires a database")
	}
	var locales []string
	if err := r.db.NewSelect().
		Model((*translationModel)(nil)).
		ColumnExpr("DISTINCT locale").
		OrderExpr("locale ASC").
		Scan(ctx, &locales); err != nil {
		return nil, err
	}
	return locales, nil
}

// Upsert creates or replaces a single translation row.
func (r *BunRepository) Upsert(ctx context.Context, locale, key, value string) error {
	if r.db == nil {
		return errors.New("i18n: bun repository requires a database")
	}
	normalized := NormalizeLocale(locale)
	if normalized == "" {
		return ErrLocaleNotFound
	}

	model := translationModel{
		ID:        identity.TranslationUUID(normalized, key),
		Locale:    normalized,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	var existing translationModel
	err := r.db.NewSelect().Model(&existing).Where("id = ?", model.ID).Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		_, err = r.db.NewInsert().Model(&model).Exec(ctx)
		return err
	}

	_, err = r.db.NewUpdate().
		Model(&model).
		Column("value", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// Delete removes a single translation row.
func (r *BunRepository) Delete(ctx context.Context, locale, key string) error {
	if r.db == nil {
		return errors.New("i18n: bun repository requires a database")
	}
	normalized := NormalizeLocale(locale)

	var model translationModel
	err := r.db.NewSelect().
		Model(&model).
		Where("id = ?", identity.TranslationUUID(normalized, key)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &NotFoundError{Locale: normalized, Key: key}
		}
		return err
	}
	_, err = r.db.NewDelete().Model(&model).WherePK().Exec(ctx)
	return err
}

// Seed bulk-loads catalogues, typically from a fixture or bundle directory.
func (r *BunRepository) Seed(ctx context.Context, translations map[string]map[string]string) error {
	for locale, catalog := range translations {
		for key, value := range catalog {
			if err := r.Upsert(ctx, locale, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

type translationModel struct {
	bun.BaseModel `bun:"table:folio_translations"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Locale    string    `bun:"locale"`
	Key       string    `bun:"key"`
	Value     string    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at"`
}
