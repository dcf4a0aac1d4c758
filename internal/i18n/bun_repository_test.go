package i18n

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/pkg/testsupport"
)

func TestBunRepository_CatalogRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Catalog(ctx, "en"); !errors.Is(err, ErrLocaleNotFound) {
		t.Fatalf("expected ErrLocaleNotFound, got %v", err)
	}

	seed := map[string]map[string]string{
		"en": {"nav.home": "Home", "nav.blog": "Blog"},
		"de": {"nav.home": "Startseite"},
	}
	if err := repo.Seed(ctx, seed); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	catalog, err := repo.Catalog(ctx, "EN")
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(catalog) != 2 || catalog["nav.home"] != "Home" {
		t.Fatalf("Catalog() returned %v", catalog)
	}

	locales, err := repo.Locales(ctx)
	if err != nil {
		t.Fatalf("Locales() error = %v", err)
	}
	if len(locales) != 2 || locales[0] != "de" || locales[1] != "en" {
		t.Fatalf("Locales() returned %v", locales)
	}
}

func TestBunRepository_UpsertReplacesValue(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, "en", "nav.home", "Home"); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if err := repo.Upsert(ctx, "en", "nav.home", "Start"); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}

	catalog, err := repo.Catalog(ctx, "en")
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if catalog["nav.home"] != "Start" {
		t.Fatalf("expected updated value, got %q", catalog["nav.home"])
	}
}

func TestBunRepository_DeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)

	err := repo.Delete(context.Background(), "en", "nav.missing")
	if !errors.Is(err, ErrTranslationNotFound) {
		t.Fatalf("expected ErrTranslationNotFound, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := testsupport.NewSQLiteBunDB("i18n_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*translationModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.NewDelete().Model((*translationModel)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	return db
}
