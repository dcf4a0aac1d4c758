package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func TestBunDocumentArchive_RecordUpserts(t *testing.T) {
	db := newArchiveTestDB(t)
	archive := NewBunDocumentArchive(db)
	ctx := context.Background()

	doc := &ArchivedDocument{
		ID:           identity.DocumentUUID("hello-world", "en"),
		Source:       "posts/hello-world.md",
		Kind:         KindPost,
		Slug:         "hello-world",
		Locale:       "en",
		Title:        "Hello World",
		Checksum:     "aabbcc",
		LastModified: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		RecordedAt:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	if _, err := archive.Record(ctx, doc); err != nil {
		t.Fatalf("Record() insert error = %v", err)
	}

	doc.Checksum = "ddeeff"
	doc.Title = "Hello World, Again"
	if _, err := archive.Record(ctx, doc); err != nil {
		t.Fatalf("Record() update error = %v", err)
	}

	stored, err := archive.GetBySource(ctx, "posts/hello-world.md")
	if err != nil {
		t.Fatalf("GetBySource() error = %v", err)
	}
	if stored.Checksum != "ddeeff" || stored.Title != "Hello World, Again" {
		t.Fatalf("expected updated snapshot, got %#v", stored)
	}

	records, err := archive.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single archived row, got %d", len(records))
	}
}

func TestBunDocumentArchive_GetBySourceMissing(t *testing.T) {
	db := newArchiveTestDB(t)
	archive := NewBunDocumentArchive(db)

	_, err := archive.GetBySource(context.Background(), "posts/missing.md")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Resource != "document" {
		t.Fatalf("expected document NotFoundError, got %v", err)
	}
}

func newArchiveTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := testsupport.NewSQLiteBunDB("content_archive_test")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*ArchivedDocument)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.NewDelete().Model((*ArchivedDocument)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		t.Fatalf("reset table: %v", err)
	}
	return db
}
