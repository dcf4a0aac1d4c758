package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentArchive persists document snapshots between builds.
type DocumentArchive interface {
	Record(ctx context.Context, doc *ArchivedDocument) (*ArchivedDocument, error)
	GetBySource(ctx context.Context, source string) (*ArchivedDocument, error)
	List(ctx context.Context) ([]*ArchivedDocument, error)
}

// EnsureArchiveSchema creates the archive table. The DI container runs
// this for database handles it opens itself; hosts injecting their own
// handle manage migrations on their side.
func EnsureArchiveSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("content: archive schema requires a database")
	}
	_, err := db.NewCreateTable().
		Model((*ArchivedDocument)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

type BunDocumentArchive struct {
	repo repository.Repository[*ArchivedDocument]
}

func NewBunDocumentArchive(db *bun.DB) *BunDocumentArchive {
	return NewBunDocumentArchiveWithCache(db, nil, nil)
}

func NewBunDocumentArchiveWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunDocumentArchive {
	base := NewDocumentRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunDocumentArchive{repo: wrapped}
}

// Record upserts the snapshot keyed by its deterministic ID.
func (r *BunDocumentArchive) Record(ctx context.Context, doc *ArchivedDocument) (*ArchivedDocument, error) {
	existing, err := r.repo.GetByID(ctx, doc.ID.String())
	if err != nil {
		if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("document repository error: %w", err)
		}
		created, err := r.repo.Create(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("document repository error: %w", err)
		}
		return created, nil
	}

	doc.ID = existing.ID
	updated, err := r.repo.Update(ctx, doc,
		repository.UpdateByID(doc.ID.String()),
		repository.UpdateColumns(
			"source",
			"kind",
			"slug",
			"locale",
			"title",
			"checksum",
			"last_modified",
			"recorded_at",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("document repository error: %w", err)
	}
	return updated, nil
}

func (r *BunDocumentArchive) GetBySource(ctx context.Context, source string) (*ArchivedDocument, error) {
	result, err := r.repo.GetByIdentifier(ctx, source)
	if err != nil {
		return nil, mapRepositoryError(err, "document", source)
	}
	return result, nil
}

func (r *BunDocumentArchive) List(ctx context.Context) ([]*ArchivedDocument, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("document repository error: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

// MemoryDocumentArchive is an in-memory archive for scaffolding and tests.
type MemoryDocumentArchive struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*ArchivedDocument
}

// NewMemoryDocumentArchive creates an empty in-memory archive.
func NewMemoryDocumentArchive() *MemoryDocumentArchive {
	return &MemoryDocumentArchive{
		docs: make(map[uuid.UUID]*ArchivedDocument),
	}
}

func (m *MemoryDocumentArchive) Record(_ context.Context, doc *ArchivedDocument) (*ArchivedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *doc
	m.docs[doc.ID] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryDocumentArchive) GetBySource(_ context.Context, source string) (*ArchivedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs {
		if doc.Source == source {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "document", Key: source}
}

func (m *MemoryDocumentArchive) List(_ context.Context) ([]*ArchivedDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ArchivedDocument, 0, len(m.docs))
	for _, doc := range m.docs {
		copied := *doc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}
