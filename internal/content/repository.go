package content

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewDocumentRepository(db *bun.DB) repository.Repository[*ArchivedDocument] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ArchivedDocument]{
		NewRecord: func() *ArchivedDocument { return &ArchivedDocument{} },
		GetID: func(d *ArchivedDocument) uuid.UUID {
			return d.ID
		},
		SetID: func(d *ArchivedDocument, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "source"
		},
		GetIdentifierValue: func(d *ArchivedDocument) string {
			return d.Source
		},
	})
}
