// Package content re-exports the content tree service, its document
// models, and the slug helpers so host applications can work with
// loaded documents without importing internal packages.
package content

import (
	"time"

	internal "github.com/goliatone/go-folio/internal/content"
)

// Service exposes the loaded content tree: posts, pages, projects, and
// tags per locale, plus the verification pass the generator runs
// before every build.
type Service = internal.Service

// Config controls where documents live and which locales are served.
type Config = internal.Config

// Dependencies carries the collaborators the service needs.
type Dependencies = internal.Dependencies

// ServiceOption configures the service at construction time.
type ServiceOption = internal.ServiceOption

// Document models returned by the service.
type (
	Post    = internal.Post
	Page    = internal.Page
	Project = internal.Project
	Tag     = internal.Tag
)

// DocumentArchive persists document snapshots between builds.
type DocumentArchive = internal.DocumentArchive

// ArchivedDocument is a single archived snapshot row.
type ArchivedDocument = internal.ArchivedDocument

// Document kinds recorded in the archive.
const (
	KindPost = internal.KindPost
	KindPage = internal.KindPage
)

// Errors surfaced by content loading and lookups.
var (
	ErrMarkdownRequired = internal.ErrMarkdownRequired
	ErrNotLoaded        = internal.ErrNotLoaded
	ErrSlugInvalid      = internal.ErrSlugInvalid
	ErrDuplicateSlug    = internal.ErrDuplicateSlug
)

type (
	NotFoundError      = internal.NotFoundError
	DuplicateSlugError = internal.DuplicateSlugError
	VerifyIssue        = internal.VerifyIssue
	VerifyError        = internal.VerifyError
)

// NewService constructs the content tree service.
func NewService(cfg Config, deps Dependencies, opts ...ServiceOption) (Service, error) {
	return internal.NewService(cfg, deps, opts...)
}

// WithClock overrides the clock used to stamp archive records.
func WithClock(clock func() time.Time) ServiceOption {
	return internal.WithClock(clock)
}

// NewMemoryDocumentArchive returns an in-memory archive, useful for
// hosts that want snapshot diffs without a database.
func NewMemoryDocumentArchive() DocumentArchive {
	return internal.NewMemoryDocumentArchive()
}
