package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMarkdownRequired = errors.New("content: markdown service is required")
	ErrNotLoaded        = errors.New("content: tree not loaded")
	ErrSlugInvalid      = errors.New("content: slug contains invalid characters")
	ErrDuplicateSlug    = errors.New("content: duplicate slug")
)

// NotFoundError represents missing records from content lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// DuplicateSlugError reports two source files resolving to the same slug for
// one locale. Both paths are carried so the author knows which file to rename.
type DuplicateSlugError struct {
	Slug         string
	Locale       string
	Path         string
	ExistingPath string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("content: duplicate slug %q for locale %s (%s and %s)", e.Slug, e.Locale, e.ExistingPath, e.Path)
}

func (e *DuplicateSlugError) Unwrap() error { return ErrDuplicateSlug }

// VerifyIssue describes a document that fails the content contract.
type VerifyIssue struct {
	Source string
	Field  string
	Reason string
}

// VerifyError aggregates contract violations discovered while loading.
type VerifyError struct {
	Issues []VerifyIssue
}

func (e *VerifyError) Error() string {
	if len(e.Issues) == 1 {
		issue := e.Issues[0]
		return fmt.Sprintf("content: %s: %s %s", issue.Source, issue.Field, issue.Reason)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "content: %d document issue(s)", len(e.Issues))
	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "\n  %s: %s %s", issue.Source, issue.Field, issue.Reason)
	}
	return b.String()
}
