package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is a blog entry backed by a Markdown document.
type Post struct {
	ID           uuid.UUID      `json:"id"`
	Slug         string         `json:"slug"`
	Locale       string         `json:"locale"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Date         time.Time      `json:"date"`
	Tags         []string       `json:"tags,omitempty"`
	Draft        bool           `json:"draft"`
	Author       string         `json:"author,omitempty"`
	Template     string         `json:"template,omitempty"`
	BodyHTML     string         `json:"body_html"`
	Source       string         `json:"source"`
	Checksum     []byte         `json:"checksum,omitempty"`
	LastModified time.Time      `json:"last_modified"`
	Extra        map[string]any `json:"extra,omitempty"`
	// Fallback marks a post served from the default locale because no
	// translation exists for the requested one.
	Fallback bool `json:"fallback,omitempty"`
}

// Page is a static page (home, about, projects) backed by a Markdown document.
type Page struct {
	ID           uuid.UUID      `json:"id"`
	Slug         string         `json:"slug"`
	Locale       string         `json:"locale"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Template     string         `json:"template,omitempty"`
	BodyHTML     string         `json:"body_html"`
	Source       string         `json:"source"`
	Checksum     []byte         `json:"checksum,omitempty"`
	LastModified time.Time      `json:"last_modified"`
	Extra        map[string]any `json:"extra,omitempty"`
	Fallback     bool           `json:"fallback,omitempty"`
}

// Project is a portfolio entry sourced from the projects data file.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Tech        []string  `json:"tech,omitempty"`
	Repo        string    `json:"repo,omitempty"`
	LiveURL     string    `json:"live_url,omitempty"`
	Year        int       `json:"year,omitempty"`
	Featured    bool      `json:"featured"`
	Weight      int       `json:"weight,omitempty"`
	// DescriptionI18N overrides Description per locale.
	DescriptionI18N map[string]string `json:"description_i18n,omitempty"`
}

// Tag groups the published posts carrying a given tag, newest first.
type Tag struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Slug  string    `json:"slug"`
	Posts []*Post   `json:"posts"`
}

// ArchivedDocument is the persisted snapshot of a loaded Markdown document.
// Hosts with a bun.DB attached get one row per (slug, locale) source file so
// successive builds can be compared outside the generator.
type ArchivedDocument struct {
	bun.BaseModel `bun:"table:folio_documents,alias:fd"`

	ID           uuid.UUID `bun:",pk,type:uuid"        json:"id"`
	Source       string    `bun:"source,notnull"       json:"source"`
	Kind         string    `bun:"kind,notnull"         json:"kind"`
	Slug         string    `bun:"slug,notnull"         json:"slug"`
	Locale       string    `bun:"locale,notnull"       json:"locale"`
	Title        string    `bun:"title"                json:"title"`
	Checksum     string    `bun:"checksum,notnull"     json:"checksum"`
	LastModified time.Time `bun:"last_modified,nullzero" json:"last_modified"`
	RecordedAt   time.Time `bun:"recorded_at,nullzero,default:current_timestamp" json:"recorded_at"`
}

// Document kinds recorded in the archive.
const (
	KindPost = "post"
	KindPage = "page"
)

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Tags = append([]string(nil), src.Tags...)
	copied.Checksum = append([]byte(nil), src.Checksum...)
	copied.Extra = cloneMap(src.Extra)
	return &copied
}

func clonePage(src *Page) *Page {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Checksum = append([]byte(nil), src.Checksum...)
	copied.Extra = cloneMap(src.Extra)
	return &copied
}

func cloneProject(src *Project) *Project {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Tech = append([]string(nil), src.Tech...)
	if src.DescriptionI18N != nil {
		copied.DescriptionI18N = make(map[string]string, len(src.DescriptionI18N))
		for locale, value := range src.DescriptionI18N {
			copied.DescriptionI18N[locale] = value
		}
	}
	return &copied
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
