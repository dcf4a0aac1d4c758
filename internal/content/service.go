package content

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Service exposes the loaded content tree: posts, pages, projects, and the
// derived tag index, with default-locale fallback on every lookup.
type Service interface {
	LoadTree(ctx context.Context) error
	Posts(ctx context.Context, locale string) ([]*Post, error)
	Post(ctx context.Context, locale, slug string) (*Post, error)
	Pages(ctx context.Context, locale string) ([]*Page, error)
	Page(ctx context.Context, locale, slug string) (*Page, error)
	Projects(ctx context.Context, locale string) ([]*Project, error)
	Tags(ctx context.Context, locale string) ([]*Tag, error)
	Verify(ctx context.Context) error
	DefaultLocale() string
	Locales() []string
}

// Config controls where documents live and which locales are served.
type Config struct {
	PagesDir      string
	PostsDir      string
	ProjectsPath  string
	DefaultLocale string
	Locales       []string
	IncludeDrafts bool
}

// Dependencies carries the collaborators required by the service. Markdown is
// mandatory; DataFS feeds the projects file, Archive and Logger are optional.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	DataFS   fs.FS
	Archive  DocumentArchive
	Logger   interfaces.Logger
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp archive records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type service struct {
	cfg      Config
	markdown interfaces.MarkdownService
	dataFS   fs.FS
	archive  DocumentArchive
	logger   interfaces.Logger
	now      func() time.Time

	mu       sync.RWMutex
	loaded   bool
	posts    map[string]map[string]*Post
	pages    map[string]map[string]*Page
	projects []*Project
	issues   []VerifyIssue
}

// NewService constructs the content service.
func NewService(cfg Config, deps Dependencies, opts ...ServiceOption) (Service, error) {
	if deps.Markdown == nil {
		return nil, ErrMarkdownRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	cfg.DefaultLocale = strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	for i, locale := range cfg.Locales {
		cfg.Locales[i] = strings.ToLower(strings.TrimSpace(locale))
	}

	s := &service{
		cfg:      cfg,
		markdown: deps.Markdown,
		dataFS:   deps.DataFS,
		archive:  deps.Archive,
		logger:   logger,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *service) DefaultLocale() string {
	return s.cfg.DefaultLocale
}

func (s *service) Locales() []string {
	locales := make([]string, 0, len(s.cfg.Locales)+1)
	locales = append(locales, s.cfg.DefaultLocale)
	for _, locale := range s.cfg.Locales {
		if locale == s.cfg.DefaultLocale {
			continue
		}
		locales = append(locales, locale)
	}
	return locales
}

// LoadTree walks the configured directories and rebuilds the in-memory tree.
// The build is all-or-nothing: on error the previously loaded tree survives.
func (s *service) LoadTree(ctx context.Context) error {
	start := s.now()

	posts, postIssues, err := s.loadPosts(ctx)
	if err != nil {
		return err
	}

	pages, err := s.loadPages(ctx)
	if err != nil {
		return err
	}

	projects, err := s.loadProjects()
	if err != nil {
		return err
	}

	if err := s.recordArchive(ctx, posts, pages); err != nil {
		return err
	}

	s.mu.Lock()
	s.posts = posts
	s.pages = pages
	s.projects = projects
	s.issues = postIssues
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("content.tree.loaded",
		"posts", countDocuments(posts),
		"pages", countDocuments(pages),
		"projects", len(projects),
		"issues", len(postIssues),
		"duration", s.now().Sub(start).String(),
	)

	return nil
}

// Posts returns the posts visible for a locale, newest first. Posts authored
// only in the default locale are included with Fallback set.
func (s *service) Posts(ctx context.Context, locale string) ([]*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	requested := s.normalizeLocale(locale)
	merged := map[string]*Post{}
	for slugKey, post := range s.posts[s.cfg.DefaultLocale] {
		fallback := clonePost(post)
		fallback.Fallback = requested != s.cfg.DefaultLocale
		merged[slugKey] = fallback
	}
	if requested != s.cfg.DefaultLocale {
		for slugKey, post := range s.posts[requested] {
			merged[slugKey] = clonePost(post)
		}
	}

	out := make([]*Post, 0, len(merged))
	for _, post := range merged {
		out = append(out, post)
	}
	sortPosts(out)
	return out, nil
}

// Post resolves a single post, falling back to the default locale document.
func (s *service) Post(ctx context.Context, locale, slugKey string) (*Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	requested := s.normalizeLocale(locale)
	if post, ok := s.posts[requested][slugKey]; ok {
		return clonePost(post), nil
	}
	if post, ok := s.posts[s.cfg.DefaultLocale][slugKey]; ok {
		fallback := clonePost(post)
		fallback.Fallback = requested != s.cfg.DefaultLocale
		return fallback, nil
	}
	return nil, &NotFoundError{Resource: "post", Key: slugKey}
}

// Pages returns the pages visible for a locale, ordered by slug.
func (s *service) Pages(ctx context.Context, locale string) ([]*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	requested := s.normalizeLocale(locale)
	merged := map[string]*Page{}
	for slugKey, page := range s.pages[s.cfg.DefaultLocale] {
		fallback := clonePage(page)
		fallback.Fallback = requested != s.cfg.DefaultLocale
		merged[slugKey] = fallback
	}
	if requested != s.cfg.DefaultLocale {
		for slugKey, page := range s.pages[requested] {
			merged[slugKey] = clonePage(page)
		}
	}

	out := make([]*Page, 0, len(merged))
	for _, page := range merged {
		out = append(out, page)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Page resolves a single page, falling back to the default locale document.
func (s *service) Page(ctx context.Context, locale, slugKey string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	requested := s.normalizeLocale(locale)
	if page, ok := s.pages[requested][slugKey]; ok {
		return clonePage(page), nil
	}
	if page, ok := s.pages[s.cfg.DefaultLocale][slugKey]; ok {
		fallback := clonePage(page)
		fallback.Fallback = requested != s.cfg.DefaultLocale
		return fallback, nil
	}
	return nil, &NotFoundError{Resource: "page", Key: slugKey}
}

// Projects returns portfolio entries with the description resolved for the
// requested locale: featured entries first, then newest year, then weight.
func (s *service) Projects(ctx context.Context, locale string) ([]*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}

	requested := s.normalizeLocale(locale)
	out := make([]*Project, 0, len(s.projects))
	for _, project := range s.projects {
		resolved := cloneProject(project)
		if override, ok := project.DescriptionI18N[requested]; ok && override != "" {
			resolved.Description = override
		}
		out = append(out, resolved)
	}
	return out, nil
}

// Tags derives the tag index for a locale from its visible posts.
func (s *service) Tags(ctx context.Context, locale string) ([]*Tag, error) {
	posts, err := s.Posts(ctx, locale)
	if err != nil {
		return nil, err
	}

	index := map[string]*Tag{}
	for _, post := range posts {
		for _, name := range post.Tags {
			key, err := slug.Normalize(strings.TrimSpace(name))
			if err != nil || key == "" {
				continue
			}
			tag, ok := index[key]
			if !ok {
				tag = &Tag{
					ID:   identity.TagUUID(key),
					Name: strings.TrimSpace(name),
					Slug: key,
				}
				index[key] = tag
			}
			tag.Posts = append(tag.Posts, post)
		}
	}

	out := make([]*Tag, 0, len(index))
	for _, tag := range index {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// Verify reports documents that violate the content contract: every post must
// carry a non-empty title and a valid date. Issues are collected at load time.
func (s *service) Verify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	if len(s.issues) == 0 {
		return nil
	}

	s.logger.Warn("content.verify.issues", "count", len(s.issues))
	return &VerifyError{Issues: append([]VerifyIssue(nil), s.issues...)}
}

func (s *service) loadPosts(ctx context.Context) (map[string]map[string]*Post, []VerifyIssue, error) {
	tree := map[string]map[string]*Post{}
	sources := map[string]map[string]string{}
	var issues []VerifyIssue

	if strings.TrimSpace(s.cfg.PostsDir) == "" {
		return tree, nil, nil
	}

	docs, err := s.markdown.LoadDirectory(ctx, s.cfg.PostsDir, interfaces.LoadOptions{})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("content.posts.missing", "dir", s.cfg.PostsDir)
			return tree, nil, nil
		}
		return nil, nil, err
	}

	for _, doc := range docs {
		if doc.FrontMatter.Draft && !s.cfg.IncludeDrafts {
			s.logger.Debug("content.post.skipped", "source", doc.FilePath, "reason", "draft")
			continue
		}

		slugKey, err := s.documentSlug(doc)
		if err != nil {
			return nil, nil, err
		}

		locale := s.normalizeLocale(doc.Locale)
		if existing, ok := sources[locale][slugKey]; ok {
			return nil, nil, &DuplicateSlugError{
				Slug:         slugKey,
				Locale:       locale,
				Path:         doc.FilePath,
				ExistingPath: existing,
			}
		}

		if strings.TrimSpace(doc.FrontMatter.Title) == "" {
			issues = append(issues, VerifyIssue{Source: doc.FilePath, Field: "title", Reason: "must not be empty"})
		}
		if doc.FrontMatter.Date.IsZero() {
			issues = append(issues, VerifyIssue{Source: doc.FilePath, Field: "date", Reason: "must be a valid date"})
		}

		post := &Post{
			ID:           identity.PostUUID(slugKey),
			Slug:         slugKey,
			Locale:       locale,
			Title:        doc.FrontMatter.Title,
			Description:  doc.FrontMatter.Description,
			Date:         doc.FrontMatter.Date,
			Tags:         append([]string(nil), doc.FrontMatter.Tags...),
			Draft:        doc.FrontMatter.Draft,
			Author:       doc.FrontMatter.Author,
			Template:     doc.FrontMatter.Template,
			BodyHTML:     string(doc.BodyHTML),
			Source:       doc.FilePath,
			Checksum:     append([]byte(nil), doc.Checksum...),
			LastModified: doc.LastModified,
			Extra:        cloneMap(doc.FrontMatter.Custom),
		}

		if tree[locale] == nil {
			tree[locale] = map[string]*Post{}
			sources[locale] = map[string]string{}
		}
		tree[locale][slugKey] = post
		sources[locale][slugKey] = doc.FilePath
	}

	return tree, issues, nil
}

func (s *service) loadPages(ctx context.Context) (map[string]map[string]*Page, error) {
	tree := map[string]map[string]*Page{}
	sources := map[string]map[string]string{}

	if strings.TrimSpace(s.cfg.PagesDir) == "" {
		return tree, nil
	}

	docs, err := s.markdown.LoadDirectory(ctx, s.cfg.PagesDir, interfaces.LoadOptions{})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("content.pages.missing", "dir", s.cfg.PagesDir)
			return tree, nil
		}
		return nil, err
	}

	for _, doc := range docs {
		if doc.FrontMatter.Draft && !s.cfg.IncludeDrafts {
			s.logger.Debug("content.page.skipped", "source", doc.FilePath, "reason", "draft")
			continue
		}

		slugKey, err := s.documentSlug(doc)
		if err != nil {
			return nil, err
		}

		locale := s.normalizeLocale(doc.Locale)
		if existing, ok := sources[locale][slugKey]; ok {
			return nil, &DuplicateSlugError{
				Slug:         slugKey,
				Locale:       locale,
				Path:         doc.FilePath,
				ExistingPath: existing,
			}
		}

		page := &Page{
			ID:           identity.PageUUID(slugKey),
			Slug:         slugKey,
			Locale:       locale,
			Title:        doc.FrontMatter.Title,
			Description:  doc.FrontMatter.Description,
			Template:     doc.FrontMatter.Template,
			BodyHTML:     string(doc.BodyHTML),
			Source:       doc.FilePath,
			Checksum:     append([]byte(nil), doc.Checksum...),
			LastModified: doc.LastModified,
			Extra:        cloneMap(doc.FrontMatter.Custom),
		}

		if tree[locale] == nil {
			tree[locale] = map[string]*Page{}
			sources[locale] = map[string]string{}
		}
		tree[locale][slugKey] = page
		sources[locale][slugKey] = doc.FilePath
	}

	return tree, nil
}

func (s *service) loadProjects() ([]*Project, error) {
	if s.dataFS == nil || strings.TrimSpace(s.cfg.ProjectsPath) == "" {
		return nil, nil
	}
	projects, err := LoadProjects(s.dataFS, s.cfg.ProjectsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("content.projects.missing", "path", s.cfg.ProjectsPath)
			return nil, nil
		}
		return nil, err
	}
	return projects, nil
}

func (s *service) recordArchive(ctx context.Context, posts map[string]map[string]*Post, pages map[string]map[string]*Page) error {
	if s.archive == nil {
		return nil
	}

	now := s.now()
	for _, bySlug := range posts {
		for _, post := range bySlug {
			record := &ArchivedDocument{
				ID:           identity.DocumentUUID(post.Slug, post.Locale),
				Source:       post.Source,
				Kind:         KindPost,
				Slug:         post.Slug,
				Locale:       post.Locale,
				Title:        post.Title,
				Checksum:     hex.EncodeToString(post.Checksum),
				LastModified: post.LastModified,
				RecordedAt:   now,
			}
			if _, err := s.archive.Record(ctx, record); err != nil {
				return fmt.Errorf("content: archive post %s: %w", post.Source, err)
			}
		}
	}
	for _, bySlug := range pages {
		for _, page := range bySlug {
			record := &ArchivedDocument{
				ID:           identity.DocumentUUID(page.Slug, page.Locale),
				Source:       page.Source,
				Kind:         KindPage,
				Slug:         page.Slug,
				Locale:       page.Locale,
				Title:        page.Title,
				Checksum:     hex.EncodeToString(page.Checksum),
				LastModified: page.LastModified,
				RecordedAt:   now,
			}
			if _, err := s.archive.Record(ctx, record); err != nil {
				return fmt.Errorf("content: archive page %s: %w", page.Source, err)
			}
		}
	}
	return nil
}

func (s *service) documentSlug(doc *interfaces.Document) (string, error) {
	if override := strings.TrimSpace(doc.FrontMatter.Slug); override != "" {
		return normalizeSlug(override, doc.FilePath)
	}
	return SlugFromPath(doc.FilePath, s.Locales())
}

func (s *service) normalizeLocale(locale string) string {
	normalized := strings.ToLower(strings.TrimSpace(locale))
	if normalized == "" {
		return s.cfg.DefaultLocale
	}
	return normalized
}

func sortPosts(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func countDocuments[T any](tree map[string]map[string]T) int {
	total := 0
	for _, bySlug := range tree {
		total += len(bySlug)
	}
	return total
}
