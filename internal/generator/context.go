package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/navigation"
	gotheme "github.com/goliatone/go-theme"
)

var (
	errContentServiceRequired = errors.New("generator: content service is required")
	errRouteResolverRequired  = errors.New("generator: route resolver is required")
)

// PageKind discriminates the page shapes scheduled into a build.
type PageKind string

const (
	pageKindPage      PageKind = "page"
	pageKindPost      PageKind = "post"
	pageKindBlogIndex PageKind = "blog"
	pageKindTagIndex  PageKind = "tag"
)

// BuildContext aggregates the localized page data required to execute a static build.
type BuildContext struct {
	GeneratedAt   time.Time
	DefaultLocale string
	Locales       []LocaleSpec
	Pages         []*PageData
	MenuAliases   map[string]string
	Theme         *Theme
	Selection     *gotheme.Selection
	Options       BuildOptions
}

// LocaleSpec captures resolved locale information for a build.
type LocaleSpec struct {
	Code      string
	IsDefault bool
}

// PageData encapsulates resolved dependencies for a document/locale combination.
type PageData struct {
	Kind           PageKind
	Document       string
	Page           *content.Page
	Post           *content.Post
	Posts          []*content.Post
	Tag            *content.Tag
	Projects       []*content.Project
	Locale         LocaleSpec
	Route          string
	Template       string
	Menus          map[string][]navigation.Item
	Theme          *Theme
	ThemeSelection *gotheme.Selection
	Metadata       DependencyMetadata
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

// Manifest keys for the synthetic index documents.
const blogIndexDocument = "blog:index"

func pageDocument(slug string) string { return "page:" + slug }
func postDocument(slug string) string { return "post:" + slug }
func tagDocument(slug string) string  { return "tag:" + slug }

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Content == nil {
		return nil, errContentServiceRequired
	}
	if s.deps.Routes == nil {
		return nil, errRouteResolverRequired
	}

	locales := s.resolveLocales(opts)
	filter := slugFilter(opts.Slugs)

	theme := themeFromConfig(s.cfg.Theming)
	var selection *gotheme.Selection
	if theme != nil && s.themeSelector != nil {
		var err error
		selection, err = s.themeSelector.Selection(theme, s.cfg.Theming.DefaultVariant)
		if err != nil {
			return nil, err
		}
	}

	menus := newMenuCache(s.cfg.Menus)
	var pageContexts []*PageData

	for _, spec := range locales.ordered {
		menuSet, err := menus.resolveAll(s.deps.Navigation, spec.Code)
		if err != nil {
			return nil, err
		}

		static, err := s.buildStaticPages(ctx, spec, menuSet)
		if err != nil {
			return nil, err
		}
		posts, err := s.buildPostPages(ctx, spec, menuSet)
		if err != nil {
			return nil, err
		}
		indexes, err := s.buildBlogIndexes(ctx, spec, menuSet)
		if err != nil {
			return nil, err
		}

		for _, data := range mergedPageData(static, posts, indexes) {
			if !data.matchesFilter(filter) {
				continue
			}
			data.Theme = theme
			data.ThemeSelection = selection
			data.Metadata = computeDependencyMetadata(data)
			pageContexts = append(pageContexts, data)
		}
	}

	return &BuildContext{
		GeneratedAt:   s.now(),
		DefaultLocale: locales.defaultCode,
		Locales:       locales.ordered,
		Pages:         pageContexts,
		MenuAliases:   maps.Clone(s.cfg.Menus),
		Theme:         theme,
		Selection:     selection,
		Options:       opts,
	}, nil
}

type localeSet struct {
	ordered     []LocaleSpec
	defaultCode string
}

// resolveLocales merges the configured locales with any requested in the
// build options. The default locale always renders first unless the options
// restrict the set outright.
func (s *service) resolveLocales(opts BuildOptions) localeSet {
	defaultLocale := strings.TrimSpace(s.cfg.DefaultLocale)
	if defaultLocale == "" {
		defaultLocale = strings.TrimSpace(s.deps.Content.DefaultLocale())
	}
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	requestedFromOpts := len(opts.Locales) > 0
	var baseRequested []string
	switch {
	case requestedFromOpts:
		baseRequested = append([]string{}, opts.Locales...)
	case len(s.cfg.Locales) > 0:
		baseRequested = append([]string{}, s.cfg.Locales...)
	default:
		baseRequested = append([]string{}, s.deps.Content.Locales()...)
	}

	seen := map[string]struct{}{}
	var codes []string

	includeDefault := !requestedFromOpts
	if includeDefault {
		seen[strings.ToLower(defaultLocale)] = struct{}{}
		codes = append(codes, defaultLocale)
	}

	for _, candidate := range baseRequested {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		codes = append(codes, normalized)
	}

	if len(codes) == 0 {
		codes = append(codes, defaultLocale)
	}

	set := localeSet{defaultCode: defaultLocale}
	for _, code := range codes {
		set.ordered = append(set.ordered, LocaleSpec{
			Code:      code,
			IsDefault: strings.EqualFold(code, defaultLocale),
		})
	}
	return set
}

func (s *service) buildStaticPages(ctx context.Context, spec LocaleSpec, menuSet map[string][]navigation.Item) ([]*PageData, error) {
	pages, err := s.deps.Content.Pages(ctx, spec.Code)
	if err != nil {
		return nil, err
	}

	var out []*PageData
	for _, page := range pages {
		if page == nil {
			continue
		}
		route, err := s.routeForPage(spec.Code, page.Slug)
		if err != nil {
			return nil, err
		}

		data := &PageData{
			Kind:     pageKindPage,
			Document: pageDocument(page.Slug),
			Page:     page,
			Locale:   spec,
			Route:    route,
			Template: templateForPage(page),
			Menus:    navigation.MarkActiveAll(menuSet, route),
		}
		if page.Slug == "projects" {
			projects, err := s.deps.Content.Projects(ctx, spec.Code)
			if err != nil {
				return nil, err
			}
			data.Projects = projects
		}
		out = append(out, data)
	}
	return out, nil
}

func (s *service) buildPostPages(ctx context.Context, spec LocaleSpec, menuSet map[string][]navigation.Item) ([]*PageData, error) {
	posts, err := s.deps.Content.Posts(ctx, spec.Code)
	if err != nil {
		return nil, err
	}

	var out []*PageData
	for _, post := range posts {
		if post == nil {
			continue
		}
		route, err := s.deps.Routes.Path(spec.Code, "blog.post", map[string]string{"slug": post.Slug})
		if err != nil {
			return nil, err
		}
		out = append(out, &PageData{
			Kind:     pageKindPost,
			Document: postDocument(post.Slug),
			Post:     post,
			Locale:   spec,
			Route:    route,
			Template: templateForPost(post),
			Menus:    navigation.MarkActiveAll(menuSet, route),
		})
	}
	return out, nil
}

func (s *service) buildBlogIndexes(ctx context.Context, spec LocaleSpec, menuSet map[string][]navigation.Item) ([]*PageData, error) {
	posts, err := s.deps.Content.Posts(ctx, spec.Code)
	if err != nil {
		return nil, err
	}

	indexRoute, err := s.deps.Routes.Path(spec.Code, "blog.index", nil)
	if err != nil {
		return nil, err
	}
	out := []*PageData{{
		Kind:     pageKindBlogIndex,
		Document: blogIndexDocument,
		Posts:    posts,
		Locale:   spec,
		Route:    indexRoute,
		Template: "blog.html",
		Menus:    navigation.MarkActiveAll(menuSet, indexRoute),
	}}

	tags, err := s.deps.Content.Tags(ctx, spec.Code)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if tag == nil {
			continue
		}
		route, err := s.deps.Routes.Path(spec.Code, "blog.tag", map[string]string{"tag": tag.Slug})
		if err != nil {
			return nil, err
		}
		out = append(out, &PageData{
			Kind:     pageKindTagIndex,
			Document: tagDocument(tag.Slug),
			Tag:      tag,
			Posts:    tag.Posts,
			Locale:   spec,
			Route:    route,
			Template: "tag.html",
			Menus:    navigation.MarkActiveAll(menuSet, route),
		})
	}
	return out, nil
}

// routeForPage resolves a static page route. Pages whose slug matches a named
// route render there; everything else falls back to the free-form page route.
func (s *service) routeForPage(locale, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if s.deps.Routes.Has(slug) {
		return s.deps.Routes.Path(locale, slug, nil)
	}
	return s.deps.Routes.Path(locale, "page", map[string]string{"slug": slug})
}

func templateForPage(page *content.Page) string {
	if tpl := strings.TrimSpace(page.Template); tpl != "" {
		return tpl
	}
	switch page.Slug {
	case "home":
		return "home.html"
	case "projects":
		return "projects.html"
	default:
		return "page.html"
	}
}

func templateForPost(post *content.Post) string {
	if tpl := strings.TrimSpace(post.Template); tpl != "" {
		return tpl
	}
	return "post.html"
}

func mergedPageData(groups ...[]*PageData) []*PageData {
	var merged []*PageData
	for _, group := range groups {
		merged = append(merged, group...)
	}
	return merged
}

func slugFilter(slugs []string) map[string]struct{} {
	if len(slugs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(slugs))
	for _, candidate := range slugs {
		normalized := strings.ToLower(strings.TrimSpace(candidate))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// matchesFilter reports whether the page is covered by a slug filter. Filters
// match document keys and bare page/post slugs; index pages only rebuild when
// named by document key.
func (data *PageData) matchesFilter(filter map[string]struct{}) bool {
	if filter == nil {
		return true
	}
	if _, ok := filter[strings.ToLower(data.Document)]; ok {
		return true
	}
	switch {
	case data.Page != nil:
		_, ok := filter[strings.ToLower(data.Page.Slug)]
		return ok
	case data.Post != nil:
		_, ok := filter[strings.ToLower(data.Post.Slug)]
		return ok
	}
	return false
}

type menuCache struct {
	aliases map[string]string
	data    map[string]map[string][]navigation.Item
	mu      sync.Mutex
}

func newMenuCache(aliases map[string]string) *menuCache {
	clean := map[string]string{}
	for alias, code := range aliases {
		trimmedAlias := strings.TrimSpace(alias)
		trimmedCode := strings.TrimSpace(code)
		if trimmedAlias == "" || trimmedCode == "" {
			continue
		}
		clean[trimmedAlias] = trimmedCode
	}
	return &menuCache{
		aliases: clean,
		data:    map[string]map[string][]navigation.Item{},
	}
}

// resolveAll builds every aliased menu for a locale once. The returned items
// carry no active marks; callers mark the current page per render.
func (c *menuCache) resolveAll(nav navigation.Service, locale string) (map[string][]navigation.Item, error) {
	if len(c.aliases) == 0 || nav == nil {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if localized, ok := c.data[locale]; ok {
		return cloneMenus(localized), nil
	}

	localized := make(map[string][]navigation.Item, len(c.aliases))
	for alias, code := range c.aliases {
		items, err := nav.Build(code, locale, "")
		if err != nil {
			if errors.Is(err, navigation.ErrUnknownMenu) {
				localized[alias] = nil
				continue
			}
			return nil, err
		}
		localized[alias] = items
	}
	c.data[locale] = localized
	return cloneMenus(localized), nil
}

func cloneMenus(input map[string][]navigation.Item) map[string][]navigation.Item {
	if len(input) == 0 {
		return nil
	}
	cloned := make(map[string][]navigation.Item, len(input))
	for alias, items := range input {
		cloned[alias] = append([]navigation.Item(nil), items...)
	}
	return cloned
}

func computeDependencyMetadata(data *PageData) DependencyMetadata {
	sources := map[string]string{
		"route":    data.Route,
		"template": data.Template,
	}
	var stamps []time.Time

	switch {
	case data.Page != nil:
		sources["page"] = documentFingerprint(data.Page.Slug, data.Page.Locale, data.Page.Title, data.Page.Checksum, data.Page.LastModified)
		if len(data.Page.Extra) > 0 {
			sources["extra"] = hashMap(data.Page.Extra)
		}
		stamps = append(stamps, data.Page.LastModified)
	case data.Post != nil:
		sources["post"] = documentFingerprint(data.Post.Slug, data.Post.Locale, data.Post.Title, data.Post.Checksum, data.Post.LastModified)
		if len(data.Post.Extra) > 0 {
			sources["extra"] = hashMap(data.Post.Extra)
		}
		stamps = append(stamps, data.Post.LastModified, data.Post.Date)
	}

	if len(data.Posts) > 0 {
		sources["posts"] = hashPosts(data.Posts)
		for _, post := range data.Posts {
			if post != nil {
				stamps = append(stamps, post.LastModified)
			}
		}
	}
	if data.Tag != nil {
		sources["tag"] = joinParts(data.Tag.Slug, data.Tag.Name)
	}
	if len(data.Projects) > 0 {
		sources["projects"] = hashProjects(data.Projects)
	}
	if len(data.Menus) > 0 {
		sources["menus"] = hashMenus(data.Menus)
	}
	if data.Theme != nil {
		sources["theme"] = joinParts(data.Theme.Name, data.Theme.Version)
	}

	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: maxTime(stamps...),
	}
}

func documentFingerprint(slug, locale, title string, checksum []byte, modified time.Time) string {
	return joinParts(
		slug,
		locale,
		title,
		hex.EncodeToString(checksum),
		modified.UTC().Format(time.RFC3339Nano),
	)
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func hashMap(input map[string]any) string {
	if len(input) == 0 {
		return ""
	}
	normalized := normalizeMap(input)
	bytes, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(bytes)
	return hex.EncodeToString(sum[:])
}

func normalizeMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(map[string]any, len(input))
	for _, key := range keys {
		result[key] = normalizeValue(input[key])
	}
	return result
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return typed
	}
}

func hashPosts(posts []*content.Post) string {
	if len(posts) == 0 {
		return ""
	}
	values := make([]string, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		values = append(values, joinParts(
			post.Slug,
			hex.EncodeToString(post.Checksum),
			post.Date.UTC().Format(time.RFC3339),
		))
	}
	sort.Strings(values)
	return hashStrings(values)
}

func hashProjects(projects []*content.Project) string {
	if len(projects) == 0 {
		return ""
	}
	values := make([]string, 0, len(projects))
	for _, project := range projects {
		if project == nil {
			continue
		}
		values = append(values, joinParts(
			project.Slug,
			project.Title,
			project.Description,
			project.Repo,
			project.LiveURL,
			strconv.Itoa(project.Year),
			strconv.FormatBool(project.Featured),
			strconv.Itoa(project.Weight),
			strings.Join(project.Tech, ","),
		))
	}
	sort.Strings(values)
	return hashStrings(values)
}

func hashMenus(menus map[string][]navigation.Item) string {
	if len(menus) == 0 {
		return ""
	}
	entries := make([]string, 0, len(menus))
	for alias, items := range menus {
		entries = append(entries, joinParts(alias, hashNavigationItems(items)))
	}
	sort.Strings(entries)
	return hashStrings(entries)
}

func hashNavigationItems(items []navigation.Item) string {
	if len(items) == 0 {
		return ""
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, joinParts(
			item.Route,
			item.Label,
			item.Path,
			strconv.Itoa(item.Weight),
		))
	}
	sort.Strings(values)
	return hashStrings(values)
}

func hashStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hasher := sha256.New()
	for _, value := range values {
		hasher.Write([]byte(value))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func maxTime(times ...time.Time) time.Time {
	var max time.Time
	for _, t := range times {
		if t.After(max) {
			max = t
		}
	}
	return max
}
