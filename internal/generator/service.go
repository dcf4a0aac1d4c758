package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"path"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/navigation"
	"github.com/goliatone/go-folio/pkg/interfaces"
	"github.com/goliatone/go-folio/pkg/storage"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled = errors.New("generator: service disabled")

	// ErrNoPagesMatched is returned by scoped builds whose filters selected
	// nothing.
	ErrNoPagesMatched = errors.New("generator: no pages matched the requested scope")

	errRendererRequired = errors.New("generator: template renderer is required")
)

// Service describes the static site generator contract.
type Service interface {
	// Build renders the site into the output directory. Options narrow the
	// run to specific locales or documents, or turn it into a dry run.
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)

	// BuildPage rebuilds a single document for one locale, honoring the
	// incremental manifest. An empty locale rebuilds every locale.
	BuildPage(ctx context.Context, slug, locale string) error

	// BuildAssets copies theme assets without rendering pages.
	BuildAssets(ctx context.Context) error

	// BuildSitemap regenerates sitemap.xml from the current content tree and
	// the manifest of previously rendered pages.
	BuildSitemap(ctx context.Context) error

	// Clean removes every artifact tracked by the manifest, then the
	// manifest itself.
	Clean(ctx context.Context) error

	// Diff reports which artifacts a build would change without writing
	// anything.
	Diff(ctx context.Context, opts BuildOptions) (*DiffResult, error)
}

// RouteResolver is the slice of the route table the generator needs.
type RouteResolver interface {
	Path(locale, name string, params map[string]string) (string, error)
	Has(name string) bool
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	SiteName        string
	SiteDescription string
	SiteAuthor      string
	SiteParams      map[string]any
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	DefaultLocale   string
	Locales         []string
	Menus           map[string]string
	Theming         ThemingConfig
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Locales []string
	Slugs   []string
	DryRun  bool
	Force   bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	FeedsBuilt    int
	Locales       []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// DiffStatus classifies an artifact in a diff report.
type DiffStatus string

const (
	DiffAdded     DiffStatus = "added"
	DiffChanged   DiffStatus = "changed"
	DiffUnchanged DiffStatus = "unchanged"
	DiffRemoved   DiffStatus = "removed"
)

// DiffEntry describes one artifact a build would touch.
type DiffEntry struct {
	Document string
	Locale   string
	Route    string
	Output   string
	Status   DiffStatus
	Reason   string
}

// DiffResult reports the outcome of a dry-run comparison against the
// manifest.
type DiffResult struct {
	GeneratedAt time.Time
	Entries     []DiffEntry
}

// Changed counts entries that a build would write or remove.
func (r *DiffResult) Changed() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, entry := range r.Entries {
		if entry.Status != DiffUnchanged {
			count++
		}
	}
	return count
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Content    content.Service
	Navigation navigation.Service
	Routes     RouteResolver
	I18N       i18n.Service
	Renderer   interfaces.TemplateRenderer
	Storage    interfaces.StorageProvider
	Assets     AssetResolver
	Logger     interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:           cfg,
		deps:          deps,
		logger:        logger,
		themeSelector: newThemeSelector(cfg.Theming, nil),
		now:           time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg           Config
	deps          Dependencies
	logger        interfaces.Logger
	themeSelector *themeSelector
	now           func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if err := s.refreshAndVerify(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generator.build.start",
		"pages", len(buildCtx.Pages),
		"locales", len(buildCtx.Locales),
		"dry_run", opts.DryRun,
	)

	result := &BuildResult{
		Locales:     make([]string, 0, len(buildCtx.Locales)),
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Pages)),
	}
	for _, spec := range buildCtx.Locales {
		result.Locales = append(result.Locales, spec.Code)
	}

	siteMeta := s.siteMetadata(buildCtx)

	var (
		mu          sync.Mutex
		rendered    = make([]RenderedPage, 0, len(buildCtx.Pages))
		errorsSlice []error
		baseDir     = strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
		pageKeys    = map[string]struct{}{}
	)

	manifest, manifestErr := s.loadManifest(ctx)
	if manifestErr != nil {
		errorsSlice = append(errorsSlice, manifestErr)
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	writer := newArtifactWriter(s.deps.Storage)
	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.removeTracked(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		manifest = newBuildManifest()
	}

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.diagnostic.Document != "" {
			key := manifest.pageKey(outcome.diagnostic.Document, outcome.diagnostic.Locale)
			pageKeys[key] = struct{}{}
		}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		if !opts.DryRun {
			rendered = append(rendered, outcome.page)
		}
	}

	workerCount := s.effectiveWorkerCount(len(buildCtx.Locales))
	if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
		for _, page := range buildCtx.Pages {
			select {
			case <-ctx.Done():
				collect(renderOutcome{
					diagnostic: RenderDiagnostic{
						Document: page.Document,
						Locale:   page.Locale.Code,
						Route:    page.Route,
						Err:      ctx.Err(),
					},
					err: ctx.Err(),
				})
				return result, ctx.Err()
			default:
				outcome := s.renderPage(ctx, siteMeta, buildCtx, page, manifest, baseDir)
				collect(outcome)
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, siteMeta, buildCtx, workerCount, manifest, baseDir, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	if err := s.persistPages(ctx, writer, buildCtx, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	assetSummary := assetCopySummary{}
	if s.cfg.CopyAssets {
		assetSummary, err = s.copyAssets(ctx, writer, buildCtx, manifest, baseDir)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += assetSummary.Built
			result.AssetsSkipped += assetSummary.Skipped
		}
	}

	if s.cfg.GenerateSitemap {
		sitemapPages := s.mergeRenderedForSitemap(buildCtx, rendered, manifest)
		if err := s.writeSitemap(ctx, writer, siteMeta, buildCtx, sitemapPages, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, siteMeta, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateFeeds {
		docs := s.buildFeedDocuments(buildCtx)
		feedsWritten, err := s.writeFeeds(ctx, writer, siteMeta, buildCtx, docs, manifest)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.FeedsBuilt += feedsWritten
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		for _, page := range rendered {
			if page.Document == "" || strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setPage(manifestPage{
				Document:     page.Document,
				Locale:       page.Locale,
				Route:        page.Route,
				Output:       page.Output,
				Template:     page.Template,
				Hash:         page.Metadata.Hash,
				Checksum:     page.Checksum,
				LastModified: page.Metadata.LastModified,
				RenderedAt:   buildCtx.GeneratedAt,
			})
		}
		if isFullScope(opts) {
			manifest.prunePages(pageKeys)
			if s.cfg.CopyAssets && buildCtx.Theme != nil {
				manifest.pruneAssets(assetSummary.Keys)
			}
		}
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = time.Since(start)

	s.logger.Info("generator.build.done",
		"built", result.PagesBuilt,
		"skipped", result.PagesSkipped,
		"assets", result.AssetsBuilt,
		"feeds", result.FeedsBuilt,
		"duration", result.Duration,
		"errors", len(errorsSlice),
	)

	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) BuildPage(ctx context.Context, slug, locale string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return fmt.Errorf("%w: slug required", ErrNoPagesMatched)
	}
	opts := BuildOptions{Slugs: []string{slug}}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		opts.Locales = []string{trimmed}
	}
	result, err := s.Build(ctx, opts)
	if err != nil {
		return err
	}
	if result.PagesBuilt == 0 && result.PagesSkipped == 0 {
		return fmt.Errorf("%w: %q", ErrNoPagesMatched, slug)
	}
	return nil
}

func (s *service) BuildAssets(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.deps.Content.LoadTree(ctx); err != nil {
		return err
	}
	buildCtx, err := s.loadContext(ctx, BuildOptions{})
	if err != nil {
		return err
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.deps.Storage)
	summary, err := s.copyAssets(ctx, writer, buildCtx, manifest, strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/"))
	if err != nil {
		return err
	}
	s.logger.Info("generator.assets.done", "built", summary.Built, "skipped", summary.Skipped)
	return s.persistManifest(ctx, writer, manifest)
}

func (s *service) BuildSitemap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.deps.Content.LoadTree(ctx); err != nil {
		return err
	}
	buildCtx, err := s.loadContext(ctx, BuildOptions{})
	if err != nil {
		return err
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.deps.Storage)
	siteMeta := s.siteMetadata(buildCtx)
	pages := s.mergeRenderedForSitemap(buildCtx, nil, manifest)
	if err := s.writeSitemap(ctx, writer, siteMeta, buildCtx, pages, manifest); err != nil {
		return err
	}
	return s.persistManifest(ctx, writer, manifest)
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.deps.Storage)
	removed := len(manifest.outputs())
	if err := s.removeTracked(ctx, writer, manifest); err != nil {
		return err
	}
	s.logger.Info("generator.clean.done", "removed", removed)
	return nil
}

func (s *service) Diff(ctx context.Context, opts BuildOptions) (*DiffResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.deps.Content.LoadTree(ctx); err != nil {
		return nil, err
	}
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	manifest, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}

	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	result := &DiffResult{GeneratedAt: buildCtx.GeneratedAt}
	scheduled := map[string]struct{}{}

	for _, data := range buildCtx.Pages {
		destRel := buildOutputPath(data.Route, data.Locale.Code, buildCtx.DefaultLocale)
		output := joinOutputPath(baseDir, destRel)
		key := manifest.pageKey(data.Document, data.Locale.Code)
		scheduled[key] = struct{}{}

		entry := DiffEntry{
			Document: data.Document,
			Locale:   data.Locale.Code,
			Route:    data.Route,
			Output:   output,
		}
		previous, known := manifest.lookupPage(data.Document, data.Locale.Code)
		switch {
		case !known:
			entry.Status = DiffAdded
			entry.Reason = "not in manifest"
		case previous.Hash != data.Metadata.Hash:
			entry.Status = DiffChanged
			entry.Reason = "content hash"
		case strings.TrimSpace(previous.Output) != strings.TrimSpace(output):
			entry.Status = DiffChanged
			entry.Reason = "output path"
		default:
			entry.Status = DiffUnchanged
		}
		result.Entries = append(result.Entries, entry)
	}

	if isFullScope(opts) {
		for key, previous := range manifest.Pages {
			if _, ok := scheduled[key]; ok {
				continue
			}
			result.Entries = append(result.Entries, DiffEntry{
				Document: previous.Document,
				Locale:   previous.Locale,
				Route:    previous.Route,
				Output:   previous.Output,
				Status:   DiffRemoved,
				Reason:   "no longer in content tree",
			})
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].Document == result.Entries[j].Document {
			return result.Entries[i].Locale < result.Entries[j].Locale
		}
		return result.Entries[i].Document < result.Entries[j].Document
	})
	return result, nil
}

// refreshAndVerify reloads the content tree and runs the content and
// translation verifiers before anything renders.
func (s *service) refreshAndVerify(ctx context.Context) error {
	if s.deps.Content == nil {
		return errContentServiceRequired
	}
	if err := s.deps.Content.LoadTree(ctx); err != nil {
		return err
	}
	if err := s.deps.Content.Verify(ctx); err != nil {
		return fmt.Errorf("generator: content verification: %w", err)
	}
	if s.deps.I18N != nil {
		if err := s.deps.I18N.Verify(ctx); err != nil {
			return fmt.Errorf("generator: translation verification: %w", err)
		}
	}
	return nil
}

func (s *service) siteMetadata(buildCtx *BuildContext) SiteMetadata {
	siteMeta := SiteMetadata{
		Name:          strings.TrimSpace(s.cfg.SiteName),
		Description:   strings.TrimSpace(s.cfg.SiteDescription),
		Author:        strings.TrimSpace(s.cfg.SiteAuthor),
		BaseURL:       strings.TrimRight(s.cfg.BaseURL, "/"),
		DefaultLocale: buildCtx.DefaultLocale,
		Locales:       append([]LocaleSpec(nil), buildCtx.Locales...),
		MenuAliases:   maps.Clone(buildCtx.MenuAliases),
		Metadata:      maps.Clone(s.cfg.SiteParams),
	}
	if siteMeta.MenuAliases == nil {
		siteMeta.MenuAliases = map[string]string{}
	}
	if siteMeta.Metadata == nil {
		siteMeta.Metadata = map[string]any{}
	}
	return siteMeta
}

func (s *service) renderConcurrently(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	workers int,
	manifest *buildManifest,
	baseDir string,
	collect func(renderOutcome),
) error {
	grouped := groupPagesByLocale(buildCtx.Pages)
	if len(grouped) == 0 {
		return nil
	}

	jobs := make(chan []*PageData)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, page := range batch {
					select {
					case <-ctx.Done():
						collect(renderOutcome{
							diagnostic: RenderDiagnostic{
								Document: page.Document,
								Locale:   page.Locale.Code,
								Route:    page.Route,
								Err:      ctx.Err(),
							},
							err: ctx.Err(),
						})
						return
					default:
						outcome := s.renderPage(ctx, siteMeta, buildCtx, page, manifest, baseDir)
						collect(outcome)
					}
				}
			}
		}()
	}

	for _, locale := range buildCtx.Locales {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- grouped[locale.Code]:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderPage(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	data *PageData,
	manifest *buildManifest,
	baseDir string,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Document: data.Document,
			Locale:   data.Locale.Code,
			Route:    data.Route,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	templateName := strings.TrimSpace(data.Template)
	if templateName == "" {
		templateName = "page.html"
	}
	outcome.diagnostic.Template = templateName

	if s.cfg.Incremental && !buildCtx.Options.Force {
		destRel := buildOutputPath(data.Route, data.Locale.Code, buildCtx.DefaultLocale)
		expectedOutput := joinOutputPath(baseDir, destRel)
		if manifest.shouldSkipPage(data.Document, data.Locale.Code, data.Metadata.Hash, expectedOutput) {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	templateCtx := TemplateContext{
		Site: siteMeta,
		Page: PageRenderingContext{
			Kind:     data.Kind,
			Page:     data.Page,
			Post:     data.Post,
			Posts:    data.Posts,
			Tag:      data.Tag,
			Projects: data.Projects,
			Locale:   data.Locale,
			Route:    data.Route,
			Menus:    data.Menus,
			Metadata: data.Metadata,
		},
		Build: BuildMetadata{
			GeneratedAt: buildCtx.GeneratedAt,
			Options:     buildCtx.Options,
		},
		Theme:   buildThemeContext(data.ThemeSelection, s.cfg.Theming),
		Helpers: newTemplateHelpers(siteMeta.DefaultLocale, data.Locale, siteMeta.BaseURL),
	}

	start := time.Now()
	rendered, err := s.deps.Renderer.RenderTemplate(templateName, templateCtx)
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for %s (%s): %w", templateName, data.Document, data.Locale.Code, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Document: data.Document,
		Locale:   data.Locale.Code,
		Route:    data.Route,
		Template: templateName,
		HTML:     rendered,
		Metadata: data.Metadata,
		Duration: duration,
	}
	return outcome
}

func (s *service) persistPages(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	pages []RenderedPage,
) error {
	if len(pages) == 0 {
		return nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		route := pages[i].Route
		destRel := buildOutputPath(route, pages[i].Locale, buildCtx.DefaultLocale)
		if strings.TrimSpace(destRel) == "" {
			destRel = "index.html"
		}
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Output = fullPath
		pages[i].Checksum = checksum

		metadata := map[string]string{
			"document": pages[i].Document,
			"route":    route,
			"template": pages[i].Template,
		}
		if s.cfg.Incremental {
			metadata["incremental"] = "true"
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Locale:      pages[i].Locale,
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type assetCopySummary struct {
	Built   int
	Skipped int
	Keys    map[string]struct{}
}

func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	manifest *buildManifest,
	baseDir string,
) (assetCopySummary, error) {
	summary := assetCopySummary{Keys: map[string]struct{}{}}
	if s.deps.Assets == nil || buildCtx.Theme == nil {
		return summary, nil
	}
	if strings.TrimSpace(baseDir) == "" {
		baseDir = strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return summary, err
		}
	}

	theme := buildCtx.Theme
	for _, asset := range collectThemeAssets(buildCtx.Selection) {
		key := manifest.assetKey(theme.Name, asset)
		if _, ok := summary.Keys[key]; ok {
			continue
		}
		summary.Keys[key] = struct{}{}

		reader, err := s.deps.Assets.Open(ctx, theme, asset)
		if err != nil {
			return summary, err
		}
		data, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			return summary, err
		}

		destRel := assetOutputPath(asset)
		fullPath := joinOutputPath(baseDir, destRel)
		checksum := computeHash(data)
		if s.cfg.Incremental && manifest.shouldSkipAsset(theme.Name, asset, checksum, fullPath) {
			summary.Skipped++
			continue
		}
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return summary, err
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(data),
			Size:        int64(len(data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(destRel),
			Checksum:    checksum,
			Metadata: map[string]string{
				"theme": theme.Name,
				"asset": asset,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return summary, err
		}
		summary.Built++
		manifest.setAsset(manifestAsset{
			Key:      key,
			Theme:    theme.Name,
			Source:   asset,
			Output:   fullPath,
			Checksum: checksum,
			Size:     int64(len(data)),
			CopiedAt: s.now(),
		})
	}
	return summary, nil
}

// assetOutputPath keeps theme-relative asset layouts; files outside an
// assets/ directory are tucked under one so they never collide with pages.
func assetOutputPath(asset string) string {
	cleaned := strings.TrimLeft(strings.TrimSpace(asset), "/")
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, "assets/") {
		return cleaned
	}
	return path.Join("assets", cleaned)
}

func (s *service) mergeRenderedForSitemap(
	buildCtx *BuildContext,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	if buildCtx == nil || manifest == nil {
		return append([]RenderedPage(nil), rendered...)
	}

	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.Document, page.Locale)] = page
	}

	sitemap := make([]RenderedPage, 0, len(buildCtx.Pages))
	for _, data := range buildCtx.Pages {
		key := manifest.pageKey(data.Document, data.Locale.Code)
		if page, ok := renderedByKey[key]; ok {
			sitemap = append(sitemap, page)
			continue
		}
		if entry, ok := manifest.lookupPage(data.Document, data.Locale.Code); ok {
			sitemap = append(sitemap, RenderedPage{
				Document: data.Document,
				Locale:   data.Locale.Code,
				Route:    entry.Route,
				Output:   entry.Output,
				Template: entry.Template,
				Metadata: DependencyMetadata{
					Hash:         entry.Hash,
					LastModified: entry.LastModified,
				},
				Checksum: entry.Checksum,
			})
			continue
		}
		sitemap = append(sitemap, RenderedPage{
			Document: data.Document,
			Locale:   data.Locale.Code,
			Route:    data.Route,
			Template: data.Template,
			Metadata: data.Metadata,
		})
	}
	return sitemap
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return newBuildManifest(), nil
	}
	rows, err := s.deps.Storage.Query(ctx, storage.OpRead, target)
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	if rows == nil {
		return newBuildManifest(), nil
	}
	defer rows.Close()
	if !rows.Next() {
		return newBuildManifest(), nil
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("generator: scan manifest: %w", err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func (s *service) manifestTargetPath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return joinOutputPath(base, manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	if manifest == nil {
		return nil
	}
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if strings.TrimSpace(target) == "" {
		return nil
	}
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, path.Dir(target)); err != nil {
		return err
	}
	metadata := map[string]string{
		"version": strconv.Itoa(manifest.Version),
	}
	if !manifest.GeneratedAt.IsZero() {
		metadata["generated_at"] = manifest.GeneratedAt.UTC().Format(time.RFC3339)
	}
	req := writeFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    metadata,
	}
	return writer.WriteFile(ctx, req)
}

// removeTracked deletes every artifact the manifest knows about, then the
// manifest file itself. Removal keeps going past individual failures so one
// stale path cannot strand the rest.
func (s *service) removeTracked(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	if manifest == nil {
		return nil
	}
	var errs []error
	for _, output := range manifest.outputs() {
		if err := writer.Remove(ctx, output); err != nil {
			errs = append(errs, err)
		}
	}
	if err := writer.Remove(ctx, s.manifestTargetPath()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	pages []RenderedPage,
	manifest *buildManifest,
) error {
	body := buildSitemap(siteMeta.BaseURL, siteMeta.DefaultLocale, pages, buildCtx.GeneratedAt)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	checksum := computeHashFromString(body)
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(body),
		Size:        int64(len(body)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    checksum,
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return err
	}
	manifest.setArtifact(manifestArtifact{
		Path:      fullPath,
		Category:  string(categorySitemap),
		Checksum:  checksum,
		Size:      int64(len(body)),
		WrittenAt: buildCtx.GeneratedAt,
	})
	return nil
}

func (s *service) writeRobots(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	manifest *buildManifest,
) error {
	body := buildRobots(siteMeta.BaseURL, s.cfg.GenerateSitemap)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	checksum := computeHashFromString(body)
	writtenAt := s.now()
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(body),
		Size:        int64(len(body)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    checksum,
		Metadata: map[string]string{
			"generated_at": writtenAt.UTC().Format(time.RFC3339),
		},
	}
	if err := writer.WriteFile(ctx, req); err != nil {
		return err
	}
	manifest.setArtifact(manifestArtifact{
		Path:      fullPath,
		Category:  string(categoryRobots),
		Checksum:  checksum,
		Size:      int64(len(body)),
		WrittenAt: writtenAt,
	})
	return nil
}

func (s *service) effectiveWorkerCount(localeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if localeCount > 0 && workers > localeCount {
		return localeCount
	}
	return workers
}

func isFullScope(opts BuildOptions) bool {
	return len(opts.Locales) == 0 && len(opts.Slugs) == 0
}

func groupPagesByLocale(pages []*PageData) map[string][]*PageData {
	grouped := make(map[string][]*PageData, len(pages))
	for _, page := range pages {
		if page == nil {
			continue
		}
		code := page.Locale.Code
		grouped[code] = append(grouped[code], page)
	}
	return grouped
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildPage(context.Context, string, string) error {
	return ErrServiceDisabled
}

func (disabledService) BuildAssets(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) BuildSitemap(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) Diff(context.Context, BuildOptions) (*DiffResult, error) {
	return nil, ErrServiceDisabled
}
