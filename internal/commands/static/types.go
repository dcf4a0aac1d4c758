package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-folio/internal/generator"
)

const (
	buildSiteMessageType   = "folio.static.build"
	diffSiteMessageType    = "folio.static.diff"
	cleanSiteMessageType   = "folio.static.clean"
	sitemapSiteMessageType = "folio.static.sitemap"
)

// ResultCallback receives results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a result is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Diff     *generator.DiffResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	Locales        []string       `json:"locales,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	AssetsOnly     bool           `json:"assets_only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures locales and slugs are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if err := validateLocales(m.Locales, "folio.static.build.locale_invalid"); err != nil {
		errs["locales"] = err
	}
	if err := validateSlugs(m.Slugs, "folio.static.build.slug_invalid"); err != nil {
		errs["slugs"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiffSiteCommand reports which artifacts a build would change without writing anything.
type DiffSiteCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	Locales        []string       `json:"locales,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate ensures locales and slugs are well-formed.
func (m DiffSiteCommand) Validate() error {
	errs := validation.Errors{}
	if err := validateLocales(m.Locales, "folio.static.diff.locale_invalid"); err != nil {
		errs["locales"] = err
	}
	if err := validateSlugs(m.Slugs, "folio.static.diff.slug_invalid"); err != nil {
		errs["slugs"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generator artifacts from the configured storage backend.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// SitemapSiteCommand regenerates sitemap.xml without a full build.
type SitemapSiteCommand struct{}

// Type implements command.Message.
func (SitemapSiteCommand) Type() string { return sitemapSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (SitemapSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}

func validateLocales(locales []string, code string) error {
	for _, locale := range locales {
		if strings.TrimSpace(locale) == "" {
			return validation.NewError(code, "locales must not contain empty values")
		}
	}
	return nil
}

func validateSlugs(slugs []string, code string) error {
	for _, slug := range slugs {
		if strings.TrimSpace(slug) == "" {
			return validation.NewError(code, "slugs must not contain empty values")
		}
	}
	return nil
}
