// Package folio turns a directory of Markdown content, translation
// bundles, and theme templates into a localized static site. The module
// façade wires the content tree, i18n catalogues, navigation menus, and
// the generator behind a single configuration document.
package folio

import (
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/di"
	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/internal/i18n"
	"github.com/goliatone/go-folio/internal/navigation"
	"github.com/goliatone/go-folio/internal/routes"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ContentService exports the content tree contract for consumers of the folio package.
type ContentService = content.Service

// I18nService exports the translation service contract.
type I18nService = i18n.Service

// NavigationService exports the menu builder contract.
type NavigationService = navigation.Service

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the generator build scope options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build report.
type BuildResult = generator.BuildResult

// DiffResult exports the generator diff report.
type DiffResult = generator.DiffResult

// Module represents the top level folio runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a folio module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases container-owned resources.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Content returns the configured content service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// I18n returns the configured translation service.
func (m *Module) I18n() I18nService {
	return m.container.I18nService()
}

// Navigation returns the configured menu builder.
func (m *Module) Navigation() NavigationService {
	return m.container.NavigationService()
}

// Routes returns the locale-aware route table.
func (m *Module) Routes() *routes.Resolver {
	return m.container.RouteResolver()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Markdown returns the markdown service when configured.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Logger returns a module-scoped logger backed by the configured provider.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.Logger(module)
}
