package bootstrap

import (
	"fmt"
	"strings"

	folio "github.com/goliatone/go-folio"
	staticcmd "github.com/goliatone/go-folio/internal/commands/static"
	"github.com/goliatone/go-folio/internal/di"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// Options captures configuration for the folio CLI bootstrap.
type Options struct {
	ConfigPath     string
	OutputDir      string
	Workers        int
	LoggerProvider interfaces.LoggerProvider
}

// Handlers bundles the command handlers the CLI dispatches to.
type Handlers struct {
	Build   *staticcmd.BuildSiteHandler
	Diff    *staticcmd.DiffSiteHandler
	Clean   *staticcmd.CleanSiteHandler
	Sitemap *staticcmd.SitemapSiteHandler
}

// Resources wraps the folio module plus the configured handlers and logger.
type Resources struct {
	Module   *folio.Module
	Handlers Handlers
	Logger   interfaces.Logger
}

// BuildModule constructs a folio module configured for generator operations.
// When ConfigPath is empty the module runs on defaults, expecting the
// conventional content/, translations/, and themes/ layout in the working
// directory.
func BuildModule(opts Options) (*Resources, error) {
	var (
		cfg folio.Config
		err error
	)
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		cfg, err = folio.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("load site config: %w", err)
		}
	} else {
		cfg = folio.DefaultConfig()
	}

	cfg.Generator.Enabled = true
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Generator.OutputDir = dir
	}
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := folio.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise folio module: %w", err)
	}

	logger := logging.GeneratorLogger(module.Container().LoggerProvider())
	gates := staticcmd.FeatureGates{
		GeneratorEnabled: func() bool { return true },
	}
	service := module.Generator()

	return &Resources{
		Module: module,
		Handlers: Handlers{
			Build:   staticcmd.NewBuildSiteHandler(service, logger, gates),
			Diff:    staticcmd.NewDiffSiteHandler(service, logger, gates),
			Clean:   staticcmd.NewCleanSiteHandler(service, logger, gates),
			Sitemap: staticcmd.NewSitemapSiteHandler(service, logger, gates),
		},
		Logger: logger,
	}, nil
}

// SplitList parses a comma separated value list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
