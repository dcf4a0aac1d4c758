// Command folio renders a configured site into static artifacts. The
// build, diff, clean, and sitemap subcommands dispatch through the same
// command handlers the library exposes, so CLI runs and embedded runs
// behave identically.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-folio/cmd/folio/internal/bootstrap"
	staticcmd "github.com/goliatone/go-folio/internal/commands/static"
)

type buildHandler interface {
	Execute(ctx context.Context, msg staticcmd.BuildSiteCommand) error
}

type diffHandler interface {
	Execute(ctx context.Context, msg staticcmd.DiffSiteCommand) error
}

type cleanHandler interface {
	Execute(ctx context.Context, msg staticcmd.CleanSiteCommand) error
}

type sitemapHandler interface {
	Execute(ctx context.Context, msg staticcmd.SitemapSiteCommand) error
}

type handlerSet struct {
	build   buildHandler
	diff    diffHandler
	clean   cleanHandler
	sitemap sitemapHandler
}

type moduleOptions struct {
	configPath string
	outputDir  string
	workers    int
}

type moduleResources struct {
	handlers handlerSet
	cleanup  func()
}

var moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
	resources, err := bootstrap.BuildModule(bootstrap.Options{
		ConfigPath: opts.configPath,
		OutputDir:  opts.outputDir,
		Workers:    opts.workers,
	})
	if err != nil {
		return nil, err
	}
	return &moduleResources{
		handlers: handlerSet{
			build:   resources.Handlers.Build,
			diff:    resources.Handlers.Diff,
			clean:   resources.Handlers.Clean,
			sitemap: resources.Handlers.Sitemap,
		},
		cleanup: func() { resources.Module.Close() },
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("folio: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand (build|diff|clean|sitemap)")
	}

	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "diff":
		return runDiff(args[1:])
	case "clean":
		return runClean(args[1:])
	case "sitemap":
		return runSitemap(args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q (build|diff|clean|sitemap)", args[0])
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("folio-build", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the site configuration file")
	outputDir := fs.String("output", "", "Override the configured output directory")
	workers := fs.Int("workers", 0, "Override the configured worker count")
	slugs := fs.String("slug", "", "Comma separated document slugs to rebuild")
	locales := fs.String("locale", "", "Comma separated locales to rebuild")
	force := fs.Bool("force", false, "Rebuild even when the manifest marks pages unchanged")
	dryRun := fs.Bool("dry-run", false, "Render without writing artifacts")
	assets := fs.Bool("assets", false, "Copy theme assets only")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := buildResources(*configPath, *outputDir, *workers)
	if err != nil {
		return err
	}
	defer resources.release()

	handler := resources.handlers.build
	if handler == nil {
		return fmt.Errorf("build handler not configured")
	}

	cmd := staticcmd.BuildSiteCommand{
		Slugs:          bootstrap.SplitList(*slugs),
		Locales:        bootstrap.SplitList(*locales),
		Force:          *force,
		DryRun:         *dryRun,
		AssetsOnly:     *assets,
		ResultCallback: logEnvelope,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}
	return nil
}

func runDiff(args []string) error {
	fs := flag.NewFlagSet("folio-diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the site configuration file")
	slugs := fs.String("slug", "", "Comma separated document slugs to compare")
	locales := fs.String("locale", "", "Comma separated locales to compare")
	force := fs.Bool("force", false, "Treat every artifact as pending")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := buildResources(*configPath, "", 0)
	if err != nil {
		return err
	}
	defer resources.release()

	handler := resources.handlers.diff
	if handler == nil {
		return fmt.Errorf("diff handler not configured")
	}

	cmd := staticcmd.DiffSiteCommand{
		Slugs:          bootstrap.SplitList(*slugs),
		Locales:        bootstrap.SplitList(*locales),
		Force:          *force,
		ResultCallback: logEnvelope,
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute diff command: %w", err)
	}
	return nil
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("folio-clean", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the site configuration file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := buildResources(*configPath, "", 0)
	if err != nil {
		return err
	}
	defer resources.release()

	handler := resources.handlers.clean
	if handler == nil {
		return fmt.Errorf("clean handler not configured")
	}

	if err := handler.Execute(context.Background(), staticcmd.CleanSiteCommand{}); err != nil {
		return fmt.Errorf("execute clean command: %w", err)
	}
	log.Printf("module=folio operation=clean removed tracked artifacts")
	return nil
}

func runSitemap(args []string) error {
	fs := flag.NewFlagSet("folio-sitemap", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the site configuration file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := buildResources(*configPath, "", 0)
	if err != nil {
		return err
	}
	defer resources.release()

	handler := resources.handlers.sitemap
	if handler == nil {
		return fmt.Errorf("sitemap handler not configured")
	}

	if err := handler.Execute(context.Background(), staticcmd.SitemapSiteCommand{}); err != nil {
		return fmt.Errorf("execute sitemap command: %w", err)
	}
	log.Printf("module=folio operation=sitemap rebuilt sitemap.xml")
	return nil
}

func buildResources(configPath, outputDir string, workers int) (*moduleResources, error) {
	resources, err := moduleBuilder(moduleOptions{
		configPath: configPath,
		outputDir:  outputDir,
		workers:    workers,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	if resources == nil {
		return nil, fmt.Errorf("module resources not configured")
	}
	return resources, nil
}

func (r *moduleResources) release() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}

func logEnvelope(env staticcmd.ResultEnvelope) {
	operation := "unknown"
	if op, ok := env.Metadata["operation"].(string); ok {
		operation = op
	}

	switch {
	case env.Result != nil:
		log.Printf(
			"module=folio operation=%s summary pages_built=%d pages_skipped=%d feeds=%d dry_run=%t duration=%s",
			operation,
			env.Result.PagesBuilt,
			env.Result.PagesSkipped,
			env.Result.FeedsBuilt,
			env.Result.DryRun,
			env.Result.Duration,
		)
	case env.Diff != nil:
		log.Printf(
			"module=folio operation=%s summary entries=%d pending=%d",
			operation,
			len(env.Diff.Entries),
			env.Diff.Changed(),
		)
	default:
		log.Printf("module=folio operation=%s completed", operation)
	}
}
