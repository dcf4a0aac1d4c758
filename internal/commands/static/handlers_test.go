package staticcmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-folio/internal/generator"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func TestBuildSiteHandler_Execute_Build(t *testing.T) {
	cmd := loadBuildFixture(t, "build_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{PagesBuilt: 3}, nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Result == nil {
			t.Fatalf("expected build result, got nil")
		}
		if env.Result.PagesBuilt != 3 {
			t.Fatalf("expected PagesBuilt 3, got %d", env.Result.PagesBuilt)
		}
		if env.Metadata["operation"] != "build" {
			t.Fatalf("expected operation build, got %v", env.Metadata["operation"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	if capturedOpts.Force != true {
		t.Fatalf("expected Force true, got %v", capturedOpts.Force)
	}
	if capturedOpts.DryRun {
		t.Fatalf("expected DryRun false")
	}
	if len(capturedOpts.Slugs) != len(cmd.Slugs) {
		t.Fatalf("expected %d slugs, got %d", len(cmd.Slugs), len(capturedOpts.Slugs))
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_AssetsOnly(t *testing.T) {
	cmd := loadBuildFixture(t, "build_assets.json")
	cmd.AssetsOnly = true

	assetsCalled := false
	svc := &fakeGeneratorService{
		buildAssetsFunc: func(ctx context.Context) error {
			assetsCalled = true
			return nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	callbackInvoked := false
	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Result != nil {
			t.Fatalf("expected nil result for assets build, got %#v", env.Result)
		}
		if env.Metadata["operation"] != "build_assets" {
			t.Fatalf("expected operation build_assets, got %v", env.Metadata["operation"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute assets: %v", err)
	}
	if !assetsCalled {
		t.Fatal("expected BuildAssets to be called")
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_PageBuild(t *testing.T) {
	cmd := BuildSiteCommand{
		Slugs:   []string{"first-light"},
		Locales: []string{" en "},
	}

	pageCalled := false
	svc := &fakeGeneratorService{
		buildPageFunc: func(ctx context.Context, slug, locale string) error {
			pageCalled = true
			if slug != "first-light" {
				t.Fatalf("expected slug first-light, got %s", slug)
			}
			if locale != "en" {
				t.Fatalf("expected locale en, got %s", locale)
			}
			return nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})

	callbackInvoked := false
	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Metadata["operation"] != "build_page" {
			t.Fatalf("expected operation build_page, got %v", env.Metadata["operation"])
		}
		if env.Metadata["slug"] != "first-light" {
			t.Fatalf("expected slug metadata, got %v", env.Metadata["slug"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute page build: %v", err)
	}
	if !pageCalled {
		t.Fatal("expected BuildPage to be called")
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_GeneratorDisabled(t *testing.T) {
	cmd := BuildSiteCommand{}
	svc := &fakeGeneratorService{}

	handler := NewBuildSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), cmd)
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestDiffSiteHandler_Execute(t *testing.T) {
	cmd := loadDiffFixture(t, "diff_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		diffFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.DiffResult, error) {
			capturedOpts = opts
			return &generator.DiffResult{
				Entries: []generator.DiffEntry{{Status: generator.DiffChanged}},
			}, nil
		},
	}

	handler := NewDiffSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Metadata["operation"] != "diff" {
			t.Fatalf("expected diff operation, got %v", env.Metadata["operation"])
		}
		if env.Diff == nil || env.Diff.Changed() != 1 {
			t.Fatalf("unexpected diff result: %#v", env.Diff)
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute diff: %v", err)
	}
	if !capturedOpts.Force {
		t.Fatal("expected Force to survive into diff options")
	}
	if len(capturedOpts.Locales) != 1 || capturedOpts.Locales[0] != "de" {
		t.Fatalf("expected normalized de locale, got %#v", capturedOpts.Locales)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestDiffSiteHandler_Execute_GeneratorDisabled(t *testing.T) {
	handler := NewDiffSiteHandler(&fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), DiffSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestCleanSiteHandler_Execute(t *testing.T) {
	cleanCalled := false
	svc := &fakeGeneratorService{
		cleanFunc: func(ctx context.Context) error {
			cleanCalled = true
			return nil
		},
	}

	handler := NewCleanSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if !cleanCalled {
		t.Fatal("expected Clean to be called")
	}
}

func TestCleanSiteHandler_Execute_GeneratorDisabled(t *testing.T) {
	handler := NewCleanSiteHandler(&fakeGeneratorService{}, nil, FeatureGates{GeneratorEnabled: alwaysFalse})
	err := handler.Execute(context.Background(), CleanSiteCommand{})
	if !errors.Is(err, generator.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestSitemapSiteHandler_Execute(t *testing.T) {
	sitemapCalled := false
	svc := &fakeGeneratorService{
		buildSitemapFunc: func(ctx context.Context) error {
			sitemapCalled = true
			return nil
		},
	}

	handler := NewSitemapSiteHandler(svc, nil, FeatureGates{GeneratorEnabled: alwaysTrue})
	if err := handler.Execute(context.Background(), SitemapSiteCommand{}); err != nil {
		t.Fatalf("execute sitemap: %v", err)
	}
	if !sitemapCalled {
		t.Fatal("expected BuildSitemap to be called")
	}
}

func TestBuildSiteCommandValidate(t *testing.T) {
	cmd := loadBuildFixture(t, "build_invalid_locale.json")
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for invalid locales")
	}
}

func TestDiffSiteCommandValidateRejectsBlankSlug(t *testing.T) {
	cmd := DiffSiteCommand{Slugs: []string{"about", "  "}}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for blank slug")
	}
}

func loadBuildFixture(t *testing.T, name string) BuildSiteCommand {
	t.Helper()
	var cmd BuildSiteCommand
	loadFixture(t, name, &cmd)
	return cmd
}

func loadDiffFixture(t *testing.T, name string) DiffSiteCommand {
	t.Helper()
	var cmd DiffSiteCommand
	loadFixture(t, name, &cmd)
	return cmd
}

func loadFixture(t *testing.T, name string, target any) {
	t.Helper()
	if err := testsupport.LoadGolden(filepath.Join("testdata", name), target); err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
}

type fakeGeneratorService struct {
	buildFunc        func(context.Context, generator.BuildOptions) (*generator.BuildResult, error)
	buildPageFunc    func(context.Context, string, string) error
	buildAssetsFunc  func(context.Context) error
	buildSitemapFunc func(context.Context) error
	cleanFunc        func(context.Context) error
	diffFunc         func(context.Context, generator.BuildOptions) (*generator.DiffResult, error)
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc != nil {
		return f.buildFunc(ctx, opts)
	}
	return nil, nil
}

func (f *fakeGeneratorService) BuildPage(ctx context.Context, slug, locale string) error {
	if f.buildPageFunc != nil {
		return f.buildPageFunc(ctx, slug, locale)
	}
	return nil
}

func (f *fakeGeneratorService) BuildAssets(ctx context.Context) error {
	if f.buildAssetsFunc != nil {
		return f.buildAssetsFunc(ctx)
	}
	return nil
}

func (f *fakeGeneratorService) BuildSitemap(ctx context.Context) error {
	if f.buildSitemapFunc != nil {
		return f.buildSitemapFunc(ctx)
	}
	return nil
}

func (f *fakeGeneratorService) Clean(ctx context.Context) error {
	if f.cleanFunc != nil {
		return f.cleanFunc(ctx)
	}
	return nil
}

func (f *fakeGeneratorService) Diff(ctx context.Context, opts generator.BuildOptions) (*generator.DiffResult, error) {
	if f.diffFunc != nil {
		return f.diffFunc(ctx, opts)
	}
	return &generator.DiffResult{}, nil
}

func alwaysTrue() bool  { return true }
func alwaysFalse() bool { return false }
