package bootstrap

import "testing"

func TestBuildModuleEnablesGenerator(t *testing.T) {
	resources, err := BuildModule(Options{})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer resources.Module.Close()

	if resources.Module == nil {
		t.Fatal("expected module to be initialised")
	}
	if resources.Handlers.Build == nil || resources.Handlers.Diff == nil ||
		resources.Handlers.Clean == nil || resources.Handlers.Sitemap == nil {
		t.Fatal("expected every handler to be configured")
	}
	container := resources.Module.Container()
	if container.GeneratorService() == nil {
		t.Fatal("expected generator service to be configured")
	}
}

func TestBuildModuleOverridesOutputDir(t *testing.T) {
	resources, err := BuildModule(Options{OutputDir: "public", Workers: 3})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer resources.Module.Close()

	cfg := resources.Module.Container().Config
	if cfg.Generator.OutputDir != "public" {
		t.Fatalf("expected output dir override, got %q", cfg.Generator.OutputDir)
	}
	if cfg.Generator.Workers != 3 {
		t.Fatalf("expected worker override, got %d", cfg.Generator.Workers)
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(" en, de ,,hi "); len(got) != 3 || got[0] != "en" || got[1] != "de" || got[2] != "hi" {
		t.Fatalf("unexpected split: %#v", got)
	}
	if got := SplitList("  "); got != nil {
		t.Fatalf("expected nil for blank input, got %#v", got)
	}
}
