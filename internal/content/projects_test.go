package content

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-folio/internal/schema"
)

func TestLoadProjectsOrdering(t *testing.T) {
	projects, err := LoadProjects(defaultDataFS(), "projects.yaml")
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}

	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}

	got := []string{projects[0].Slug, projects[1].Slug, projects[2].Slug}
	want := []string{"orbit-tracker", "new-thing", "old-tool"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	if !projects[0].Featured {
		t.Fatalf("expected featured project first")
	}
	if projects[0].ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected deterministic project ID")
	}
}

func TestProjectsResolveLocalizedDescription(t *testing.T) {
	svc := newTestService(t, defaultSiteFS(), defaultDataFS())
	if err := svc.LoadTree(context.Background()); err != nil {
		t.Fatalf("LoadTree: %v", err)
	}

	german, err := svc.Projects(context.Background(), "de")
	if err != nil {
		t.Fatalf("Projects(de): %v", err)
	}
	if german[0].Description != "Verfolgt Satelliten" {
		t.Fatalf("expected localized description, got %q", german[0].Description)
	}

	hindi, err := svc.Projects(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Projects(hi): %v", err)
	}
	if hindi[0].Description != "Tracks satellites overhead" {
		t.Fatalf("expected base description for locales without override, got %q", hindi[0].Description)
	}
}

func TestLoadProjectsRejectsUnknownKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"projects.yaml": &fstest.MapFile{
			Data: []byte("projects:\n  - title: Thing\n    license: MIT\n"),
		},
	}

	_, err := LoadProjects(fsys, "projects.yaml")
	if !errors.Is(err, schema.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestLoadProjectsRejectsDuplicateSlugs(t *testing.T) {
	fsys := fstest.MapFS{
		"projects.yaml": &fstest.MapFile{
			Data: []byte("projects:\n  - title: Thing\n  - title: thing\n"),
		},
	}

	_, err := LoadProjects(fsys, "projects.yaml")
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}
