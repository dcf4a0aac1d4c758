package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	return dir
}

func TestRendererRendersTemplatesAndPartials(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html":            `{{template "header.html" .}}<main>{{.Title}}</main>`,
		"partials/header.html": `<header>{{.Site}}</header>`,
	})

	renderer, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := renderer.Render("page.html", map[string]any{"Title": "Hello", "Site": "Folio"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := "<header>Folio</header><main>Hello</main>"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRendererUnknownTemplate(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"page.html": "ok"})

	renderer, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := renderer.Render("missing.html", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRendererBuiltinsAndInjectedFuncs(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html": `{{safeHTML .Body}}|{{upper .Name}}|{{formatDate "de" .Date}}|{{greet .Name}}`,
	})

	renderer, err := New(Config{
		BaseDir: dir,
		Funcs: map[string]any{
			"greet": func(name string) string { return "Hallo " + name },
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := renderer.Render("page.html", map[string]any{
		"Body": "<b>bold</b>",
		"Name": "folio",
		"Date": time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := "<b>bold</b>|FOLIO|1. März 2026|Hallo folio"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRendererWritesToWriter(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"page.html": "{{.N}}"})

	renderer, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var sb strings.Builder
	got, err := renderer.Render("page.html", map[string]any{"N": 42}, &sb)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty return when writing to writer, got %q", got)
	}
	if sb.String() != "42" {
		t.Fatalf("writer got %q", sb.String())
	}
}

func TestRendererRenderString(t *testing.T) {
	dir := writeTemplates(t, map[string]string{"page.html": "unused"})

	renderer, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := renderer.RenderString(`{{lower .Word}}`, map[string]any{"Word": "LOUD"})
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if got != "loud" {
		t.Fatalf("RenderString() = %q", got)
	}
}

func TestRendererRegisterFilter(t *testing.T) {
	dir := writeTemplates(t, map[string]string{
		"page.html": `{{truncate .Text 5}}`,
	})

	renderer, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	truncate := func(input any, param any) (any, error) {
		text, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("truncate expects string, got %T", input)
		}
		limit, ok := param.(int)
		if !ok {
			return nil, fmt.Errorf("truncate expects int limit, got %T", param)
		}
		if len(text) <= limit {
			return text, nil
		}
		return text[:limit], nil
	}

	if err := renderer.RegisterFilter("truncate", truncate); err != nil {
		t.Fatalf("RegisterFilter() error = %v", err)
	}

	got, err := renderer.Render("page.html", map[string]any{"Text": "abcdefgh"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "abcde" {
		t.Fatalf("Render() = %q", got)
	}

	if err := renderer.RegisterFilter("late", truncate); !errors.Is(err, ErrTemplatesParsed) {
		t.Fatalf("expected ErrTemplatesParsed, got %v", err)
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	if _, err := New(Config{BaseDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		locale string
		want   string
	}{
		{locale: "en", want: "March 1, 2026"},
		{locale: "de", want: "1. März 2026"},
		{locale: "hi", want: "1 मार्च 2026"},
		{locale: "de-AT", want: "1. März 2026"},
		{locale: "fr", want: "March 1, 2026"},
	}

	for _, tc := range tests {
		if got := FormatDate(tc.locale, date); got != tc.want {
			t.Fatalf("FormatDate(%q) = %q, want %q", tc.locale, got, tc.want)
		}
	}

	if got := FormatDate("en", time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
