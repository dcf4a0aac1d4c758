// Package render backs the static generator with an html/template
// renderer. Templates are discovered by walking the theme directory for
// .html and .tmpl files; site helpers (translate, route, absRoute) are
// injected at construction on top of the built-in function set.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrTemplatesParsed is returned by RegisterFilter after the first render;
// html/template fixes the function map at parse time.
var ErrTemplatesParsed = errors.New("render: templates already parsed")

// Config configures a Renderer.
type Config struct {
	// BaseDir is walked recursively for .html and .tmpl files. Parsed
	// templates are addressed by base filename.
	BaseDir string

	// Funcs adds template functions on top of the built-ins safeHTML,
	// formatDate, upper, and lower.
	Funcs map[string]any
}

// Renderer implements interfaces.TemplateRenderer over html/template.
type Renderer struct {
	baseDir string

	mu     sync.Mutex
	funcs  template.FuncMap
	parsed bool
	tpl    *template.Template
	err    error
}

// New inspects the template directory and returns a lazy renderer. Files
// parse on the first render so filters can still be registered after
// construction.
func New(cfg Config) (*Renderer, error) {
	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("render: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("render: template path %q is not a directory", cfg.BaseDir)
	}

	funcs := template.FuncMap{
		"safeHTML":   toHTML,
		"formatDate": FormatDate,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
	}
	for name, fn := range cfg.Funcs {
		if strings.TrimSpace(name) == "" || fn == nil {
			continue
		}
		funcs[name] = fn
	}

	return &Renderer{baseDir: cfg.BaseDir, funcs: funcs}, nil
}

// Render is an alias for RenderTemplate.
func (r *Renderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template. Without an explicit writer
// the rendered output is returned as a string.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("render: template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.ExecuteTemplate(writer, name, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// RenderString parses content as a one-off template with the renderer's
// function set.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	funcs := make(template.FuncMap, len(r.funcs))
	for name, fn := range r.funcs {
		funcs[name] = fn
	}
	r.mu.Unlock()

	tpl, err := template.New("inline").Funcs(funcs).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

// RegisterFilter adds a two-argument template function. Filters must be
// registered before the first render.
func (r *Renderer) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("render: filter requires a name and a function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parsed {
		return ErrTemplatesParsed
	}
	r.funcs[name] = fn
	return nil
}

// GlobalContext is accepted for interface compatibility; build-wide data
// travels in the render context the generator assembles per page.
func (r *Renderer) GlobalContext(any) error {
	return nil
}

func (r *Renderer) ensureTemplates() (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parsed {
		return r.tpl, r.err
	}
	r.parsed = true

	var files []string
	walkErr := filepath.WalkDir(r.baseDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".html" && ext != ".tmpl" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		r.err = walkErr
		return nil, r.err
	}
	if len(files) == 0 {
		r.err = fmt.Errorf("render: no templates found in %s", r.baseDir)
		return nil, r.err
	}

	r.tpl, r.err = template.New("site-theme").Funcs(r.funcs).ParseFiles(files...)
	return r.tpl, r.err
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
