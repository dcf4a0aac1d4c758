package interfaces

import (
	"io"
)

// TemplateRenderer is the rendering contract the static generator
// builds pages through. Render and RenderTemplate resolve a template
// by name from the active theme; RenderString evaluates ad-hoc
// template content with the same function set. When no writer is
// supplied the rendered output is returned as a string.
//
// RegisterFilter and GlobalContext configure the renderer before the
// first render; implementations may reject calls made after template
// parsing has happened.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
