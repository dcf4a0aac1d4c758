// Package markdown turns Markdown files on disk into renderable documents.
// It extracts YAML front matter, detects the locale a file belongs to, and
// converts the body into HTML through a configurable goldmark parser.
package markdown
