package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-folio/internal/schema"
)

// LoadBundles reads per-locale YAML catalogues from dir inside fsys. Each
// bundle is named <locale>.yaml (or .yml) and may nest maps; nested keys are
// flattened with dots, so {nav: {home: Home}} stores "nav.home".
func LoadBundles(fsys fs.FS, dir string) (map[string]map[string]string, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read bundle dir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	translations := make(map[string]map[string]string, len(names))
	for _, name := range names {
		locale := NormalizeLocale(strings.TrimSuffix(name, path.Ext(name)))
		if locale == "" {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read bundle %q: %w", name, err)
		}

		var document map[string]any
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("i18n: parse bundle %q: %w", name, err)
		}
		if err := schema.ValidateTranslations(document); err != nil {
			return nil, fmt.Errorf("i18n: bundle %q: %w", name, err)
		}

		catalog := make(map[string]string)
		flattenBundle("", document, catalog)
		translations[locale] = catalog
	}

	return translations, nil
}

func flattenBundle(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flattenBundle(full, typed, out)
		case string:
			out[full] = typed
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(typed)
		}
	}
}
