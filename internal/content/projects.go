package content

import (
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/schema"
)

type projectsFile struct {
	Projects []projectEntry `yaml:"projects"`
}

type projectEntry struct {
	Slug            string            `yaml:"slug"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	Tech            []string          `yaml:"tech"`
	Repo            string            `yaml:"repo"`
	LiveURL         string            `yaml:"live_url"`
	Year            int               `yaml:"year"`
	Featured        bool              `yaml:"featured"`
	Weight          int               `yaml:"weight"`
	DescriptionI18N map[string]string `yaml:"description_i18n"`
}

// LoadProjects reads and validates the projects data file, returning entries
// ordered featured first, then by year descending, weight, and title.
func LoadProjects(fsys fs.FS, path string) ([]*Project, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("content: read projects %s: %w", path, err)
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("content: parse projects %s: %w", path, err)
	}
	if err := schema.ValidateProjects(payload); err != nil {
		return nil, fmt.Errorf("content: projects %s: %w", path, err)
	}

	var file projectsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("content: parse projects %s: %w", path, err)
	}

	seen := map[string]struct{}{}
	projects := make([]*Project, 0, len(file.Projects))
	for _, entry := range file.Projects {
		slugKey := entry.Slug
		if slugKey == "" {
			slugKey = entry.Title
		}
		normalized, err := normalizeSlug(slugKey, path)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized]; ok {
			return nil, fmt.Errorf("%w: project %q in %s", ErrDuplicateSlug, normalized, path)
		}
		seen[normalized] = struct{}{}

		project := &Project{
			ID:          identity.ProjectUUID(normalized),
			Slug:        normalized,
			Title:       entry.Title,
			Description: entry.Description,
			Tech:        append([]string(nil), entry.Tech...),
			Repo:        entry.Repo,
			LiveURL:     entry.LiveURL,
			Year:        entry.Year,
			Featured:    entry.Featured,
			Weight:      entry.Weight,
		}
		if len(entry.DescriptionI18N) > 0 {
			project.DescriptionI18N = make(map[string]string, len(entry.DescriptionI18N))
			for locale, value := range entry.DescriptionI18N {
				project.DescriptionI18N[locale] = value
			}
		}
		projects = append(projects, project)
	}

	sortProjects(projects)
	return projects, nil
}

func sortProjects(projects []*Project) {
	sort.Slice(projects, func(i, j int) bool {
		a, b := projects[i], projects[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Title < b.Title
	})
}
