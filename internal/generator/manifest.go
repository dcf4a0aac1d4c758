package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".folio-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build to support
// incremental runs, diffs, and cleanup of previously written artifacts.
type buildManifest struct {
	Version     int                         `json:"version"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Pages       map[string]manifestPage     `json:"pages"`
	Assets      map[string]manifestAsset    `json:"assets"`
	Artifacts   map[string]manifestArtifact `json:"artifacts,omitempty"`
	Metadata    map[string]json.RawMessage  `json:"metadata,omitempty"`
}

type manifestPage struct {
	Document     string    `json:"document"`
	Locale       string    `json:"locale"`
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Template     string    `json:"template"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Key      string    `json:"key"`
	Theme    string    `json:"theme"`
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

// manifestArtifact records site-level outputs (sitemap, robots, feeds) so
// Clean can remove them and Diff can report changes.
type manifestArtifact struct {
	Path      string    `json:"path"`
	Category  string    `json:"category"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	WrittenAt time.Time `json:"written_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:     manifestFileVersion,
		Pages:       map[string]manifestPage{},
		Assets:      map[string]manifestAsset{},
		Artifacts:   map[string]manifestArtifact{},
		Metadata:    map[string]json.RawMessage{},
		GeneratedAt: time.Time{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]manifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	if manifest.Artifacts == nil {
		manifest.Artifacts = map[string]manifestArtifact{}
	}
	if manifest.Metadata == nil {
		manifest.Metadata = map[string]json.RawMessage{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	cloned := *m
	if cloned.Version == 0 {
		cloned.Version = manifestFileVersion
	}
	if cloned.Pages == nil {
		cloned.Pages = map[string]manifestPage{}
	}
	if cloned.Assets == nil {
		cloned.Assets = map[string]manifestAsset{}
	}
	if cloned.Artifacts == nil {
		cloned.Artifacts = map[string]manifestArtifact{}
	}
	if cloned.Metadata == nil {
		cloned.Metadata = map[string]json.RawMessage{}
	}
	// encoding/json emits map keys in sorted order, so the keyed shape
	// is already deterministic and parseManifest reads back what was
	// written.
	return json.MarshalIndent(cloned, "", "  ")
}

func (m *buildManifest) pageKey(document, locale string) string {
	return strings.ToLower(strings.TrimSpace(document)) + "::" + strings.ToLower(strings.TrimSpace(locale))
}

func (m *buildManifest) assetKey(theme, source string) string {
	return strings.ToLower(strings.TrimSpace(theme)) + "::" + strings.TrimSpace(source)
}

func (m *buildManifest) lookupPage(document, locale string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[m.pageKey(document, locale)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[m.pageKey(entry.Document, entry.Locale)] = entry
}

func (m *buildManifest) shouldSkipPage(document, locale, hash, output string) bool {
	entry, ok := m.lookupPage(document, locale)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

func (m *buildManifest) lookupAsset(theme, source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[m.assetKey(theme, source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	key := strings.ToLower(entry.Key)
	if key == "" {
		key = m.assetKey(entry.Theme, entry.Source)
		entry.Key = key
	}
	m.Assets[key] = entry
}

func (m *buildManifest) shouldSkipAsset(theme, source, checksum, output string) bool {
	entry, ok := m.lookupAsset(theme, source)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

func (m *buildManifest) setArtifact(entry manifestArtifact) {
	if m == nil {
		return
	}
	if m.Artifacts == nil {
		m.Artifacts = map[string]manifestArtifact{}
	}
	m.Artifacts[strings.TrimSpace(entry.Path)] = entry
}

// outputs lists every artifact path the manifest tracks, sorted and deduped.
// Clean walks this list when removing a previous build.
func (m *buildManifest) outputs() []string {
	if m == nil {
		return nil
	}
	seen := map[string]struct{}{}
	for _, page := range m.Pages {
		if out := strings.TrimSpace(page.Output); out != "" {
			seen[out] = struct{}{}
		}
	}
	for _, asset := range m.Assets {
		if out := strings.TrimSpace(asset.Output); out != "" {
			seen[out] = struct{}{}
		}
	}
	for _, artifact := range m.Artifacts {
		if out := strings.TrimSpace(artifact.Path); out != "" {
			seen[out] = struct{}{}
		}
	}
	paths := make([]string, 0, len(seen))
	for out := range seen {
		paths = append(paths, out)
	}
	sort.Strings(paths)
	return paths
}

func (m *buildManifest) prunePages(keys map[string]struct{}) {
	if len(keys) == 0 || len(m.Pages) == 0 {
		return
	}
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}

func (m *buildManifest) pruneAssets(keys map[string]struct{}) {
	if len(keys) == 0 || len(m.Assets) == 0 {
		return
	}
	for key := range m.Assets {
		if _, ok := keys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}
