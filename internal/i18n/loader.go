package i18n

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

//go:embed testdata/translations_fixture.json
var defaultFixtureData []byte

// DefaultFixture returns the embedded starter catalogues. The DI container
// falls back to it when a host configures neither a translation repository
// nor bundle files, so a zero-config module still verifies and builds.
func DefaultFixture() (*Fixture, error) {
	var fx Fixture
	if err := json.Unmarshal(defaultFixtureData, &fx); err != nil {
		return nil, fmt.Errorf("i18n: decode embedded fixture: %w", err)
	}
	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}
	return &fx, nil
}

// Fixture bundles a locale configuration with its translation catalogs.
// Tests and tooling use it to stand up an in-memory service from a
// single JSON document.
type Fixture struct {
	Config       Config                       `json:"config"`
	Translations map[string]map[string]string `json:"translations"`
}

// Loader reads a translation fixture from a file path.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the configured fixture file. Unknown fields are rejected
// so stale fixtures fail loudly instead of silently dropping keys.
func (l *Loader) Load(ctx context.Context) (*Fixture, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("i18n: loader path cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("i18n: open fixture %q: %w", l.path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var fx Fixture
	if err := decoder.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("i18n: decode fixture %q: %w", l.path, err)
	}
	if fx.Translations == nil {
		fx.Translations = map[string]map[string]string{}
	}
	return &fx, nil
}
