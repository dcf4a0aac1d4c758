package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/site.schema.json
var siteSchemaJSON []byte

//go:embed schemas/projects.schema.json
var projectsSchemaJSON []byte

//go:embed schemas/translations.schema.json
var translationsSchemaJSON []byte

var (
	siteOnce         sync.Once
	siteSchema       *jsonschema.Schema
	siteErr          error
	projectsOnce     sync.Once
	projects         *jsonschema.Schema
	projectsErr      error
	translationsOnce sync.Once
	translations     *jsonschema.Schema
	translationsErr  error
)

// ValidateSite checks a decoded site configuration document against the
// embedded schema. The payload is normalised through a JSON round trip so
// values produced by YAML decoding validate the same way JSON input would.
func ValidateSite(payload any) error {
	siteOnce.Do(func() {
		siteSchema, siteErr = compile("site.schema.json", siteSchemaJSON)
	})
	if siteErr != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, siteErr)
	}
	return validate(siteSchema, payload)
}

// ValidateProjects checks a decoded projects data document against the
// embedded schema.
func ValidateProjects(payload any) error {
	projectsOnce.Do(func() {
		projects, projectsErr = compile("projects.schema.json", projectsSchemaJSON)
	})
	if projectsErr != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, projectsErr)
	}
	return validate(projects, payload)
}

// ValidateTranslations checks a decoded locale bundle: string leaves nested
// under arbitrary section maps.
func ValidateTranslations(payload any) error {
	translationsOnce.Do(func() {
		translations, translationsErr = compile("translations.schema.json", translationsSchemaJSON)
	})
	if translationsErr != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, translationsErr)
	}
	return validate(translations, payload)
}

func compile(name string, document []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(document)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

func validate(compiled *jsonschema.Schema, payload any) error {
	normalized, err := normalizePayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(normalized); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func normalizePayload(payload any) (any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
