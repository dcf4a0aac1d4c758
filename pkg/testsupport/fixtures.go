package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGolden reads a JSON fixture from disk and decodes it into v.
// Paths are resolved relative to the calling test's working directory,
// which Go pins to the package under test.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode golden file %s: %w", path, err)
	}
	return nil
}
