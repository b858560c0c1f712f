package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadFixture reads a fixture file, failing the test when it is missing.
func LoadFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("testsupport: load fixture %s: %v", path, err)
	}
	return data
}

// LoadGolden unmarshals a JSON golden file into v.
func LoadGolden(tb testing.TB, path string, v any) {
	tb.Helper()
	data := LoadFixture(tb, path)
	if err := json.Unmarshal(data, v); err != nil {
		tb.Fatalf("testsupport: parse golden %s: %v", path, err)
	}
}
