package themes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFileName is the file every theme directory must carry.
const ManifestFileName = "theme.json"

// Manifest mirrors the expected theme.json structure.
type Manifest struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Version     string                     `json:"version"`
	Author      string                     `json:"author,omitempty"`
	Templates   map[string]string          `json:"templates,omitempty"`
	Assets      ManifestAssets             `json:"assets,omitempty"`
	Variants    map[string]ManifestVariant `json:"variants,omitempty"`
	Metadata    map[string]any             `json:"metadata,omitempty"`
}

// ManifestAssets lists theme files copied verbatim into the generated site.
type ManifestAssets struct {
	Files map[string]string `json:"files,omitempty"`
}

// ManifestVariant overrides templates or assets for a named variant.
type ManifestVariant struct {
	Templates map[string]string `json:"templates,omitempty"`
	Assets    ManifestAssets    `json:"assets,omitempty"`
}

// LoadManifest reads and parses a theme.json from disk.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrManifestFieldMissing)
	}
	if strings.TrimSpace(manifest.Version) == "" {
		return nil, fmt.Errorf("%w: version", ErrManifestFieldMissing)
	}
	return &manifest, nil
}

// TemplateFor resolves the template file for a document kind, honouring the
// active variant's overrides before the base template map. The fallback keeps
// rendering alive for themes that only declare a subset of kinds.
func (m *Manifest) TemplateFor(kind, variant, fallback string) string {
	if m == nil {
		return fallback
	}
	if variant = strings.TrimSpace(variant); variant != "" {
		if v, ok := m.Variants[variant]; ok {
			if tpl := strings.TrimSpace(v.Templates[kind]); tpl != "" {
				return tpl
			}
		}
	}
	if tpl := strings.TrimSpace(m.Templates[kind]); tpl != "" {
		return tpl
	}
	return fallback
}

// AssetFiles returns the asset paths for the manifest merged with the active
// variant, relative to the theme directory, deduplicated and slash separated.
func (m *Manifest) AssetFiles(variant string) []string {
	if m == nil {
		return nil
	}

	merged := make(map[string]string, len(m.Assets.Files))
	for key, file := range m.Assets.Files {
		merged[key] = file
	}
	if variant = strings.TrimSpace(variant); variant != "" {
		if v, ok := m.Variants[variant]; ok {
			for key, file := range v.Assets.Files {
				merged[key] = file
			}
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, file := range merged {
		file = strings.TrimPrefix(strings.TrimSpace(file), "/")
		if file == "" {
			continue
		}
		file = filepath.ToSlash(file)
		if _, ok := seen[file]; ok {
			continue
		}
		seen[file] = struct{}{}
		out = append(out, file)
	}
	return out
}
