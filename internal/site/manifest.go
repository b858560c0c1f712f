package site

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".greenbar-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build to support
// incremental runs.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Documents   map[string]manifestEntry `json:"documents"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestEntry struct {
	Route      string    `json:"route"`
	Kind       string    `json:"kind"`
	Output     string    `json:"output"`
	Template   string    `json:"template"`
	Hash       string    `json:"hash"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:   manifestFileVersion,
		Documents: map[string]manifestEntry{},
		Assets:    map[string]manifestAsset{},
	}
}

// persistedManifest is the on-disk shape: entries as sorted arrays so the
// file diffs cleanly in git. In memory the entries live in maps keyed by
// route/source.
type persistedManifest struct {
	Version     int             `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Documents   []manifestEntry `json:"documents"`
	Assets      []manifestAsset `json:"assets"`
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var persisted persistedManifest
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("site: parse manifest: %w", err)
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = persisted.GeneratedAt
	if persisted.Version != 0 {
		manifest.Version = persisted.Version
	}
	for _, entry := range persisted.Documents {
		manifest.setDocument(entry)
	}
	for _, entry := range persisted.Assets {
		manifest.setAsset(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	persisted := persistedManifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
	}
	if persisted.Version == 0 {
		persisted.Version = manifestFileVersion
	}
	for _, entry := range m.Documents {
		persisted.Documents = append(persisted.Documents, entry)
	}
	sort.Slice(persisted.Documents, func(i, j int) bool {
		return persisted.Documents[i].Route < persisted.Documents[j].Route
	})
	for _, entry := range m.Assets {
		persisted.Assets = append(persisted.Assets, entry)
	}
	sort.Slice(persisted.Assets, func(i, j int) bool {
		return persisted.Assets[i].Source < persisted.Assets[j].Source
	})
	return json.MarshalIndent(persisted, "", "  ")
}

func manifestKey(route string) string {
	return strings.ToLower(strings.TrimSpace(route))
}

func (m *buildManifest) lookupDocument(route string) (manifestEntry, bool) {
	if m == nil || len(m.Documents) == 0 {
		return manifestEntry{}, false
	}
	entry, ok := m.Documents[manifestKey(route)]
	return entry, ok
}

func (m *buildManifest) setDocument(entry manifestEntry) {
	if m == nil {
		return
	}
	if m.Documents == nil {
		m.Documents = map[string]manifestEntry{}
	}
	m.Documents[manifestKey(entry.Route)] = entry
}

// shouldSkipDocument reports whether the route can be skipped: same inputs,
// same destination.
func (m *buildManifest) shouldSkipDocument(route, hash, output string) bool {
	entry, ok := m.lookupDocument(route)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *buildManifest) lookupAsset(source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[manifestKey(source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	m.Assets[manifestKey(entry.Source)] = entry
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	entry, ok := m.lookupAsset(source)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// prune drops manifest entries for documents and assets that no longer exist
// so deleted content stops shadowing future builds.
func (m *buildManifest) prune(docKeys, assetKeys map[string]struct{}) {
	if m == nil {
		return
	}
	for key := range m.Documents {
		if _, ok := docKeys[key]; !ok {
			delete(m.Documents, key)
		}
	}
	for key := range m.Assets {
		if _, ok := assetKeys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}
