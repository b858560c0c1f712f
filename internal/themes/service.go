package themes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mewert/greenbar/internal/identity"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
)

var (
	ErrThemeDirRequired     = errors.New("themes: theme directory is required")
	ErrThemeNotFound        = errors.New("themes: theme not found")
	ErrManifestFieldMissing = errors.New("themes: manifest field missing")
)

// Template kinds the generator asks the theme to resolve.
const (
	KindBase  = "base"
	KindPost  = "post"
	KindPage  = "page"
	KindIndex = "index"
	KindTag   = "tag"
)

// Theme is a loaded theme directory: manifest, identity, and resolved paths.
type Theme struct {
	ID       uuid.UUID
	Name     string
	Version  string
	Variant  string
	Path     string
	Manifest *Manifest
}

// TemplatePath resolves the template file for a document kind relative to the
// theme directory. Unknown kinds fall back to `<kind>.tmpl`.
func (t *Theme) TemplatePath(kind string) string {
	fallback := kind + ".tmpl"
	if t == nil || t.Manifest == nil {
		return fallback
	}
	return t.Manifest.TemplateFor(kind, t.Variant, fallback)
}

// AssetFiles lists theme asset paths relative to the theme directory.
func (t *Theme) AssetFiles() []string {
	if t == nil || t.Manifest == nil {
		return nil
	}
	return t.Manifest.AssetFiles(t.Variant)
}

// Service loads themes from disk and resolves the active selection.
type Service interface {
	// Load reads the theme at dir, registers it, and makes it current.
	Load(dir string) (*Theme, error)
	// Current returns the active theme, or ErrThemeNotFound before Load.
	Current() (*Theme, error)
	// Selection exposes the go-theme selection for the active theme so
	// template contexts can surface tokens and partials.
	Selection() (*gotheme.Selection, error)
}

// Config controls theme resolution defaults.
type Config struct {
	// Variant picks a manifest variant (e.g. "dark"). Empty means base.
	Variant string
}

type service struct {
	cfg      Config
	logger   interfaces.Logger
	registry *gotheme.MemoryRegistry

	mu        sync.RWMutex
	current   *Theme
	selection *gotheme.Selection
}

// NewService constructs the theme service. Logging is optional.
func NewService(cfg Config, logger interfaces.LoggerProvider) Service {
	return &service{
		cfg:      cfg,
		logger:   logging.ModuleLogger(logger, "blog.themes"),
		registry: gotheme.NewRegistry(),
	}
}

func (s *service) Load(dir string) (*Theme, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrThemeDirRequired
	}
	dir = filepath.Clean(strings.TrimSpace(dir))
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("themes: stat theme dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("themes: %s is not a directory", dir)
	}

	manifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, err
	}

	theme := &Theme{
		ID:       identity.ThemeUUID(dir),
		Name:     strings.TrimSpace(manifest.Name),
		Version:  strings.TrimSpace(manifest.Version),
		Variant:  strings.TrimSpace(s.cfg.Variant),
		Path:     dir,
		Manifest: manifest,
	}

	selection, err := s.register(theme)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = theme
	s.selection = selection
	s.mu.Unlock()

	s.logger.Info("themes.loaded",
		"theme", theme.Name,
		"version", theme.Version,
		"variant", theme.Variant,
		"templates", len(manifest.Templates),
		"assets", len(theme.AssetFiles()),
	)
	return theme, nil
}

func (s *service) Current() (*Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrThemeNotFound
	}
	return s.current, nil
}

func (s *service) Selection() (*gotheme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return nil, ErrThemeNotFound
	}
	return s.selection, nil
}

// register mirrors the manifest into go-theme's registry and selects it so
// downstream consumers get token/partial resolution for free.
func (s *service) register(theme *Theme) (*gotheme.Selection, error) {
	registered := &gotheme.Manifest{
		Name:    theme.Name,
		Version: theme.Version,
	}
	if files := theme.AssetFiles(); len(files) > 0 {
		sort.Strings(files)
		registered.Assets.Files = make(map[string]string, len(files))
		for _, file := range files {
			registered.Assets.Files[assetKey(file)] = file
		}
	}

	if err := s.registry.Register(registered); err != nil {
		return nil, fmt.Errorf("themes: register manifest %s: %w", theme.Name, err)
	}

	selector := gotheme.Selector{
		Registry:     s.registry,
		DefaultTheme: theme.Name,
	}
	selection, err := selector.Select(theme.Name, theme.Variant)
	if err != nil {
		return nil, fmt.Errorf("themes: select theme %s: %w", theme.Name, err)
	}
	return selection, nil
}

// assetKey derives a stable registry key from the file path: base name
// without extension, so "assets/style.css" is addressable as "style".
func assetKey(file string) string {
	base := filepath.Base(file)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		return file
	}
	return base
}
