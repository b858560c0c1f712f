package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewert/greenbar/pkg/interfaces"
)

// Artifact categories recorded on writes so stores can route or audit them.
const (
	categoryDocument = "document"
	categoryAsset    = "asset"
	categoryFeed     = "feed"
	categorySitemap  = "sitemap"
	categoryRobots   = "robots"
	categoryManifest = "manifest"
)

// NewFilesystemStore returns an interfaces.ArtifactStore rooted at root.
// Paths passed through the store are slash separated and relative to root.
func NewFilesystemStore(root string) (interfaces.ArtifactStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("site: artifact store root is required")
	}
	return &filesystemStore{root: filepath.Clean(root)}, nil
}

type filesystemStore struct {
	root string
}

func (s *filesystemStore) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

func (s *filesystemStore) WriteFile(ctx context.Context, req interfaces.ArtifactWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return errors.New("site: write requires content reader")
	}
	full, err := s.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	file, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		file.Close()
		return fmt.Errorf("site: write %s: %w", req.Path, err)
	}
	return file.Close()
}

func (s *filesystemStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *filesystemStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.RemoveAll(full)
}

// resolve keeps artifact paths inside the store root.
func (s *filesystemStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if cleaned == "." || cleaned == "" {
		return s.root, nil
	}
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("site: artifact path %q escapes store root", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
