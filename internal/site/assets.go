package site

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mewert/greenbar/pkg/interfaces"
)

type assetCopySummary struct {
	Built   int
	Skipped int
}

// copyThemeAssets copies the manifest-declared theme files into assets/ under
// the output root, preserving their theme-relative layout.
func (s *service) copyThemeAssets(
	ctx context.Context,
	buildCtx *buildContext,
	manifest *buildManifest,
	assetKeys map[string]struct{},
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	if buildCtx.Theme == nil {
		return summary, nil
	}

	for _, asset := range buildCtx.Theme.AssetFiles() {
		source := filepath.Join(buildCtx.Theme.Path, filepath.FromSlash(asset))
		// Keep the manifest-declared path so asset URLs resolve unchanged.
		dest := path.Clean(asset)
		key := "theme::" + asset
		assetKeys[manifestKey(key)] = struct{}{}

		built, err := s.copyAssetFile(ctx, source, dest, key, manifest)
		if err != nil {
			return summary, err
		}
		if built {
			summary.Built++
		} else {
			summary.Skipped++
		}
	}
	return summary, nil
}

// copyBundleAssets copies files co-located with post bundles next to the
// rendered document so relative image references keep working.
func (s *service) copyBundleAssets(
	ctx context.Context,
	buildCtx *buildContext,
	manifest *buildManifest,
	assetKeys map[string]struct{},
) (assetCopySummary, error) {
	summary := assetCopySummary{}
	for _, doc := range buildCtx.Documents {
		for _, asset := range doc.Assets {
			source := filepath.Join(asset.SourceDir, filepath.FromSlash(asset.Rel))
			dest := path.Join(path.Dir(outputPathFor(doc.Route)), asset.Rel)
			key := doc.Route + "::" + asset.Rel
			assetKeys[manifestKey(key)] = struct{}{}

			built, err := s.copyAssetFile(ctx, source, dest, key, manifest)
			if err != nil {
				return summary, err
			}
			if built {
				summary.Built++
			} else {
				summary.Skipped++
			}
		}
	}
	return summary, nil
}

func (s *service) copyAssetFile(
	ctx context.Context,
	source, dest, key string,
	manifest *buildManifest,
) (bool, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return false, err
	}
	checksum := computeHash(data)

	if s.cfg.Incremental && manifest.shouldSkipAsset(key, checksum, dest) {
		return false, nil
	}

	err = s.deps.Store.WriteFile(ctx, interfaces.ArtifactWrite{
		Path:        dest,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryAsset,
		ContentType: detectAssetContentType(dest),
		Checksum:    checksum,
		Metadata:    map[string]string{"source": filepath.ToSlash(source)},
	})
	if err != nil {
		return false, err
	}

	manifest.setAsset(manifestAsset{
		Source:   key,
		Output:   dest,
		Checksum: checksum,
		Size:     int64(len(data)),
		CopiedAt: s.now(),
	})
	return true, nil
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
