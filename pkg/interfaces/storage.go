package interfaces

import (
	"context"
	"io"
)

// ArtifactStore is the destination for generated site files. The build
// pipeline never touches the filesystem directly; routing writes through
// this contract keeps outputs testable and lets hosts redirect artifacts.
type ArtifactStore interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req ArtifactWrite) error
	// ReadFile returns the stored content for path, or (nil, nil) when the
	// artifact does not exist.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
}

// ArtifactWrite describes a file write routed through the artifact store.
// Paths are slash-separated and relative to the store root.
type ArtifactWrite struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    string
	ContentType string
	Checksum    string
	Metadata    map[string]string
}
