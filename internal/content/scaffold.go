package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrPostExists indicates the scaffold target already exists on disk.
var ErrPostExists = errors.New("content: post already exists")

// ScaffoldOptions controls post scaffolding.
type ScaffoldOptions struct {
	Title  string
	Slug   string
	Tags   []string
	Author string
	Draft  bool
	// Bundle creates slug/index.md so images can live next to the post.
	Bundle bool
	Date   time.Time
}

type scaffoldFrontMatter struct {
	Title   string    `yaml:"title"`
	Slug    string    `yaml:"slug,omitempty"`
	Summary string    `yaml:"summary"`
	Tags    []string  `yaml:"tags,omitempty"`
	Author  string    `yaml:"author,omitempty"`
	Date    time.Time `yaml:"date"`
	Draft   bool      `yaml:"draft,omitempty"`
}

// ScaffoldPost writes a new post skeleton under postsDir and returns the
// created file path. The slug is derived from the title unless given
// explicitly, and an existing post with the same identity is never
// overwritten.
func ScaffoldPost(postsDir string, opts ScaffoldOptions) (string, error) {
	if strings.TrimSpace(postsDir) == "" {
		return "", errors.New("content: posts dir is required")
	}
	if strings.TrimSpace(opts.Title) == "" {
		return "", ErrTitleRequired
	}

	postSlug, err := deriveSlug(opts.Slug, opts.Title, "")
	if err != nil {
		return "", err
	}
	tags, err := normalizeTags(opts.Tags)
	if err != nil {
		return "", err
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now().UTC().Truncate(time.Minute)
	}

	target := filepath.Join(postsDir, postSlug+".md")
	if opts.Bundle {
		target = filepath.Join(postsDir, postSlug, "index.md")
	}
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("%w: %s", ErrPostExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	fm := scaffoldFrontMatter{
		Title:  strings.TrimSpace(opts.Title),
		Tags:   tags,
		Author: strings.TrimSpace(opts.Author),
		Date:   date,
		Draft:  opts.Draft,
	}
	if strings.TrimSpace(opts.Slug) != "" {
		fm.Slug = postSlug
	}

	meta, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("content: marshal front matter: %w", err)
	}

	var body strings.Builder
	body.WriteString("---\n")
	body.Write(meta)
	body.WriteString("---\n\n")
	body.WriteString("Write here.\n")

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("content: create post dir: %w", err)
	}
	if err := os.WriteFile(target, []byte(body.String()), 0o644); err != nil {
		return "", fmt.Errorf("content: write post: %w", err)
	}
	return target, nil
}
