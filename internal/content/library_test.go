package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mewert/greenbar/internal/markdown"
)

var libraryFixture = map[string]string{
	"posts/first-post.md": `---
title: First Post
summary: The older post
tags:
  - go
date: 2024-01-02T09:00:00Z
---

Older body.
`,
	"posts/second-post.md": `---
title: Second Post
tags:
  - go
  - testing
date: 2024-02-10T09:00:00Z
---

Newer body with enough words to derive a summary from the opening paragraph.
`,
	"posts/hidden/index.md": `---
title: Hidden Post
tags:
  - testing
date: 2024-03-01T09:00:00Z
draft: true
---

Still cooking.

![sketch](sketch.png)
`,
	"posts/hidden/sketch.png": "not-really-a-png",
	"pages/about.md": `---
title: About
---

The about page.
`,
}

func newTestLibrary(t *testing.T, cfg Config) Service {
	t.Helper()

	root := t.TempDir()
	for rel, body := range libraryFixture {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	md, err := markdown.NewService(markdown.Config{
		BasePath:  root,
		Pattern:   "*.md",
		Recursive: true,
	}, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}

	if cfg.PostsDir == "" {
		cfg.PostsDir = "posts"
	}
	if cfg.PagesDir == "" {
		cfg.PagesDir = "pages"
	}

	library, err := NewLibrary(cfg, Dependencies{Markdown: md})
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	if err := library.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return library
}

func TestPostsOrderedNewestFirstWithoutDrafts(t *testing.T) {
	library := newTestLibrary(t, Config{})

	posts, err := library.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(posts))
	}
	if posts[0].Slug != "second-post" || posts[1].Slug != "first-post" {
		t.Fatalf("wrong order: %s, %s", posts[0].Slug, posts[1].Slug)
	}
	for _, post := range posts {
		if post.Draft {
			t.Fatalf("draft %s leaked into Posts", post.Slug)
		}
	}
}

func TestIncludeDraftsExposesDraftPosts(t *testing.T) {
	library := newTestLibrary(t, Config{IncludeDrafts: true})

	posts, err := library.Posts(context.Background())
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts with drafts included, got %d", len(posts))
	}

	drafts, err := library.Drafts(context.Background())
	if err != nil {
		t.Fatalf("Drafts: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Slug != "hidden-post" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}
}

func TestPostLookupAndDerivedFields(t *testing.T) {
	library := newTestLibrary(t, Config{DefaultAuthor: "Max Ewert"})
	ctx := context.Background()

	post, err := library.Post(ctx, "second-post")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if post.Title != "Second Post" {
		t.Fatalf("wrong title: %q", post.Title)
	}
	if post.Author != "Max Ewert" {
		t.Fatalf("default author not applied: %q", post.Author)
	}
	if post.Summary == "" {
		t.Fatal("summary not derived from body")
	}
	if post.ReadingTime < 1 {
		t.Fatalf("reading time not derived: %d", post.ReadingTime)
	}
	if !post.Published.Equal(time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("wrong published time: %v", post.Published)
	}
	if _, err := library.Post(ctx, "no-such-post"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestDraftResolvesBySlugForPreview(t *testing.T) {
	library := newTestLibrary(t, Config{})

	post, err := library.Post(context.Background(), "hidden-post")
	if err != nil {
		t.Fatalf("draft lookup: %v", err)
	}
	if !post.Draft {
		t.Fatal("expected draft post")
	}
	if len(post.Assets) != 1 || post.Assets[0] != "sketch.png" {
		t.Fatalf("bundle assets not carried: %v", post.Assets)
	}
}

func TestPagesAndLookup(t *testing.T) {
	library := newTestLibrary(t, Config{})
	ctx := context.Background()

	pages, err := library.Pages(ctx)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 || pages[0].Slug != "about" {
		t.Fatalf("unexpected pages: %+v", pages)
	}

	if _, err := library.Page(ctx, "missing"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestTagsCountPublishedPostsOnly(t *testing.T) {
	library := newTestLibrary(t, Config{})
	ctx := context.Background()

	tags, err := library.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	counts := map[string]int{}
	for _, tag := range tags {
		counts[tag.Tag] = tag.Count
	}
	if counts["go"] != 2 {
		t.Fatalf("expected go to count 2 published posts, got %d", counts["go"])
	}
	// The only "testing" post besides the draft is second-post.
	if counts["testing"] != 1 {
		t.Fatalf("expected testing to count 1 published post, got %d", counts["testing"])
	}

	tagged, err := library.PostsByTag(ctx, "go")
	if err != nil {
		t.Fatalf("PostsByTag: %v", err)
	}
	if len(tagged) != 2 || tagged[0].Slug != "second-post" {
		t.Fatalf("unexpected tag membership: %+v", tagged)
	}
}

func TestAccessBeforeReloadFails(t *testing.T) {
	md, err := markdown.NewService(markdown.Config{BasePath: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}
	library, err := NewLibrary(Config{PostsDir: "posts", PagesDir: "pages"}, Dependencies{Markdown: md})
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	if _, err := library.Posts(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}
