package content

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mewert/greenbar/internal/identity"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/internal/util"
	"github.com/mewert/greenbar/internal/validation"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// Service exposes the loaded content tree to the rest of the engine.
type Service interface {
	// Reload re-reads the content tree from disk, replacing the in-memory
	// library atomically on success.
	Reload(ctx context.Context) error
	// Posts returns publishable posts ordered newest first, ties broken by slug.
	Posts(ctx context.Context) ([]*Post, error)
	// Drafts returns draft posts in the same order.
	Drafts(ctx context.Context) ([]*Post, error)
	// Post looks up a post by slug. Drafts resolve too so previews work.
	Post(ctx context.Context, slug string) (*Post, error)
	Pages(ctx context.Context) ([]*Page, error)
	Page(ctx context.Context, slug string) (*Page, error)
	// Tags returns the tag index over publishable posts, alphabetically.
	Tags(ctx context.Context) ([]TagCount, error)
	PostsByTag(ctx context.Context, tag string) ([]*Post, error)
}

var (
	ErrTitleRequired = errors.New("content: title is required")
	ErrDateRequired  = errors.New("content: post date is required")
	ErrSlugInvalid   = errors.New("content: slug contains invalid characters")
	ErrDuplicateSlug = errors.New("content: duplicate slug")
	ErrPostNotFound  = errors.New("content: post not found")
	ErrPageNotFound  = errors.New("content: page not found")
	ErrNotLoaded     = errors.New("content: library not loaded")
)

// Config controls where content lives and which entries are publishable.
type Config struct {
	// PostsDir and PagesDir are relative to the markdown service base path.
	PostsDir string
	PagesDir string
	// IncludeDrafts makes drafts publishable (preview builds).
	IncludeDrafts bool
	// DefaultAuthor stamps posts whose front matter omits an author.
	DefaultAuthor string
	// FrontMatterSchema optionally validates custom front-matter fields.
	FrontMatterSchema map[string]any
}

// Dependencies carries the collaborators the library needs.
type Dependencies struct {
	Markdown interfaces.MarkdownService
	Logger   interfaces.LoggerProvider
}

// library implements Service over an in-memory snapshot of the content tree.
type library struct {
	cfg      Config
	markdown interfaces.MarkdownService
	logger   interfaces.Logger

	mu     sync.RWMutex
	loaded bool
	posts  []*Post
	bySlug map[string]*Post
	pages  []*Page
	byPage map[string]*Page
	byTag  map[string][]*Post
}

// NewLibrary constructs the content library. Markdown is required; logging is
// optional and falls back to a no-op logger.
func NewLibrary(cfg Config, deps Dependencies) (Service, error) {
	if deps.Markdown == nil {
		return nil, errors.New("content: markdown service is required")
	}
	if strings.TrimSpace(cfg.PostsDir) == "" {
		cfg.PostsDir = "posts"
	}
	if strings.TrimSpace(cfg.PagesDir) == "" {
		cfg.PagesDir = "pages"
	}
	if cfg.FrontMatterSchema != nil {
		if err := validation.ValidateSchema(cfg.FrontMatterSchema); err != nil {
			return nil, fmt.Errorf("content: front matter schema: %w", err)
		}
	}

	return &library{
		cfg:      cfg,
		markdown: deps.Markdown,
		logger:   logging.ContentLogger(deps.Logger),
	}, nil
}

func (l *library) Reload(ctx context.Context) error {
	started := time.Now()

	postDocs, err := l.markdown.LoadDirectory(ctx, l.cfg.PostsDir, interfaces.LoadOptions{})
	if err != nil {
		return fmt.Errorf("content: load posts: %w", err)
	}

	pageDocs, err := l.markdown.LoadDirectory(ctx, l.cfg.PagesDir, interfaces.LoadOptions{})
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("content: load pages: %w", err)
		}
		pageDocs = nil
	}

	posts := make([]*Post, 0, len(postDocs))
	bySlug := make(map[string]*Post, len(postDocs))
	for _, doc := range postDocs {
		post, err := l.buildPost(doc)
		if err != nil {
			return err
		}
		if existing, ok := bySlug[post.Slug]; ok {
			return fmt.Errorf("%w: %q used by %s and %s",
				ErrDuplicateSlug, post.Slug, existing.SourcePath, post.SourcePath)
		}
		bySlug[post.Slug] = post
		posts = append(posts, post)
	}

	pages := make([]*Page, 0, len(pageDocs))
	byPage := make(map[string]*Page, len(pageDocs))
	for _, doc := range pageDocs {
		page, err := l.buildPage(doc)
		if err != nil {
			return err
		}
		if existing, ok := byPage[page.Slug]; ok {
			return fmt.Errorf("%w: %q used by %s and %s",
				ErrDuplicateSlug, page.Slug, existing.SourcePath, page.SourcePath)
		}
		if _, ok := bySlug[page.Slug]; ok {
			return fmt.Errorf("%w: %q used by both a post and a page",
				ErrDuplicateSlug, page.Slug)
		}
		byPage[page.Slug] = page
		pages = append(pages, page)
	}

	sortPosts(posts)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })

	byTag := indexTags(posts)

	l.mu.Lock()
	l.loaded = true
	l.posts = posts
	l.bySlug = bySlug
	l.pages = pages
	l.byPage = byPage
	l.byTag = byTag
	l.mu.Unlock()

	drafts := 0
	for _, post := range posts {
		if post.Draft {
			drafts++
		}
	}
	l.logger.Info("content.reloaded",
		"posts", len(posts),
		"pages", len(pages),
		"drafts", drafts,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (l *library) Posts(ctx context.Context) ([]*Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	out := make([]*Post, 0, len(l.posts))
	for _, post := range l.posts {
		if post.Draft && !l.cfg.IncludeDrafts {
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func (l *library) Drafts(ctx context.Context) ([]*Post, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	var out []*Post
	for _, post := range l.posts {
		if post.Draft {
			out = append(out, post)
		}
	}
	return out, nil
}

func (l *library) Post(ctx context.Context, slug string) (*Post, error) {
	normalized, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	post, ok := l.bySlug[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, normalized)
	}
	return post, nil
}

func (l *library) Pages(ctx context.Context) ([]*Page, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}
	return append([]*Page(nil), l.pages...), nil
}

func (l *library) Page(ctx context.Context, slug string) (*Page, error) {
	normalized, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	page, ok := l.byPage[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, normalized)
	}
	return page, nil
}

func (l *library) Tags(ctx context.Context) ([]TagCount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	counts := make([]TagCount, 0, len(l.byTag))
	for tag, posts := range l.byTag {
		visible := 0
		for _, post := range posts {
			if post.Draft && !l.cfg.IncludeDrafts {
				continue
			}
			visible++
		}
		if visible == 0 {
			continue
		}
		counts = append(counts, TagCount{Tag: tag, Count: visible})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Tag < counts[j].Tag })
	return counts, nil
}

func (l *library) PostsByTag(ctx context.Context, tag string) ([]*Post, error) {
	normalized, err := normalizeSlug(tag)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return nil, ErrNotLoaded
	}

	var out []*Post
	for _, post := range l.byTag[normalized] {
		if post.Draft && !l.cfg.IncludeDrafts {
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func (l *library) buildPost(doc *interfaces.Document) (*Post, error) {
	fm := doc.FrontMatter

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrTitleRequired, doc.FilePath)
	}
	if fm.Date.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrDateRequired, doc.FilePath)
	}

	slugValue, err := deriveSlug(fm.Slug, title, doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.FilePath)
	}

	if l.cfg.FrontMatterSchema != nil && len(fm.Custom) > 0 {
		if err := validation.ValidatePayload(l.cfg.FrontMatterSchema, scrubKnownKeys(fm.Custom)); err != nil {
			return nil, fmt.Errorf("content: %s: %w", doc.FilePath, err)
		}
	}

	tags, err := normalizeTags(fm.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.FilePath)
	}

	updated := fm.Updated
	if updated.IsZero() {
		updated = fm.Date
	}

	summary := strings.TrimSpace(fm.Summary)
	if summary == "" {
		summary = deriveSummary(doc.Body)
	}

	return &Post{
		ID:           identity.PostUUID(slugValue),
		Slug:         slugValue,
		Title:        title,
		Summary:      summary,
		Author:       util.FirstNonEmpty(strings.TrimSpace(fm.Author), l.cfg.DefaultAuthor),
		Tags:         tags,
		Template:     strings.TrimSpace(fm.Template),
		Published:    fm.Date,
		Updated:      updated,
		Draft:        fm.Draft,
		HTML:         doc.BodyHTML,
		SourcePath:   doc.FilePath,
		Assets:       append([]string(nil), doc.Assets...),
		Checksum:     hex.EncodeToString(doc.Checksum),
		ReadingTime:  readingTime(doc.Body),
		Custom:       util.CloneAnyMap(fm.Custom),
		LastModified: doc.LastModified,
	}, nil
}

func (l *library) buildPage(doc *interfaces.Document) (*Page, error) {
	fm := doc.FrontMatter

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrTitleRequired, doc.FilePath)
	}

	slugValue, err := deriveSlug(fm.Slug, title, doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.FilePath)
	}

	return &Page{
		ID:           identity.PageUUID(slugValue),
		Slug:         slugValue,
		Title:        title,
		Summary:      strings.TrimSpace(fm.Summary),
		Template:     strings.TrimSpace(fm.Template),
		HTML:         doc.BodyHTML,
		SourcePath:   doc.FilePath,
		Checksum:     hex.EncodeToString(doc.Checksum),
		Custom:       util.CloneAnyMap(fm.Custom),
		LastModified: doc.LastModified,
	}, nil
}

// sortPosts orders newest first; equal timestamps fall back to slug so the
// ordering is stable across rebuilds.
func sortPosts(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Published.Equal(posts[j].Published) {
			return posts[i].Published.After(posts[j].Published)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func indexTags(posts []*Post) map[string][]*Post {
	index := make(map[string][]*Post)
	for _, post := range posts {
		for _, tag := range post.Tags {
			index[tag] = append(index[tag], post)
		}
	}
	return index
}

// scrubKnownKeys drops reserved front-matter keys that yaml inlining can leak
// into the custom map, so schemas only see genuinely custom fields.
func scrubKnownKeys(custom map[string]any) map[string]any {
	out := make(map[string]any, len(custom))
	for key, value := range custom {
		switch strings.ToLower(key) {
		case "title", "slug", "summary", "template", "tags", "author", "date", "updated", "draft":
			continue
		}
		out[key] = value
	}
	return out
}
