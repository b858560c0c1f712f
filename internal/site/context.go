package site

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"strings"
	"time"

	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/themes"
	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
)

// Document kinds the generator renders.
const (
	kindPost  = themes.KindPost
	kindPage  = themes.KindPage
	kindIndex = themes.KindIndex
	kindTag   = themes.KindTag
)

// document is one render unit: a post, a page, the front index, or a tag index.
type document struct {
	ID       uuid.UUID
	Kind     string
	Route    string
	Template string
	Hash     string
	LastMod  time.Time
	Post     *content.Post
	Page     *content.Page
	Posts    []*content.Post
	Tag      string
	Assets   []bundleAsset
}

// bundleAsset is a file co-located with a post bundle, copied next to the
// rendered document.
type bundleAsset struct {
	SourceDir string
	Rel       string
}

// buildContext aggregates everything a single build run renders.
type buildContext struct {
	GeneratedAt time.Time
	Documents   []*document
	Posts       []*content.Post
	Tags        []content.TagCount
	Theme       *themes.Theme
	Selection   *gotheme.Selection
	Options     BuildOptions
}

// SiteMetadata describes the site to templates and feed builders.
type SiteMetadata struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// TemplateContext is the data contract handed to theme templates.
type TemplateContext struct {
	Site    SiteMetadata
	Doc     DocumentContext
	Posts   []PostSummary
	Tags    []content.TagCount
	Theme   ThemeContext
	Build   BuildMetadata
	Helpers TemplateHelpers
}

// DocumentContext flattens the rendered document for template authors.
type DocumentContext struct {
	Kind        string
	Title       string
	Summary     string
	Author      string
	Slug        string
	Tag         string
	Tags        []string
	Published   time.Time
	Updated     time.Time
	Draft       bool
	ReadingTime int
	Permalink   string
	Content     template.HTML
	Custom      map[string]any
}

// PostSummary is the index/tag listing projection of a post.
type PostSummary struct {
	Title       string
	Summary     string
	Slug        string
	Tags        []string
	Published   time.Time
	ReadingTime int
	Draft       bool
	Permalink   string
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(string) string
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	baseURL string
}

func newTemplateHelpers(baseURL string) TemplateHelpers {
	return TemplateHelpers{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

func buildThemeContext(theme *themes.Theme, selection *gotheme.Selection) ThemeContext {
	themeCtx := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		AssetURL: func(string) string { return "" },
	}
	if theme != nil {
		themeCtx.Name = theme.Name
		themeCtx.Variant = theme.Variant
	}
	if selection == nil {
		return themeCtx
	}
	themeCtx.Tokens = selection.Tokens()
	themeCtx.CSSVars = selection.CSSVariables("")
	themeCtx.AssetURL = func(key string) string {
		url, _ := selection.Asset(key)
		return url
	}
	return themeCtx
}

// dependencyHash folds every input that affects a document's HTML into one
// digest so incremental builds can detect staleness.
func dependencyHash(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(part))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func postSummaries(urls *siteURLs, posts []*content.Post) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, post := range posts {
		out = append(out, PostSummary{
			Title:       post.Title,
			Summary:     post.Summary,
			Slug:        post.Slug,
			Tags:        append([]string(nil), post.Tags...),
			Published:   post.Published,
			ReadingTime: post.ReadingTime,
			Draft:       post.Draft,
			Permalink:   urls.Post(post.Slug),
		})
	}
	return out
}

func latestPostTime(posts []*content.Post, fallback time.Time) time.Time {
	latest := time.Time{}
	for _, post := range posts {
		if post.Updated.After(latest) {
			latest = post.Updated
		}
		if post.Published.After(latest) {
			latest = post.Published
		}
	}
	if latest.IsZero() {
		return fallback
	}
	return latest
}
