package site

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Route names registered under the "site" group.
const (
	routeHome    = "home"
	routePost    = "post"
	routePage    = "page"
	routeTag     = "tag"
	routeFeed    = "feed"
	routeAtom    = "atom"
	routeSitemap = "sitemap"
)

// siteURLs builds canonical URLs for every published document through a
// go-urlkit route group, so feeds and sitemaps agree with the output layout.
type siteURLs struct {
	group *urlkit.Group
}

func newSiteURLs(baseURL string) (*siteURLs, error) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "site",
				BaseURL: normalizeBaseURL(baseURL),
				Paths: map[string]string{
					routeHome:    "/",
					routePost:    "/posts/:slug/",
					routePage:    "/:slug/",
					routeTag:     "/tags/:tag/",
					routeFeed:    "/feed.xml",
					routeAtom:    "/feed.atom.xml",
					routeSitemap: "/sitemap.xml",
				},
			},
		},
	})

	group, err := lookupGroup(manager, "site")
	if err != nil {
		return nil, err
	}
	return &siteURLs{group: group}, nil
}

func (u *siteURLs) Home() string { return u.build(routeHome, nil) }

func (u *siteURLs) Post(slug string) string {
	return u.build(routePost, map[string]any{"slug": slug})
}

func (u *siteURLs) Page(slug string) string {
	return u.build(routePage, map[string]any{"slug": slug})
}

func (u *siteURLs) Tag(tag string) string {
	return u.build(routeTag, map[string]any{"tag": tag})
}

func (u *siteURLs) Feed() string    { return u.build(routeFeed, nil) }
func (u *siteURLs) Atom() string    { return u.build(routeAtom, nil) }
func (u *siteURLs) Sitemap() string { return u.build(routeSitemap, nil) }

func (u *siteURLs) build(route string, params map[string]any) string {
	builder, err := safeBuilder(u.group, route)
	if err != nil || builder == nil {
		return ""
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}
	url, err := builder.Build()
	if err != nil {
		return ""
	}
	return url
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

// urlkit panics on unknown groups and routes; recover so a misconfigured
// route surfaces as an error instead of tearing down a build.
func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("site: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("site: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("site: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("site: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}
