package site

import (
	"path"
	"strings"
)

// outputPathFor maps a route to its artifact path using pretty URLs:
// "/" -> index.html, "/posts/slug/" -> posts/slug/index.html.
func outputPathFor(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

// routeFromURL strips the site base URL so absolute urlkit URLs become
// store-relative routes.
func routeFromURL(baseURL, url string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	route := strings.TrimSpace(url)
	if base != "" && strings.HasPrefix(route, base) {
		route = strings.TrimPrefix(route, base)
	}
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}
