package site

import (
	"testing"
	"time"
)

func TestManifestRoundTrip(t *testing.T) {
	manifest := newBuildManifest()
	manifest.GeneratedAt = time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	manifest.setDocument(manifestEntry{
		Route:    "/posts/hello/",
		Kind:     kindPost,
		Output:   "posts/hello/index.html",
		Template: "post.tmpl",
		Hash:     "abc",
		Checksum: "def",
	})
	manifest.setAsset(manifestAsset{
		Source:   "theme::assets/style.css",
		Output:   "assets/style.css",
		Checksum: "123",
		Size:     14,
	})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	entry, ok := parsed.lookupDocument("/posts/hello/")
	if !ok {
		t.Fatal("document entry lost in round trip")
	}
	if entry.Hash != "abc" || entry.Output != "posts/hello/index.html" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if _, ok := parsed.lookupAsset("theme::assets/style.css"); !ok {
		t.Fatal("asset entry lost in round trip")
	}

	// The parsed manifest must persist back to the identical bytes, so the
	// on-disk form stays stable across builds that change nothing.
	again, err := parsed.marshal()
	if err != nil {
		t.Fatalf("marshal parsed: %v", err)
	}
	if string(again) != string(data) {
		t.Fatalf("persisted form drifted across a round trip\nfirst:  %s\nsecond: %s", data, again)
	}
}

func TestParseManifestEmpty(t *testing.T) {
	parsed, err := parseManifest(nil)
	if err != nil {
		t.Fatalf("parse nil: %v", err)
	}
	if parsed == nil || len(parsed.Documents) != 0 {
		t.Fatalf("expected empty manifest, got %+v", parsed)
	}
}

func TestShouldSkipDocument(t *testing.T) {
	manifest := newBuildManifest()
	manifest.setDocument(manifestEntry{
		Route:  "/posts/hello/",
		Hash:   "abc",
		Output: "posts/hello/index.html",
	})

	if !manifest.shouldSkipDocument("/posts/hello/", "abc", "posts/hello/index.html") {
		t.Fatal("unchanged document should be skipped")
	}
	if manifest.shouldSkipDocument("/posts/hello/", "changed", "posts/hello/index.html") {
		t.Fatal("changed hash must force a rebuild")
	}
	if manifest.shouldSkipDocument("/posts/hello/", "abc", "elsewhere/index.html") {
		t.Fatal("moved output must force a rebuild")
	}
	if manifest.shouldSkipDocument("/posts/other/", "abc", "posts/other/index.html") {
		t.Fatal("unknown route must force a build")
	}
}

func TestManifestPrune(t *testing.T) {
	manifest := newBuildManifest()
	manifest.setDocument(manifestEntry{Route: "/keep/", Hash: "a", Output: "keep/index.html"})
	manifest.setDocument(manifestEntry{Route: "/gone/", Hash: "b", Output: "gone/index.html"})
	manifest.setAsset(manifestAsset{Source: "theme::keep.css", Output: "keep.css"})
	manifest.setAsset(manifestAsset{Source: "theme::gone.css", Output: "gone.css"})

	manifest.prune(
		map[string]struct{}{manifestKey("/keep/"): {}},
		map[string]struct{}{manifestKey("theme::keep.css"): {}},
	)

	if _, ok := manifest.lookupDocument("/gone/"); ok {
		t.Fatal("pruned document survived")
	}
	if _, ok := manifest.lookupDocument("/keep/"); !ok {
		t.Fatal("kept document was pruned")
	}
	if _, ok := manifest.lookupAsset("theme::gone.css"); ok {
		t.Fatal("pruned asset survived")
	}
	if _, ok := manifest.lookupAsset("theme::keep.css"); !ok {
		t.Fatal("kept asset was pruned")
	}
}
