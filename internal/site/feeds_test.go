package site

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/identity"
)

func feedTestURLs(t *testing.T) *siteURLs {
	t.Helper()
	urls, err := newSiteURLs("https://blog.example.test")
	if err != nil {
		t.Fatalf("newSiteURLs: %v", err)
	}
	return urls
}

func TestBuildFeedItemsSkipsDraftsAndCaps(t *testing.T) {
	posts := make([]*content.Post, 0, maxFeedItems+3)
	for i := 0; i < maxFeedItems+2; i++ {
		posts = append(posts, &content.Post{
			ID:        identity.PostUUID(fmt.Sprintf("post-%d", i)),
			Slug:      fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		})
	}
	posts = append(posts, &content.Post{
		ID:    identity.PostUUID("draft"),
		Slug:  "draft",
		Title: "Draft",
		Draft: true,
	})

	items := buildFeedItems(feedTestURLs(t), posts)
	if len(items) != maxFeedItems {
		t.Fatalf("expected feed capped at %d items, got %d", maxFeedItems, len(items))
	}
	for _, item := range items {
		if item.Title == "Draft" {
			t.Fatal("draft post leaked into feed")
		}
	}
}

func TestBuildRSSFeedEscapesMarkup(t *testing.T) {
	urls := feedTestURLs(t)
	items := []feedItem{{
		Title:       "Generics & <constraints>",
		Summary:     "Why  `any`   is not \n enough",
		Link:        urls.Post("generics"),
		GUID:        identity.PostUUID("generics").String(),
		PublishedAt: time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	}}

	feed := buildRSSFeed(SiteMetadata{Title: "Greenbar", Description: "Notes"}, urls, items, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))

	if strings.Contains(feed, "<constraints>") {
		t.Fatal("item title not escaped")
	}
	if !strings.Contains(feed, "Generics &amp; &lt;constraints&gt;") {
		t.Fatalf("expected escaped title in feed: %s", feed)
	}
	if !strings.Contains(feed, "<lastBuildDate>Wed, 06 Mar 2024 00:00:00 +0000</lastBuildDate>") {
		t.Fatalf("expected build date in feed: %s", feed)
	}
	if !strings.Contains(feed, "https://blog.example.test/posts/generics/") {
		t.Fatalf("expected absolute item link in feed: %s", feed)
	}
}

func TestBuildAtomFeedEntryIdentity(t *testing.T) {
	urls := feedTestURLs(t)
	id := identity.PostUUID("hello-world")
	items := []feedItem{{
		Title:       "Hello World",
		Link:        urls.Post("hello-world"),
		GUID:        id.String(),
		Author:      "Max Ewert",
		PublishedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
	}}

	atom := buildAtomFeed(SiteMetadata{Title: "Greenbar", Author: "Max Ewert"}, urls, items, time.Now())

	if !strings.Contains(atom, "<id>urn:uuid:"+id.String()+"</id>") {
		t.Fatalf("expected stable urn:uuid entry id: %s", atom)
	}
	if !strings.Contains(atom, "<updated>2024-01-03T09:00:00Z</updated>") {
		t.Fatalf("expected entry updated timestamp: %s", atom)
	}
	if !strings.Contains(atom, "<published>2024-01-02T09:00:00Z</published>") {
		t.Fatalf("expected entry published timestamp: %s", atom)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := normalizeWhitespace("  a \n b\t c  "); got != "a b c" {
		t.Fatalf("normalizeWhitespace = %q", got)
	}
	if got := normalizeWhitespace("   "); got != "" {
		t.Fatalf("expected empty result for blank input, got %q", got)
	}
}
