package content

import (
	"time"

	"github.com/google/uuid"
)

// Post is a dated entry in the blog. Posts are built from Markdown files
// under the posts directory; a post living in its own directory next to its
// images is a bundle and carries those files as Assets.
type Post struct {
	ID           uuid.UUID
	Slug         string
	Title        string
	Summary      string
	Author       string
	Tags         []string
	Template     string
	Published    time.Time
	Updated      time.Time
	Draft        bool
	HTML         []byte
	SourcePath   string
	Assets       []string
	Checksum     string
	ReadingTime  int
	Custom       map[string]any
	LastModified time.Time
}

// Page is undated standalone content (about, colophon). Pages never appear
// in feeds or the chronological index.
type Page struct {
	ID           uuid.UUID
	Slug         string
	Title        string
	Summary      string
	Template     string
	HTML         []byte
	SourcePath   string
	Checksum     string
	Custom       map[string]any
	LastModified time.Time
}

// TagCount pairs a normalized tag with the number of published posts using it.
type TagCount struct {
	Tag   string
	Count int
}
