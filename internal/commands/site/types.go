package sitecmd

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/site"
)

const (
	buildSiteMessageType    = "blog.site.build"
	cleanSiteMessageType    = "blog.site.clean"
	checkContentMessageType = "blog.site.check"
	newPostMessageType      = "blog.post.new"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// BuildResultCallback receives build results. The callback is optional and is
// invoked synchronously from the handler when a BuildResult is available.
type BuildResultCallback func(BuildResultEnvelope)

// BuildResultEnvelope captures the outcome of a generator command execution.
type BuildResultEnvelope struct {
	Result   *site.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand runs a generator build.
type BuildSiteCommand struct {
	Clean          bool                `json:"clean,omitempty"`
	DryRun         bool                `json:"dry_run,omitempty"`
	ResultCallback BuildResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate satisfies command.Message; every flag combination is allowed.
func (BuildSiteCommand) Validate() error { return nil }

// CleanSiteCommand clears generated artifacts from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// CheckContentCommand lints the content tree without building.
type CheckContentCommand struct {
	ReportCallback func(*content.LintReport) `json:"-"`
}

// Type implements command.Message.
func (CheckContentCommand) Type() string { return checkContentMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CheckContentCommand) Validate() error { return nil }

// NewPostCommand scaffolds a post file or bundle with front matter.
type NewPostCommand struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Author          string   `json:"author,omitempty"`
	Draft           bool     `json:"draft,omitempty"`
	Bundle          bool     `json:"bundle,omitempty"`
	CreatedCallback func(path string) `json:"-"`
}

// Type implements command.Message.
func (NewPostCommand) Type() string { return newPostMessageType }

// Validate ensures the title is present and any explicit slug is URL-safe.
func (m NewPostCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Slug, validation.Match(slugPattern).Error("must be a lowercase hyphenated slug")),
		validation.Field(&m.Tags, validation.Each(validation.Required, validation.Length(1, 64))),
	)
}
