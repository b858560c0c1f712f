package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/mewert/greenbar/pkg/interfaces"
)

// ParseFrontMatter splits source into structured front matter and the
// markdown body with the delimiters removed.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var env frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return env.toFrontMatter(), body, nil
}

// BuildDocument assembles a document from a file path, raw file content,
// and modification time. BodyHTML stays empty so callers can render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	return &interfaces.Document{
		FilePath:     path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}, nil
}

// frontMatterEnvelope is the YAML shape of a post header. Keys the engine
// does not know about collect into Custom via the inline tag and are later
// checked against the configured front-matter schema.
type frontMatterEnvelope struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Summary  string         `yaml:"summary"`
	Template string         `yaml:"template"`
	Tags     []string       `yaml:"tags"`
	Author   string         `yaml:"author"`
	Date     time.Time      `yaml:"date"`
	Updated  time.Time      `yaml:"updated"`
	Draft    bool           `yaml:"draft"`
	Custom   map[string]any `yaml:",inline"`
}

func (env frontMatterEnvelope) toFrontMatter() interfaces.FrontMatter {
	custom := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		custom[key] = value
	}

	// Raw mirrors every set key, known and custom, for templates that want
	// the untyped view.
	raw := make(map[string]any, len(custom)+8)
	for key, value := range custom {
		raw[key] = value
	}
	setIf := func(key string, ok bool, value any) {
		if ok {
			raw[key] = value
		}
	}
	setIf("title", env.Title != "", env.Title)
	setIf("slug", env.Slug != "", env.Slug)
	setIf("summary", env.Summary != "", env.Summary)
	setIf("template", env.Template != "", env.Template)
	setIf("tags", len(env.Tags) > 0, append([]string(nil), env.Tags...))
	setIf("author", env.Author != "", env.Author)
	setIf("date", !env.Date.IsZero(), env.Date)
	setIf("updated", !env.Updated.IsZero(), env.Updated)
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Title:    env.Title,
		Slug:     env.Slug,
		Summary:  env.Summary,
		Template: env.Template,
		Tags:     append([]string(nil), env.Tags...),
		Author:   env.Author,
		Date:     env.Date,
		Updated:  env.Updated,
		Draft:    env.Draft,
		Custom:   custom,
		Raw:      raw,
	}
}
