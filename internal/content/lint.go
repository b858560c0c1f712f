package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/mewert/greenbar/internal/validation"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// LintSeverity grades a finding. Warnings do not block publishing on their
// own; errors always do.
type LintSeverity string

const (
	SeverityError   LintSeverity = "error"
	SeverityWarning LintSeverity = "warning"
)

// LintIssue describes one problem found while checking the content tree.
type LintIssue struct {
	Path     string       `json:"path"`
	Field    string       `json:"field,omitempty"`
	Problem  string       `json:"problem"`
	Severity LintSeverity `json:"severity"`
}

func (i LintIssue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s: %s", i.Path, i.Severity, i.Problem)
	}
	return fmt.Sprintf("%s: %s: %s: %s", i.Path, i.Severity, i.Field, i.Problem)
}

// LintReport aggregates lint findings across the tree.
type LintReport struct {
	Issues       []LintIssue `json:"issues"`
	PostsChecked int         `json:"posts_checked"`
	PagesChecked int         `json:"pages_checked"`
}

// OK reports whether the tree passed without findings.
func (r *LintReport) OK() bool {
	return r != nil && len(r.Issues) == 0
}

// Errors counts findings that always block publishing.
func (r *LintReport) Errors() int {
	return r.countSeverity(SeverityError)
}

// Warnings counts advisory findings.
func (r *LintReport) Warnings() int {
	return r.countSeverity(SeverityWarning)
}

func (r *LintReport) countSeverity(severity LintSeverity) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			count++
		}
	}
	return count
}

var imageRefPattern = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)`)

// Lint checks the content tree without failing fast: every post and page is
// inspected and all findings are returned together. It uses the same loading
// path as Reload so findings match what a build would reject.
func Lint(ctx context.Context, md interfaces.MarkdownService, cfg Config) (*LintReport, error) {
	if md == nil {
		return nil, errors.New("content: markdown service is required")
	}

	report := &LintReport{}
	record := func(docPath, field, problem string) {
		report.Issues = append(report.Issues, LintIssue{Path: docPath, Field: field, Problem: problem, Severity: SeverityError})
	}
	warn := func(docPath, field, problem string) {
		report.Issues = append(report.Issues, LintIssue{Path: docPath, Field: field, Problem: problem, Severity: SeverityWarning})
	}

	postDocs, err := md.LoadDirectory(ctx, cfg.PostsDir, interfaces.LoadOptions{})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("content: load posts: %w", err)
	}
	pageDocs, err := md.LoadDirectory(ctx, cfg.PagesDir, interfaces.LoadOptions{})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("content: load pages: %w", err)
	}

	slugOwners := map[string]string{}
	claimSlug := func(slug, docPath string) {
		if slug == "" {
			return
		}
		if owner, ok := slugOwners[slug]; ok {
			record(docPath, "slug", fmt.Sprintf("duplicate slug %q, already used by %s", slug, owner))
			return
		}
		slugOwners[slug] = docPath
	}

	for _, doc := range postDocs {
		report.PostsChecked++
		fm := doc.FrontMatter

		if strings.TrimSpace(fm.Title) == "" {
			record(doc.FilePath, "title", "required")
		}
		if fm.Date.IsZero() {
			record(doc.FilePath, "date", "required")
		}

		slug, slugErr := deriveSlug(fm.Slug, fm.Title, doc.FilePath)
		if slugErr != nil {
			record(doc.FilePath, "slug", slugErr.Error())
		} else {
			claimSlug(slug, doc.FilePath)
		}

		if _, tagErr := normalizeTags(fm.Tags); tagErr != nil {
			record(doc.FilePath, "tags", tagErr.Error())
		}

		lintSchema(record, cfg.FrontMatterSchema, doc)
		lintImageRefs(warn, doc)
	}

	for _, doc := range pageDocs {
		report.PagesChecked++
		fm := doc.FrontMatter

		if strings.TrimSpace(fm.Title) == "" {
			record(doc.FilePath, "title", "required")
		}

		slug, slugErr := deriveSlug(fm.Slug, fm.Title, doc.FilePath)
		if slugErr != nil {
			record(doc.FilePath, "slug", slugErr.Error())
		} else {
			claimSlug(slug, doc.FilePath)
		}

		lintImageRefs(warn, doc)
	}

	return report, nil
}

func lintSchema(record func(string, string, string), schema map[string]any, doc *interfaces.Document) {
	if schema == nil || doc.FrontMatter.Custom == nil {
		return
	}
	if err := validation.ValidatePayload(schema, doc.FrontMatter.Custom); err != nil {
		issues := validation.Issues(err)
		if len(issues) == 0 {
			record(doc.FilePath, "", err.Error())
			return
		}
		for _, issue := range issues {
			record(doc.FilePath, issue.Location, issue.Message)
		}
	}
}

// lintImageRefs flags relative image references that do not resolve to a
// co-located bundle asset. Absolute and external references are left alone.
func lintImageRefs(record func(string, string, string), doc *interfaces.Document) {
	assets := map[string]struct{}{}
	for _, asset := range doc.Assets {
		assets[path.Clean(asset)] = struct{}{}
	}

	for _, match := range imageRefPattern.FindAllSubmatch(doc.Body, -1) {
		target := strings.TrimSpace(string(match[1]))
		if target == "" ||
			strings.HasPrefix(target, "http://") ||
			strings.HasPrefix(target, "https://") ||
			strings.HasPrefix(target, "data:") ||
			strings.HasPrefix(target, "/") {
			continue
		}
		if _, ok := assets[path.Clean(target)]; !ok {
			record(doc.FilePath, "", fmt.Sprintf("image reference %q does not resolve to a bundle asset", target))
		}
	}
}
