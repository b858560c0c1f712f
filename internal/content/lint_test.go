package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mewert/greenbar/internal/markdown"
)

func lintFixtureTree(t *testing.T, files map[string]string) (*markdown.Service, Config) {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	md, err := markdown.NewService(markdown.Config{
		BasePath:  root,
		Pattern:   "*.md",
		Recursive: true,
	}, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}
	return md, Config{PostsDir: "posts", PagesDir: "pages"}
}

func issueProblems(report *LintReport) []string {
	out := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		out = append(out, issue.String())
	}
	return out
}

func TestLintCleanTree(t *testing.T) {
	md, cfg := lintFixtureTree(t, map[string]string{
		"posts/fine/index.md": `---
title: Fine Post
date: 2024-01-02T09:00:00Z
---

![diagram](diagram.svg)
`,
		"posts/fine/diagram.svg": "<svg/>",
		"pages/about.md": `---
title: About
---

Hello.
`,
	})

	report, err := Lint(context.Background(), md, cfg)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected clean report, got %v", issueProblems(report))
	}
	if report.PostsChecked != 1 || report.PagesChecked != 1 {
		t.Fatalf("wrong counts: %+v", report)
	}
}

func TestLintCollectsAllIssues(t *testing.T) {
	md, cfg := lintFixtureTree(t, map[string]string{
		"posts/no-title.md": `---
date: 2024-01-02T09:00:00Z
---

Body.
`,
		"posts/no-date.md": `---
title: No Date
---

Body.
`,
		"posts/dup-a.md": `---
title: Duplicate
slug: duplicate
date: 2024-01-03T09:00:00Z
---

Body.
`,
		"posts/dup-b.md": `---
title: Duplicate
slug: duplicate
date: 2024-01-04T09:00:00Z
---

Body references ![gone](gone.png).
`,
	})

	report, err := Lint(context.Background(), md, cfg)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	problems := strings.Join(issueProblems(report), "\n")

	if !strings.Contains(problems, "title: required") {
		t.Errorf("missing title finding:\n%s", problems)
	}
	if !strings.Contains(problems, "date: required") {
		t.Errorf("missing date finding:\n%s", problems)
	}
	if !strings.Contains(problems, "duplicate slug") {
		t.Errorf("missing duplicate slug finding:\n%s", problems)
	}
	if !strings.Contains(problems, `"gone.png"`) {
		t.Errorf("missing broken image finding:\n%s", problems)
	}

	if report.Errors() != 3 {
		t.Errorf("Errors() = %d, want 3:\n%s", report.Errors(), problems)
	}
	if report.Warnings() != 1 {
		t.Errorf("Warnings() = %d, want 1:\n%s", report.Warnings(), problems)
	}
}

func TestLintExternalAndAbsoluteImageRefsIgnored(t *testing.T) {
	md, cfg := lintFixtureTree(t, map[string]string{
		"posts/links.md": `---
title: Links
date: 2024-01-02T09:00:00Z
---

![ext](https://example.com/pic.png)
![abs](/assets/logo.svg)
`,
	})

	report, err := Lint(context.Background(), md, cfg)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if !report.OK() {
		t.Fatalf("external refs flagged: %v", issueProblems(report))
	}
}

func TestLintSchemaViolations(t *testing.T) {
	md, cfg := lintFixtureTree(t, map[string]string{
		"posts/custom.md": `---
title: Custom Fields
date: 2024-01-02T09:00:00Z
series: 42
---

Body.
`,
	})
	cfg.FrontMatterSchema = map[string]any{
		"fields": map[string]any{
			"series": map[string]any{"type": "string"},
		},
	}

	report, err := Lint(context.Background(), md, cfg)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if report.OK() {
		t.Fatal("expected schema violation for numeric series")
	}
}
