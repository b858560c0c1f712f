package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeNewFixture(t *testing.T) (configPath, postsDir string) {
	t.Helper()

	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	themeDir := filepath.Join(root, "theme")
	postsDir = filepath.Join(contentDir, "posts")

	for _, dir := range []string{postsDir, themeDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	configPath = filepath.Join(root, "site.yaml")
	config := fmt.Sprintf("site:\n  author: Max Ewert\ncontent:\n  dir: %s\ntheme:\n  dir: %s\ngenerator:\n  output_dir: %s\n",
		contentDir, themeDir, filepath.Join(root, "public"))
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, postsDir
}

func TestRunNewScaffoldsPost(t *testing.T) {
	configPath, postsDir := writeNewFixture(t)

	args := []string{"-config", configPath, "-title", "Fixtures Everywhere", "-tags", "go,testing"}
	if err := runNew(args); err != nil {
		t.Fatalf("runNew: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(postsDir, "fixtures-everywhere.md"))
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "title: Fixtures Everywhere") {
		t.Fatalf("missing title:\n%s", text)
	}
	if !strings.Contains(text, "- testing") {
		t.Fatalf("missing tag:\n%s", text)
	}
	if !strings.Contains(text, "author: Max Ewert") {
		t.Fatalf("missing default author:\n%s", text)
	}
}

func TestRunNewBundleAndDraft(t *testing.T) {
	configPath, postsDir := writeNewFixture(t)

	args := []string{"-config", configPath, "-title", "Bundle Post", "-bundle", "-draft"}
	if err := runNew(args); err != nil {
		t.Fatalf("runNew: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(postsDir, "bundle-post", "index.md"))
	if err != nil {
		t.Fatalf("read scaffold: %v", err)
	}
	if !strings.Contains(string(content), "draft: true") {
		t.Fatalf("missing draft flag:\n%s", content)
	}
}

func TestRunNewRequiresTitle(t *testing.T) {
	configPath, _ := writeNewFixture(t)

	if err := runNew([]string{"-config", configPath}); err == nil {
		t.Fatal("expected error without a title")
	}
}
