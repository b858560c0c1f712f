package content

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
)

const (
	summaryMaxRunes = 280
	wordsPerMinute  = 200
)

// deriveSlug picks the post's URL identity: explicit front-matter slug first,
// then the title, then the file stem. Whatever wins is normalized with go-slug
// so every slug is URL-safe.
func deriveSlug(explicit, title, filePath string) (string, error) {
	for _, candidate := range []string{explicit, title, fileStem(filePath)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		normalized, err := slug.Normalize(candidate)
		if err != nil || normalized == "" {
			continue
		}
		return normalized, nil
	}
	return "", fmt.Errorf("%w: no usable slug candidate", ErrSlugInvalid)
}

// normalizeSlug normalizes slugs and tags supplied by callers for lookups.
func normalizeSlug(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrSlugInvalid)
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrSlugInvalid, value)
	}
	return normalized, nil
}

// fileStem extracts the naming component of a document path. Bundles are
// named by their directory, standalone files by the base name without
// extension.
func fileStem(filePath string) string {
	base := path.Base(filePath)
	if base == "index.md" {
		return path.Base(path.Dir(filePath))
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		value, err := slug.Normalize(trimmed)
		if err != nil || value == "" {
			return nil, fmt.Errorf("%w: tag %q", ErrSlugInvalid, tag)
		}
		normalized = append(normalized, value)
	}
	return uniqueTags(normalized), nil
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var (
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	inlineCodePattern = regexp.MustCompile("`([^`]*)`")
)

// deriveSummary falls back to the first prose paragraph when front matter
// declares no summary. Headings, code fences, and image-only lines are
// skipped; inline markup is stripped.
func deriveSummary(body []byte) string {
	var paragraph []string
	inFence := false

	flush := func() string {
		if len(paragraph) == 0 {
			return ""
		}
		text := strings.Join(paragraph, " ")
		paragraph = paragraph[:0]
		return strings.TrimSpace(text)
	}

	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if trimmed == "" {
			if text := flush(); text != "" {
				return truncateSummary(stripInlineMarkup(text))
			}
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			paragraph = paragraph[:0]
			continue
		}
		if imagePattern.MatchString(trimmed) && strings.TrimSpace(imagePattern.ReplaceAllString(trimmed, "")) == "" {
			continue
		}

		paragraph = append(paragraph, trimmed)
	}

	if text := flush(); text != "" {
		return truncateSummary(stripInlineMarkup(text))
	}
	return ""
}

func stripInlineMarkup(text string) string {
	text = imagePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = strings.NewReplacer("**", "", "__", "", "*", "", "_", "").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

func truncateSummary(text string) string {
	runes := []rune(text)
	if len(runes) <= summaryMaxRunes {
		return text
	}
	cut := summaryMaxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = summaryMaxRunes
	}
	return strings.TrimRight(string(runes[:cut]), " ,;:") + "…"
}

// readingTime estimates minutes to read at a comfortable pace, never below one.
func readingTime(body []byte) int {
	words := len(strings.Fields(string(body)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
