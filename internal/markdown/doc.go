// Package markdown implements the file ingestion pipeline the blog engine is
// built around: discovering Markdown sources on disk, splitting front matter
// from body content, and rendering bodies to HTML with goldmark.
package markdown
