package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mewert/greenbar/pkg/interfaces"
)

// NewTemplateRenderer returns an interfaces.TemplateRenderer backed by
// html/template. Templates are discovered under baseDir (.tmpl and .html
// files, recursively) and parsed lazily on first render. Template names are
// paths relative to baseDir so themes can organise partials in directories.
func NewTemplateRenderer(baseDir string) (interfaces.TemplateRenderer, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("render: inspect template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("render: template path %q is not a directory", baseDir)
	}
	return &templateRenderer{baseDir: baseDir}, nil
}

type templateRenderer struct {
	baseDir string
	once    sync.Once
	tpl     *template.Template
	err     error
}

func (r *templateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		root := template.New("theme").Funcs(helperFuncs())
		found := false
		err := filepath.WalkDir(r.baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != ".html" && ext != ".tmpl" {
				return nil
			}
			rel, err := filepath.Rel(r.baseDir, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := root.New(filepath.ToSlash(rel)).Parse(string(data)); err != nil {
				return fmt.Errorf("parse template %s: %w", rel, err)
			}
			found = true
			return nil
		})
		if err != nil {
			r.err = fmt.Errorf("render: %w", err)
			return
		}
		if !found {
			r.err = fmt.Errorf("render: no templates found in %s", r.baseDir)
			return
		}
		r.tpl = root
	})
	return r.tpl, r.err
}

func (r *templateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *templateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	if tpl.Lookup(name) == nil {
		return "", fmt.Errorf("render: template %q not found", name)
	}
	return execute(func(w io.Writer) error {
		return tpl.ExecuteTemplate(w, name, data)
	}, out...)
}

func (r *templateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(helperFuncs()).Parse(content)
	if err != nil {
		return "", err
	}
	return execute(func(w io.Writer) error {
		return tpl.Execute(w, data)
	}, out...)
}

func execute(run func(io.Writer) error, out ...io.Writer) (string, error) {
	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}
	if err := run(writer); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value any) template.HTML { return toHTML(value) },
		"formatDate": func(layout string, ts time.Time) string {
			if ts.IsZero() {
				return ""
			}
			if strings.TrimSpace(layout) == "" {
				layout = "January 2, 2006"
			}
			return ts.Format(layout)
		},
		"joinTags": func(tags []string, sep string) string {
			return strings.Join(tags, sep)
		},
		"lower": strings.ToLower,
	}
}

func toHTML(value any) template.HTML {
	switch v := value.(type) {
	case nil:
		return ""
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	case []byte:
		return template.HTML(v)
	case fmt.Stringer:
		return template.HTML(v.String())
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
