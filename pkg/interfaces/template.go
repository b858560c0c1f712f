package interfaces

import "io"

// TemplateRenderer renders named theme templates, or inline template
// strings, into HTML. When writers are supplied, output is copied to each
// of them in addition to being returned.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
