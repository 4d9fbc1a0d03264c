package template

import "io"

// TemplateRenderer executes named or inline templates. Data passes through
// its JSON form, so struct json tags become template keys. Output is
// returned and also copied to any writers given.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
