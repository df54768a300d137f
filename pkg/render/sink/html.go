package sink

import (
	"bytes"
	"context"
	"html/template"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: {{.FontSize}}pt; margin: 2em; }
.tab-page { margin-bottom: 2em; }
.tab-page + .tab-page { border-top: 1px solid #ddd; padding-top: 1em; }
img { max-width: 100%; height: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLRenderer wraps the sanitized markup in a standalone page.
type HTMLRenderer struct{}

// Render implements [Renderer].
func (HTMLRenderer) Render(_ context.Context, in Input) ([]byte, error) {
	title, size := "", 12.0
	if in.Definition != nil {
		title = in.Definition.Info.Title
		if in.Definition.DefaultStyle.FontSize > 0 {
			size = in.Definition.DefaultStyle.FontSize
		}
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title    string
		FontSize float64
		Body     template.HTML
	}{title, size, template.HTML(in.HTML)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
