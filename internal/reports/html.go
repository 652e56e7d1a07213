package reports

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d1d9e0; padding: 0.4rem 0.75rem; text-align: left; }
td:last-child { text-align: right; font-variant-numeric: tabular-nums; }
h1, h2 { border-bottom: 1px solid #d1d9e0; padding-bottom: 0.3rem; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("report").Parse(pageTemplate))

// RenderHTML converts a markdown report into a standalone HTML page.
func RenderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTmpl.Execute(&page, struct {
		Title   string
		Content template.HTML
	}{
		Title:   title,
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("executing report template: %w", err)
	}
	return page.String(), nil
}
