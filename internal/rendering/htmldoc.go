package rendering

import (
	"bytes"
	"context"
	"html/template"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/types"
)

// htmlFontStacks maps typography keys to the web font stacks used by the
// print document. Keys not present fall back to the default stack.
var htmlFontStacks = map[types.TypographyKey]template.CSS{
	types.TypographyInter:        `'Inter', 'Helvetica Neue', Arial, sans-serif`,
	types.TypographyPlayfair:     `'Playfair Display', Georgia, serif`,
	types.TypographyMerriweather: `'Merriweather', Georgia, serif`,
	types.TypographyLora:         `'Lora', Georgia, serif`,
	types.TypographySourceSerif:  `'Source Serif 4', Georgia, serif`,
}

// htmlDocTemplate is the standalone printable document. Narrative and
// timeline bodies keep their line breaks via white-space: pre-line.
const htmlDocTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Model.Title}}</title>
<style>
body { font-family: {{.FontStack}}; color: #1f2937; max-width: 720px; margin: 48px auto; padding: 0 24px; }
h1 { text-align: center; color: #0ea5e9; font-size: 28px; }
h2 { color: #0ea5e9; font-size: 18px; margin-top: 2em; }
p, li { font-size: 14px; line-height: 1.7; white-space: pre-line; }
@media print { body { margin: 0 auto; } }
</style>
</head>
<body>
<h1>{{.Model.Title}}</h1>
{{if .Model.QuoteBlock}}<h2>Favorite Quotes</h2>
<ul>
{{range .Model.QuoteBlock}}<li>{{.}}</li>
{{end}}</ul>
{{end}}{{range .Model.NarrativeBlocks}}{{if .Heading}}<h2>{{.Heading}}</h2>
{{end}}<p>{{.Text}}</p>
{{end}}<h2>{{.TimelineLabel}}</h2>
{{range .Model.TimelineBlocks}}<h3>{{.Heading}}</h3>
<p>{{.Body}}</p>
{{end}}</body>
</html>
`

// htmlDocData is the data structure passed to the document template.
type htmlDocData struct {
	Model         *content.Model
	FontStack     template.CSS
	TimelineLabel string
}

// HTMLRenderer produces the print-ready HTML document.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the document template once and returns the renderer.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("document").Parse(htmlDocTemplate)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse document template", Cause: err}
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render executes the document template for the model. The output text is
// deterministic for identical inputs.
func (r *HTMLRenderer) Render(_ context.Context, model *content.Model, typography types.TypographyKey) ([]byte, error) {
	var buf bytes.Buffer
	data := htmlDocData{
		Model:         model,
		FontStack:     htmlFontStack(typography),
		TimelineLabel: content.TimelineSectionLabel,
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, &RenderError{Message: "failed to execute document template", Cause: err}
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type of the rendered document.
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension returns the document file extension.
func (r *HTMLRenderer) Extension() string { return "html" }

func htmlFontStack(typography types.TypographyKey) template.CSS {
	if stack, ok := htmlFontStacks[typography]; ok {
		return stack
	}
	return htmlFontStacks[types.DefaultTypography]
}
