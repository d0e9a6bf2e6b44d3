package rendering

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/types"
)

// pdfTypeface is a renderer-specific typeface substitute. The portable
// document sticks to the base PostScript families so output does not depend
// on webfont availability inside the print engine.
type pdfTypeface struct {
	Family template.CSS
	Style  template.CSS // "normal" or "italic"
}

// pdfTypefaces maps typography keys to print typefaces. Keys not present
// fall back to the default typeface.
var pdfTypefaces = map[types.TypographyKey]pdfTypeface{
	types.TypographyInter:        {Family: `Helvetica, Arial, sans-serif`, Style: "normal"},
	types.TypographyPlayfair:     {Family: `'Times New Roman', Times, serif`, Style: "normal"},
	types.TypographyMerriweather: {Family: `'Times New Roman', Times, serif`, Style: "normal"},
	types.TypographyLora:         {Family: `'Times New Roman', Times, serif`, Style: "italic"},
	types.TypographySourceSerif:  {Family: `'Times New Roman', Times, serif`, Style: "normal"},
}

// pdfMarkupTemplate is the print markup handed to the headless browser. It is
// intentionally independent of the HTML document template; both must agree on
// section order and visible text, which the parity tests enforce.
const pdfMarkupTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Model.Title}}</title>
<style>
body { font-family: {{.Typeface.Family}}; font-style: {{.Typeface.Style}}; color: #111; margin: 0; }
h1 { text-align: center; color: #0ea5e9; font-size: 22pt; }
h2 { color: #0ea5e9; font-size: 13pt; margin-top: 18pt; }
h3 { font-size: 11pt; margin-bottom: 2pt; }
p, li { font-size: 10pt; line-height: 1.6; white-space: pre-line; }
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

type pdfMarkupData struct {
	Model         *content.Model
	Typeface      pdfTypeface
	TimelineLabel string
}

// A4 paper size in inches for PrintToPDF.
const (
	pdfPaperWidth  = 8.27
	pdfPaperHeight = 11.69
	pdfMargin      = 0.6
)

// PDFRenderer produces the portable document via a headless browser print.
// Requires Chrome/Chromium to be installed on the system.
type PDFRenderer struct {
	tmpl *template.Template
}

// NewPDFRenderer parses the print markup template once and returns the renderer.
func NewPDFRenderer() (*PDFRenderer, error) {
	tmpl, err := template.New("pdf").Parse(pdfMarkupTemplate)
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse print markup template", Cause: err}
	}
	return &PDFRenderer{tmpl: tmpl}, nil
}

// Render builds the print markup and prints it to PDF in a headless browser.
// The caller controls cancellation through ctx; rendering is CPU-bound and
// blocking, so wrap ctx with a timeout for large narratives. Embedded PDF
// metadata (timestamps, ids) varies between runs; the visible text does not.
func (r *PDFRenderer) Render(ctx context.Context, model *content.Model, typography types.TypographyKey) ([]byte, error) {
	markup, err := r.markup(model, typography)
	if err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(markup)

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pdfPaperWidth).
				WithPaperHeight(pdfPaperHeight).
				WithMarginTop(pdfMargin).
				WithMarginBottom(pdfMargin).
				WithMarginLeft(pdfMargin).
				WithMarginRight(pdfMargin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "headless browser print failed", Cause: err}
	}

	return pdf, nil
}

// ContentType returns the MIME type of the rendered document.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension returns the document file extension.
func (r *PDFRenderer) Extension() string { return "pdf" }

// markup renders the intermediate print markup. Split out so tests can check
// content parity without a browser.
func (r *PDFRenderer) markup(model *content.Model, typography types.TypographyKey) ([]byte, error) {
	var buf bytes.Buffer
	data := pdfMarkupData{
		Model:         model,
		Typeface:      pdfTypefaceFor(typography),
		TimelineLabel: content.TimelineSectionLabel,
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, &RenderError{Message: "failed to execute print markup template", Cause: err}
	}
	return buf.Bytes(), nil
}

func pdfTypefaceFor(typography types.TypographyKey) pdfTypeface {
	if face, ok := pdfTypefaces[typography]; ok {
		return face
	}
	return pdfTypefaces[types.DefaultTypography]
}
