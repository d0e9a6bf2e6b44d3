package rendering

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/types"
)

func sampleModel() *content.Model {
	return &content.Model{
		Title:      "A Life in Full",
		QuoteBlock: []string{"Carpe diem.", "Know thyself."},
		NarrativeBlocks: []content.NarrativeBlock{
			{Heading: "Childhood Memories", Text: "Long summers by the lake."},
			{Text: "A headingless paragraph."},
		},
		TimelineBlocks: []content.TimelineBlock{
			{Heading: "June 15, 2008 — Graduation", Body: "Finished school."},
		},
	}
}

func TestHTMLRendererContentAndOrder(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	doc, err := renderer.Render(context.Background(), sampleModel(), types.TypographyLora)
	require.NoError(t, err)

	lines, err := VisibleText(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"A Life in Full",
		"Favorite Quotes",
		"Carpe diem.",
		"Know thyself.",
		"Childhood Memories",
		"Long summers by the lake.",
		"A headingless paragraph.",
		"Timeline of Major Events",
		"June 15, 2008 — Graduation",
		"Finished school.",
	}, lines)
}

func TestHTMLRendererOmitsQuoteSectionWhenEmpty(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	model := sampleModel()
	model.QuoteBlock = nil

	doc, err := renderer.Render(context.Background(), model, types.DefaultTypography)
	require.NoError(t, err)

	assert.NotContains(t, string(doc), "Favorite Quotes")
	// The timeline heading appears even when the quote section is gone.
	assert.Contains(t, string(doc), content.TimelineSectionLabel)
}

func TestHTMLRendererAlwaysEmitsTimelineHeading(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	model := sampleModel()
	model.TimelineBlocks = nil

	doc, err := renderer.Render(context.Background(), model, types.DefaultTypography)
	require.NoError(t, err)

	assert.Contains(t, string(doc), content.TimelineSectionLabel)
}

func TestHTMLRendererTypographyMapping(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	doc, err := renderer.Render(context.Background(), sampleModel(), types.TypographyPlayfair)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Playfair Display")

	// Unknown keys fall back to the default stack.
	doc, err = renderer.Render(context.Background(), sampleModel(), types.TypographyKey("wingdings"))
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Inter")
}

func TestHTMLRendererEscapesContent(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	model := &content.Model{
		Title:           "<script>alert(1)</script>",
		NarrativeBlocks: []content.NarrativeBlock{{Text: "a < b & c"}},
	}

	doc, err := renderer.Render(context.Background(), model, types.DefaultTypography)
	require.NoError(t, err)

	assert.NotContains(t, string(doc), "<script>alert")
	assert.Contains(t, string(doc), "&lt;script&gt;")
}

func TestRendererParity(t *testing.T) {
	html, err := NewHTMLRenderer()
	require.NoError(t, err)
	pdf, err := NewPDFRenderer()
	require.NoError(t, err)

	cases := []struct {
		name  string
		model *content.Model
	}{
		{"full", sampleModel()},
		{"no quotes", func() *content.Model { m := sampleModel(); m.QuoteBlock = nil; return m }()},
		{"no timeline", func() *content.Model { m := sampleModel(); m.TimelineBlocks = nil; return m }()},
		{"title only", &content.Model{Title: "Sparse"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			htmlDoc, err := html.Render(context.Background(), tc.model, types.TypographyMerriweather)
			require.NoError(t, err)
			printMarkup, err := pdf.markup(tc.model, types.TypographyMerriweather)
			require.NoError(t, err)

			htmlLines, err := VisibleText(htmlDoc)
			require.NoError(t, err)
			printLines, err := VisibleText(printMarkup)
			require.NoError(t, err)

			assert.Equal(t, htmlLines, printLines,
				"renderers disagree on visible text or section order")
		})
	}
}

func TestPDFTypefaceFallback(t *testing.T) {
	face := pdfTypefaceFor(types.TypographyKey("unknown"))
	assert.Equal(t, pdfTypefaces[types.DefaultTypography], face)

	lora := pdfTypefaceFor(types.TypographyLora)
	assert.EqualValues(t, "italic", lora.Style)
}

func TestPDFRendererRender(t *testing.T) {
	if !chromeAvailable() {
		t.Skip("no Chrome/Chromium binary on PATH")
	}

	renderer, err := NewPDFRenderer()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pdf, err := renderer.Render(ctx, sampleModel(), types.DefaultTypography)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")), "output is not a PDF document")
}

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestVisibleText(t *testing.T) {
	doc := []byte(`<html><body><h1>Title</h1><p>line one
line two</p><ul><li>item</li></ul></body></html>`)

	lines, err := VisibleText(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "line one", "line two", "item"}, lines)
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"simple", "My Life", "My_Life.pdf"},
		{"punctuation collapses", "Dreams, Beliefs & Goals!", "Dreams_Beliefs_Goals.pdf"},
		{"leading and trailing stripped", "  ~My Story~  ", "My_Story.pdf"},
		{"empty falls back", "", "autobiography.pdf"},
		{"all symbols falls back", "???", "autobiography.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExportFilename(tt.title, "pdf"))
		})
	}
}
