package output

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// DownloadName is the file name used by the save action.
const DownloadName = "summary.txt"

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

// View is what the summary area renders: the raw text for the read-only textarea,
// whether copy/save are enabled, and an HTML preview of the text as markdown.
type View struct {
	Summary      string
	Enabled      bool
	Preview      template.HTML
	DownloadName string
}

func New(summary string) View {
	return View{
		Summary:      summary,
		Enabled:      summary != "",
		Preview:      RenderPreview(summary),
		DownloadName: DownloadName,
	}
}

// RenderPreview converts markdown to HTML. Raw HTML in the input is not passed
// through (goldmark's default), so the result is safe to embed.
func RenderPreview(markdown string) template.HTML {
	text := strings.TrimSpace(markdown)
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
	}
	return template.HTML(buf.String())
}
