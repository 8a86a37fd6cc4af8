package normalize

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Renderer converts a full decision document (HTML) into display text.
// Document endpoints such as UYAP getDokuman return the bare decision as
// HTML; rendering the whole body beats running the selector cascade there.
type Renderer interface {
	// Name identifies the renderer in extraction-method diagnostics.
	Name() string
	// Render converts HTML to text. Output still goes through Cleaner.
	Render(html string) (string, error)
}

// MarkdownRenderer keeps headings, emphasis and list structure.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Name() string { return "markdown" }

func (MarkdownRenderer) Render(html string) (string, error) {
	return htmltomarkdown.ConvertString(html)
}

// PlainTextRenderer is the fallback conversion: strip markup, keep text.
type PlainTextRenderer struct{}

func (PlainTextRenderer) Name() string { return "plaintext" }

func (PlainTextRenderer) Render(html string) (string, error) {
	return StripTags(html), nil
}

// NewRenderer resolves the conversion strategy once at startup. Both paths
// satisfy the same interface; callers never branch per document.
func NewRenderer(rich bool) Renderer {
	if rich {
		return MarkdownRenderer{}
	}
	return PlainTextRenderer{}
}
