package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/hpungsan/refcat/internal/catalog"
)

// md converts Markdown with GitHub-flavoured extensions. Raw HTML in the
// source is not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// HTML converts Markdown text to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// EntryHTML renders one entry, including its code sample, as HTML.
func EntryHTML(e catalog.Entry) (string, error) {
	return HTML(EntryMarkdown(e))
}

// CatalogHTML renders a whole catalog as one HTML fragment. Front matter
// is left out.
func CatalogHTML(c *catalog.Catalog) (string, error) {
	var b strings.Builder
	if err := writeMarkdown(&b, c, false); err != nil {
		return "", err
	}
	return HTML(b.String())
}
