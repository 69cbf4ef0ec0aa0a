package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
)

// DefaultSelector picks the content root of an HTML page. Alternatives are
// tried in order; the first one that matches wins.
const DefaultSelector = "main, article, body"

// LoadHTML converts an HTML page into Markdown and loads it. Only the
// content root chosen by selector is converted, so site navigation and
// footers stay out of the catalog.
func LoadHTML(r io.Reader, selector string) (*catalog.Catalog, error) {
	md, err := htmlToMarkdown(r, selector)
	if err != nil {
		return nil, err
	}
	return Load(md)
}

func htmlToMarkdown(r io.Reader, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.NewStructural(0, fmt.Sprintf("failed to parse HTML: %v", err))
	}

	root := selectRoot(doc, selector)
	if strings.TrimSpace(root.Text()) == "" {
		return "", errors.NewEmptyInput("HTML document has no text content")
	}

	html, err := goquery.OuterHtml(root)
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("render content root: %w", err))
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	md, err := conv.ConvertString(html)
	if err != nil {
		return "", errors.NewStructural(0, fmt.Sprintf("failed to convert HTML: %v", err))
	}
	return md, nil
}

// selectRoot returns the first element matched by the first alternative of
// selector that matches anything. goquery returns group matches in
// document order, so "main, body" would otherwise always pick body.
func selectRoot(doc *goquery.Document, selector string) *goquery.Selection {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultSelector
	}
	for _, alt := range strings.Split(selector, ",") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		if sel := doc.Find(alt).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body").First()
}
