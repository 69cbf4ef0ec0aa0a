package ops

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/index"
)

// MaxSnippetChars bounds the length of a full-text snippet.
const MaxSnippetChars = 300

// FullTextInput contains parameters for the FullText operation.
type FullTextInput struct {
	Query    string // required
	Category string // optional filter
	Limit    int    // default: 20, max: 100
	Offset   int    // default: 0
}

// FullTextItem wraps a SummaryItem with a match snippet.
type FullTextItem struct {
	SummaryItem
	// Snippet is HTML-safe: entry content is escaped; only <b>...</b>
	// highlight tags are present.
	Snippet string `json:"snippet"`
}

// FullTextOutput contains the result of the FullText operation.
type FullTextOutput struct {
	Items      []FullTextItem `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"` // "relevance"
}

// FullText searches titles, categories, bodies and code of all entries.
// Results are ranked by relevance (BM25) with title matches weighted 5x.
func FullText(ctx context.Context, database *sql.DB, input FullTextInput) (*FullTextOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	limit, offset := clampPage(input.Limit, input.Offset)

	results, total, err := index.SearchFullText(ctx, database, query, index.SearchFilters{Category: input.Category}, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]FullTextItem, len(results))
	for i, r := range results {
		// Escape entry content first, then truncate (keeps UTF-8 and tags intact)
		snippet := escapeSnippetHTML(r.Snippet)
		snippet = truncateSnippet(snippet, MaxSnippetChars)

		items[i] = FullTextItem{
			SummaryItem: Summarize(r.Entry),
			Snippet:     snippet,
		}
	}

	return &FullTextOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: SortRelevance,
	}, nil
}

// truncateSnippet truncates a snippet to approximately maxChars bytes without
// splitting runes, entities or <b> tags, preferring a word boundary.
func truncateSnippet(s string, maxChars int) string {
	if maxChars <= 0 {
		return "..."
	}
	if len(s) <= maxChars {
		return s
	}

	truncateAt := maxChars
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	if truncateAt == 0 {
		return "..."
	}

	truncated := s[:truncateAt]

	// Only <b>, </b> and escaped entities can appear here
	if lastLT := strings.LastIndex(truncated, "<"); lastLT != -1 && !strings.Contains(truncated[lastLT:], ">") {
		truncated = truncated[:lastLT]
	}
	if lastAmp := strings.LastIndex(truncated, "&"); lastAmp != -1 && !strings.Contains(truncated[lastAmp:], ";") {
		truncated = truncated[:lastAmp]
	}

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > truncateAt/2 {
		truncated = truncated[:lastSpace]
	}

	for range strings.Count(truncated, "<b>") - strings.Count(truncated, "</b>") {
		truncated += "</b>"
	}

	return truncated + "..."
}

// escapeSnippetHTML escapes entry content in a snippet while turning the
// index highlight markers into <b> tags.
func escapeSnippetHTML(s string) string {
	const (
		openPlaceholder  = "\x00REFCAT_B_OPEN\x00"
		closePlaceholder = "\x00REFCAT_B_CLOSE\x00"
	)

	s = strings.ReplaceAll(s, index.SnippetOpen, openPlaceholder)
	s = strings.ReplaceAll(s, index.SnippetClose, closePlaceholder)

	s = html.EscapeString(s)

	s = strings.ReplaceAll(s, openPlaceholder, "<b>")
	s = strings.ReplaceAll(s, closePlaceholder, "</b>")

	return s
}
