package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
)

// MaxSearchQueryChars bounds the length of a full-text query.
const MaxSearchQueryChars = 500

// Snippet highlight markers. Callers escape the snippet text and then
// replace these with real markup.
const (
	SnippetOpen  = "[[[B]]]"
	SnippetClose = "[[[/B]]]"
)

// SearchFilters narrows a full-text search.
type SearchFilters struct {
	Category string // optional, compared case-insensitively
}

// SearchResult is one ranked full-text match.
type SearchResult struct {
	Seq     int
	Entry   catalog.Entry
	Snippet string
}

// SearchFullText ranks entries matching query with BM25. Title matches
// weigh most, then category, then body and code. It returns one page of
// results and the total number of matches.
func SearchFullText(ctx context.Context, db *sql.DB, query string, filters SearchFilters, limit, offset int) ([]SearchResult, int, error) {
	if utf8.RuneCountInString(query) > MaxSearchQueryChars {
		return nil, 0, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxSearchQueryChars))
	}
	match := BuildMatchQuery(query)
	if match == "" {
		return nil, 0, errors.NewInvalidRequest("query has no searchable terms")
	}

	where := "entries_fts MATCH ?"
	args := []any{match}
	if category := catalog.Fold(filters.Category); category != "" {
		where += " AND e.category_fold = ?"
		args = append(args, category)
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM entries_fts
		JOIN entries e ON e.seq = entries_fts.rowid
		WHERE ` + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, wrapQueryError(ctx, "full-text search", err)
	}

	pageQuery := `
		SELECT e.seq, e.category, e.title, e.body, e.code, e.lang,
			snippet(entries_fts, -1, '` + SnippetOpen + `', '` + SnippetClose + `', '...', 16)
		FROM entries_fts
		JOIN entries e ON e.seq = entries_fts.rowid
		WHERE ` + where + `
		ORDER BY bm25(entries_fts, 5.0, 2.0, 1.0, 1.0), e.seq
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, pageQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, wrapQueryError(ctx, "full-text search", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var (
			r    SearchResult
			code sql.NullString
		)
		if err := rows.Scan(&r.Seq, &r.Entry.Category, &r.Entry.Title, &r.Entry.Body, &code, &r.Entry.Lang, &r.Snippet); err != nil {
			return nil, 0, wrapQueryError(ctx, "full-text search", err)
		}
		if code.Valid {
			r.Entry.Code = &code.String
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapQueryError(ctx, "full-text search", err)
	}

	return results, total, nil
}

// BuildMatchQuery turns free text into an FTS5 expression of quoted prefix
// terms joined by AND. FTS5 operators and column filters in the input are
// treated as plain words. It returns "" when no terms remain.
func BuildMatchQuery(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"*`
	}
	return strings.Join(quoted, " ")
}
