package ops

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/lookup"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Category string // optional filter
	Limit    int    // default: 20, max: 100
	Offset   int    // default: 0
}

// ListOutput contains the result of the List and Search operations.
type ListOutput struct {
	Items      []SummaryItem `json:"items"`
	Pagination Pagination    `json:"pagination"`
	Sort       string        `json:"sort"`
}

// List returns entry summaries in source order, optionally restricted to
// one category.
func List(c *catalog.Catalog, input ListInput) *ListOutput {
	var seq iter.Seq[catalog.Entry] = c.All()
	if strings.TrimSpace(input.Category) != "" {
		seq = lookup.ByCategory(c, input.Category)
	}
	return page(seq, input.Limit, input.Offset)
}

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query    string // title substring; empty matches every entry
	Category string // optional filter
	Limit    int    // default: 20, max: 100
	Offset   int    // default: 0
}

// Search returns summaries of entries whose title contains the query,
// ignoring case, in source order.
func Search(c *catalog.Catalog, input SearchInput) (*ListOutput, error) {
	if utf8.RuneCountInString(input.Query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	seq := lookup.Filter(lookup.Search(c, input.Query), input.Category)
	return page(seq, input.Limit, input.Offset), nil
}

func page(seq iter.Seq[catalog.Entry], limit, offset int) *ListOutput {
	limit, offset = clampPage(limit, offset)
	entries, total := lookup.Page(seq, offset, limit)

	return &ListOutput{
		Items: summarizeAll(entries),
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(entries) < total,
			Total:   total,
		},
		Sort: SortSourceOrder,
	}
}
