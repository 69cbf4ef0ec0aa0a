// Package ops implements the catalog operations shared by the CLI, the MCP
// server and the web UI.
package ops

import (
	"github.com/hpungsan/refcat/internal/catalog"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxQueryLength   = 500
)

// Sort orders reported in list outputs.
const (
	SortSourceOrder = "source_order"
	SortRelevance   = "relevance"
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// SummaryItem describes an entry without its body or code.
type SummaryItem struct {
	Category       string `json:"category"`
	Title          string `json:"title"`
	Key            string `json:"key"`
	HasCode        bool   `json:"has_code"`
	Lang           string `json:"lang,omitempty"`
	Chars          int    `json:"chars"`
	TokensEstimate int    `json:"tokens_estimate"`
}

// Summarize builds the summary of e.
func Summarize(e catalog.Entry) SummaryItem {
	text := e.Body
	if e.Code != nil {
		text += "\n" + *e.Code
	}
	return SummaryItem{
		Category:       e.Category,
		Title:          e.Title,
		Key:            e.Key(),
		HasCode:        e.HasCode(),
		Lang:           e.Lang,
		Chars:          catalog.CountChars(e.Body) + codeChars(e),
		TokensEstimate: catalog.EstimateTokens(text),
	}
}

func codeChars(e catalog.Entry) int {
	if e.Code == nil {
		return 0
	}
	return catalog.CountChars(*e.Code)
}

func summarizeAll(entries []catalog.Entry) []SummaryItem {
	items := make([]SummaryItem, len(entries))
	for i, e := range entries {
		items[i] = Summarize(e)
	}
	return items
}

// clampPage applies limit defaults and bounds and keeps offset non-negative.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}
