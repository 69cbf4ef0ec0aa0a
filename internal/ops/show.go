package ops

import (
	"strings"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/lookup"
)

// ShowInput addresses one entry by its identity.
type ShowInput struct {
	Category string // required
	Title    string // required
	// IncludeBody controls whether body and code are returned (default true).
	IncludeBody *bool
}

// ShowOutput is a single entry with size metadata.
type ShowOutput struct {
	Category       string  `json:"category"`
	Title          string  `json:"title"`
	Key            string  `json:"key"`
	Body           *string `json:"body,omitempty"`
	Code           *string `json:"code,omitempty"`
	Lang           string  `json:"lang,omitempty"`
	HasCode        bool    `json:"has_code"`
	Chars          int     `json:"chars"`
	TokensEstimate int     `json:"tokens_estimate"`
}

// Show returns the entry identified by category and title.
func Show(c *catalog.Catalog, input ShowInput) (*ShowOutput, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, errors.NewInvalidRequest("category is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	e, ok := lookup.Get(c, input.Category, input.Title)
	if !ok {
		return nil, errors.NewNotFound(catalog.Normalize(input.Category) + "/" + catalog.Normalize(input.Title))
	}

	summary := Summarize(e)
	out := &ShowOutput{
		Category:       e.Category,
		Title:          e.Title,
		Key:            summary.Key,
		Lang:           e.Lang,
		HasCode:        e.HasCode(),
		Chars:          summary.Chars,
		TokensEstimate: summary.TokensEstimate,
	}

	if input.IncludeBody == nil || *input.IncludeBody {
		body := e.Body
		out.Body = &body
		out.Code = e.Code
	}

	return out, nil
}
