package ops

import (
	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/lookup"
)

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	CatalogID string             `json:"catalog_id"`
	Title     string             `json:"title,omitempty"`
	Items     []catalog.Category `json:"items"`
	Total     int                `json:"total"`
	Entries   int                `json:"entries"`
}

// Categories lists the categories of c in source order with entry counts.
func Categories(c *catalog.Catalog) *CategoriesOutput {
	items := lookup.Categories(c)
	if items == nil {
		items = []catalog.Category{}
	}
	return &CategoriesOutput{
		CatalogID: c.ID(),
		Title:     c.Title(),
		Items:     items,
		Total:     len(items),
		Entries:   c.Len(),
	}
}
