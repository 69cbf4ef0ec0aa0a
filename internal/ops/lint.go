package ops

import (
	"github.com/hpungsan/refcat/internal/catalog"
)

// LintOutput contains the findings of the Lint operation.
type LintOutput struct {
	Warnings []catalog.Warning `json:"warnings"`
	Count    int               `json:"count"`
	Entries  int               `json:"entries"`
}

// Lint reports content in c that loads but is likely a mistake.
func Lint(c *catalog.Catalog) *LintOutput {
	warnings := catalog.Lint(c)
	if warnings == nil {
		warnings = []catalog.Warning{}
	}
	return &LintOutput{
		Warnings: warnings,
		Count:    len(warnings),
		Entries:  c.Len(),
	}
}
