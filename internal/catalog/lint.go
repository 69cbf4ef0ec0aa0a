package catalog

import "fmt"

// MaxTitleChars is the title length above which lint reports a warning.
const MaxTitleChars = 80

// Warning kinds reported by Lint.
const (
	WarnEmptyEntry    = "empty_entry"
	WarnEmptyCategory = "empty_category"
	WarnRepeatedTitle = "repeated_title"
	WarnLongTitle     = "long_title"
)

// Warning is a non-fatal finding about a loaded catalog.
type Warning struct {
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message"`
}

// Lint inspects a catalog for content that loads fine but is likely a
// mistake in the source document. Warnings are returned in source order.
func Lint(c *Catalog) []Warning {
	var warnings []Warning

	for _, cat := range c.categories {
		if cat.Count == 0 {
			warnings = append(warnings, Warning{
				Kind:     WarnEmptyCategory,
				Category: cat.Name,
				Message:  fmt.Sprintf("category %q has no entries", cat.Name),
			})
		}
	}

	firstCategory := make(map[string]string)
	for _, e := range c.entries {
		if e.Body == "" && e.Code == nil {
			warnings = append(warnings, Warning{
				Kind:     WarnEmptyEntry,
				Category: e.Category,
				Title:    e.Title,
				Message:  fmt.Sprintf("entry %q has neither body text nor a code sample", e.Key()),
			})
		}

		if n := CountChars(e.Title); n > MaxTitleChars {
			warnings = append(warnings, Warning{
				Kind:     WarnLongTitle,
				Category: e.Category,
				Title:    e.Title,
				Message:  fmt.Sprintf("title of %q is %d characters (max %d)", e.Key(), n, MaxTitleChars),
			})
		}

		title := Fold(e.Title)
		if prev, ok := firstCategory[title]; ok {
			warnings = append(warnings, Warning{
				Kind:     WarnRepeatedTitle,
				Category: e.Category,
				Title:    e.Title,
				Message:  fmt.Sprintf("title %q also appears in category %q", e.Title, prev),
			})
		} else {
			firstCategory[title] = e.Category
		}
	}

	return warnings
}
