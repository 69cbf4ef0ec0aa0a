package catalog

import (
	"strings"
	"testing"
)

func TestLint_Clean(t *testing.T) {
	c := New("", Meta{}, []Category{{Name: "Routing"}}, []Entry{
		{Title: "Pages", Category: "Routing", Body: "text"},
		{Title: "API routes", Category: "Routing", Code: strPtr("export default handler")},
	}, "")

	if warnings := Lint(c); len(warnings) != 0 {
		t.Errorf("Lint() = %v, want no warnings", warnings)
	}
}

func TestLint_Findings(t *testing.T) {
	longTitle := strings.Repeat("x", MaxTitleChars+1)
	c := New("", Meta{}, []Category{{Name: "Routing"}, {Name: "Data"}, {Name: "Unused"}}, []Entry{
		{Title: "Pages", Category: "Routing"},
		{Title: "pages", Category: "Data", Body: "same title, other category"},
		{Title: longTitle, Category: "Data", Body: "x"},
	}, "")

	warnings := Lint(c)

	kinds := make(map[string]int)
	for _, w := range warnings {
		kinds[w.Kind]++
	}

	want := map[string]int{
		WarnEmptyCategory: 1,
		WarnEmptyEntry:    1,
		WarnRepeatedTitle: 1,
		WarnLongTitle:     1,
	}
	for kind, n := range want {
		if kinds[kind] != n {
			t.Errorf("warnings of kind %s = %d, want %d (all: %v)", kind, kinds[kind], n, warnings)
		}
	}

	// Empty categories are reported first
	if warnings[0].Kind != WarnEmptyCategory || warnings[0].Category != "Unused" {
		t.Errorf("warnings[0] = %+v, want empty_category for Unused", warnings[0])
	}
}
