package ops

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/index"
	"github.com/hpungsan/refcat/internal/loader"
)

const testDoc = `# Next.js

Pages router cheatsheet.

## Routing

### Pages
Files under pages/ become routes.

### Dynamic routes
Use brackets: pages/post/[id].js

` + "```jsx\nexport default function Post() { return <p>post</p> }\n```" + `

### API routes
Files under pages/api become <b>server</b> handlers.

## Images

**next/image**: Optimized image component.

## Data fetching

### getStaticProps
Fetch at build time.

### getServerSideProps
Fetch on every request.

## Empty
`

func loadTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := loader.Load(testDoc)
	if err != nil {
		t.Fatalf("loader.Load failed: %v", err)
	}
	return c
}

func openTestIndex(t *testing.T, c *catalog.Catalog) *sql.DB {
	t.Helper()
	db, err := index.Open(context.Background(), c)
	if err != nil {
		t.Fatalf("index.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func boolPtr(b bool) *bool { return &b }

func itemTitles(items []SummaryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if !errors.Is(err, code) {
		t.Fatalf("error = %v, want %s", err, code)
	}
}

func TestSummarize(t *testing.T) {
	c := loadTestCatalog(t)

	s := Summarize(c.Entries()[1])
	if s.Key != "Routing/Dynamic routes" {
		t.Errorf("Key = %q", s.Key)
	}
	if !s.HasCode || s.Lang != "jsx" {
		t.Errorf("HasCode = %v, Lang = %q", s.HasCode, s.Lang)
	}
	want := catalog.CountChars(c.Entries()[1].Body) + catalog.CountChars(*c.Entries()[1].Code)
	if s.Chars != want {
		t.Errorf("Chars = %d, want %d", s.Chars, want)
	}
	if s.TokensEstimate == 0 {
		t.Error("TokensEstimate = 0")
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, DefaultListLimit, 0},
		{-5, -1, DefaultListLimit, 0},
		{500, 3, MaxListLimit, 3},
		{7, 2, 7, 2},
	}
	for _, tt := range tests {
		limit, offset := clampPage(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("clampPage(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestCategories(t *testing.T) {
	c := loadTestCatalog(t)

	out := Categories(c)
	if out.Total != 4 {
		t.Fatalf("Total = %d, want 4", out.Total)
	}
	if out.Entries != 6 {
		t.Errorf("Entries = %d, want 6", out.Entries)
	}
	if out.CatalogID != c.ID() {
		t.Errorf("CatalogID = %q, want %q", out.CatalogID, c.ID())
	}
	wantCounts := []int{3, 1, 2, 0}
	for i, cat := range out.Items {
		if cat.Count != wantCounts[i] {
			t.Errorf("Items[%d] (%s) Count = %d, want %d", i, cat.Name, cat.Count, wantCounts[i])
		}
	}
}

func TestList(t *testing.T) {
	c := loadTestCatalog(t)

	t.Run("all", func(t *testing.T) {
		out := List(c, ListInput{})
		if len(out.Items) != 6 || out.Pagination.Total != 6 {
			t.Fatalf("len(Items) = %d, Total = %d, want 6", len(out.Items), out.Pagination.Total)
		}
		if out.Pagination.Limit != DefaultListLimit {
			t.Errorf("Limit = %d, want %d", out.Pagination.Limit, DefaultListLimit)
		}
		if out.Sort != SortSourceOrder {
			t.Errorf("Sort = %q", out.Sort)
		}
	})

	t.Run("category", func(t *testing.T) {
		out := List(c, ListInput{Category: "images"})
		if got := itemTitles(out.Items); len(got) != 1 || got[0] != "next/image" {
			t.Errorf("Items = %v, want [next/image]", got)
		}
	})

	t.Run("unknown category is empty", func(t *testing.T) {
		out := List(c, ListInput{Category: "Middleware"})
		if out.Items == nil || len(out.Items) != 0 {
			t.Errorf("Items = %#v, want empty non-nil slice", out.Items)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		out := List(c, ListInput{Limit: 2, Offset: 2})
		got := itemTitles(out.Items)
		if len(got) != 2 || got[0] != "API routes" || got[1] != "next/image" {
			t.Errorf("Items = %v", got)
		}
		if !out.Pagination.HasMore {
			t.Error("HasMore = false, want true")
		}

		out = List(c, ListInput{Limit: 2, Offset: 4})
		if out.Pagination.HasMore {
			t.Error("HasMore = true on last page")
		}
	})
}

func TestSearch(t *testing.T) {
	c := loadTestCatalog(t)

	tests := []struct {
		name  string
		input SearchInput
		want  []string
	}{
		{"title substring", SearchInput{Query: "ROUTES"}, []string{"Dynamic routes", "API routes"}},
		{"empty query matches all", SearchInput{}, []string{"Pages", "Dynamic routes", "API routes", "next/image", "getStaticProps", "getServerSideProps"}},
		{"category filter", SearchInput{Query: "get", Category: "Data fetching"}, []string{"getStaticProps", "getServerSideProps"}},
		{"empty query in category", SearchInput{Category: "routing", Limit: 1}, []string{"Pages"}},
		{"no match", SearchInput{Query: "middleware"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Search(c, tt.input)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			got := itemTitles(out.Items)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Items = %v, want %v", got, tt.want)
			}
		})
	}

	_, err := Search(c, SearchInput{Query: strings.Repeat("x", MaxQueryLength+1)})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestShow(t *testing.T) {
	c := loadTestCatalog(t)

	out, err := Show(c, ShowInput{Category: "ROUTING", Title: "dynamic routes"})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if out.Title != "Dynamic routes" || out.Category != "Routing" {
		t.Errorf("identity = %s/%s", out.Category, out.Title)
	}
	if out.Body == nil || *out.Body != "Use brackets: pages/post/[id].js" {
		t.Errorf("Body = %v", out.Body)
	}
	if out.Code == nil || !strings.Contains(*out.Code, "export default") {
		t.Errorf("Code = %v", out.Code)
	}

	out, err = Show(c, ShowInput{Category: "Routing", Title: "Dynamic routes", IncludeBody: boolPtr(false)})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if out.Body != nil || out.Code != nil {
		t.Error("Body/Code returned with IncludeBody=false")
	}
	if !out.HasCode || out.Chars == 0 {
		t.Errorf("HasCode = %v, Chars = %d", out.HasCode, out.Chars)
	}
}

func TestShow_Errors(t *testing.T) {
	c := loadTestCatalog(t)

	_, err := Show(c, ShowInput{Category: "Images", Title: "Pages"})
	assertCode(t, err, errors.ErrNotFound)

	_, err = Show(c, ShowInput{Title: "Pages"})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = Show(c, ShowInput{Category: "Routing", Title: "  "})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestFullText(t *testing.T) {
	c := loadTestCatalog(t)
	db := openTestIndex(t, c)
	ctx := context.Background()

	out, err := FullText(ctx, db, FullTextInput{Query: "fetch"})
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if out.Pagination.Total != 2 {
		t.Errorf("Total = %d, want 2", out.Pagination.Total)
	}
	if out.Sort != SortRelevance {
		t.Errorf("Sort = %q", out.Sort)
	}
	for _, item := range out.Items {
		if !strings.Contains(item.Snippet, "<b>") {
			t.Errorf("Snippet %q has no highlight", item.Snippet)
		}
	}

	// Entry content is escaped; only highlight tags remain
	out, err = FullText(ctx, db, FullTextInput{Query: "handlers"})
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(out.Items))
	}
	snippet := out.Items[0].Snippet
	if !strings.Contains(snippet, "&lt;b&gt;server&lt;/b&gt;") || !strings.Contains(snippet, "<b>handlers</b>") {
		t.Errorf("Snippet = %q", snippet)
	}

	out, err = FullText(ctx, db, FullTextInput{Query: "fetch", Category: "Routing"})
	if err != nil {
		t.Fatalf("FullText failed: %v", err)
	}
	if out.Pagination.Total != 0 || len(out.Items) != 0 {
		t.Errorf("category filter ignored: %+v", out.Pagination)
	}
}

func TestFullText_Validation(t *testing.T) {
	c := loadTestCatalog(t)
	db := openTestIndex(t, c)

	_, err := FullText(context.Background(), db, FullTextInput{Query: "   "})
	assertCode(t, err, errors.ErrInvalidRequest)

	_, err = FullText(context.Background(), db, FullTextInput{Query: strings.Repeat("a", MaxQueryLength+1)})
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestTruncateSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "abc", 10, "abc"},
		{"zero", "abc", 0, "..."},
		{"word boundary", "alpha beta gamma delta", 14, "alpha beta..."},
		{"closes bold", "<b>alpha beta gamma</b>", 15, "<b>alpha beta</b>..."},
		{"drops partial entity", "aaaaaaa &amp; b", 10, "aaaaaaa..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateSnippet(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateSnippet(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestEscapeSnippetHTML(t *testing.T) {
	in := `<script>x</script> ` + index.SnippetOpen + "match" + index.SnippetClose
	want := `&lt;script&gt;x&lt;/script&gt; <b>match</b>`
	if got := escapeSnippetHTML(in); got != want {
		t.Errorf("escapeSnippetHTML() = %q, want %q", got, want)
	}
}

func TestLint(t *testing.T) {
	c := loadTestCatalog(t)

	out := Lint(c)
	if out.Count != 1 || len(out.Warnings) != 1 {
		t.Fatalf("Count = %d, warnings = %v", out.Count, out.Warnings)
	}
	if out.Warnings[0].Kind != catalog.WarnEmptyCategory {
		t.Errorf("Kind = %q, want %q", out.Warnings[0].Kind, catalog.WarnEmptyCategory)
	}
	if out.Entries != 6 {
		t.Errorf("Entries = %d, want 6", out.Entries)
	}
}
