package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/ops"
	"github.com/hpungsan/refcat/internal/render"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cat      *catalog.Catalog
	db       *sql.DB // full-text index; nil disables full-text search
	renderer *Renderer
}

// HandleList handles GET /entries: entry summaries, optionally for one category.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	result := ops.List(h.cat, ops.ListInput{
		Category: category,
		Limit:    parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:   parseIntParam(r, "offset", 0),
	})

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	title := "Entries"
	if category != "" {
		title = catalog.Normalize(category)
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:   h.renderer.page(title, "entries"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Category:   category,
		Categories: h.cat.Categories(),
	})
}

// HandleCategories handles GET /categories: categories with counts and intros.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result := ops.Categories(h.cat)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	intros := make(map[string]template.HTML, len(result.Items))
	for _, c := range result.Items {
		if c.Intro != "" {
			intros[c.Name] = renderMarkdown(c.Intro)
		}
	}

	h.renderer.renderPage(w, r, "categories", CategoriesPageData{
		PageData:   h.renderer.page("Categories", "categories"),
		Categories: result,
		Intros:     intros,
	})
}

// HandleDetail handles GET /entries/{category}/{title}: one entry.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	entry, err := ops.Show(h.cat, ops.ShowInput{
		Category: r.PathValue("category"),
		Title:    r.PathValue("title"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, entry)
		return
	}

	rendered, err := render.EntryHTML(catalog.Entry{
		Title:    entry.Title,
		Category: entry.Category,
		Body:     deref(entry.Body),
		Code:     entry.Code,
		Lang:     entry.Lang,
	})
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     h.renderer.page(entry.Title, "entries"),
		Entry:        entry,
		RenderedHTML: template.HTML(rendered),
	})
}

// HandleSearch handles GET /search: title lookup, or full-text search when
// fulltext=true and an index is available.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	data := SearchPageData{
		PageData:    h.renderer.page("Search", "search"),
		Query:       query,
		Category:    category,
		FullText:    h.db != nil && parseBoolParam(r, "fulltext"),
		HasFullText: h.db != nil,
		HasQuery:    query != "",
	}

	if query == "" {
		// User cleared the search box: return just the results fragment
		if r.Header.Get("HX-Target") == "results" {
			h.renderer.renderBlock(w, http.StatusOK, "search", "search-results", data)
			return
		}
		h.renderer.renderPage(w, r, "search", data)
		return
	}

	limit := parseIntParam(r, "limit", ops.DefaultListLimit)
	offset := parseIntParam(r, "offset", 0)

	var result any
	if data.FullText {
		out, err := ops.FullText(r.Context(), h.db, ops.FullTextInput{
			Query:    query,
			Category: category,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Hits, data.Pagination, result = out.Items, out.Pagination, out
	} else {
		out, err := ops.Search(h.cat, ops.SearchInput{
			Query:    query,
			Category: category,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Items, data.Pagination, result = out.Items, out.Pagination, out
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// htmx targets #results: render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "search", "search-results", data)
		return
	}

	h.renderer.renderPage(w, r, "search", data)
}

// HandleExport handles GET /export: the catalog, or one category of it, as a
// download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = ops.FormatMarkdown
	}
	category := r.URL.Query().Get("category")

	var buf bytes.Buffer
	out, err := ops.Export(r.Context(), h.cat, ops.ExportInput{
		Format:   format,
		Category: category,
	}, &buf)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	etag := exportETag(out, category)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentTypes[out.Format])
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="catalog.%s"`, out.Format))
	w.Header().Set("ETag", etag)
	w.Header().Set("X-Refcat-Checksum", out.Checksum)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportETag derives the tag from the document checksum plus the format
// and category filter of the request. JSONL carries a per-export timestamp
// in its header line, so its tag is weak.
func exportETag(out *ops.ExportOutput, category string) string {
	tag := out.Checksum + "-" + out.Format
	if folded := catalog.Fold(category); folded != "" {
		tag += "-" + catalog.Checksum(folded)
	}
	if out.Format == ops.FormatJSONL {
		return `W/"` + tag + `"`
	}
	return `"` + tag + `"`
}

// etagMatches applies the weak comparison used for If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

var contentTypes = map[string]string{
	ops.FormatMarkdown: "text/markdown; charset=utf-8",
	ops.FormatHTML:     "text/html; charset=utf-8",
	ops.FormatJSONL:    "application/x-ndjson",
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1" || s == "on"
}
