package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/ops"
	"github.com/hpungsan/refcat/internal/render"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title        string
	CatalogTitle string
	Version      string
	Nav          string // active nav item: "entries", "categories", "search"
}

// ListPageData is the template data for the entry list page.
type ListPageData struct {
	PageData
	Items      []ops.SummaryItem
	Pagination ops.Pagination
	Category   string
	Categories []catalog.Category
}

// CategoriesPageData is the template data for the categories page.
type CategoriesPageData struct {
	PageData
	Categories *ops.CategoriesOutput
	Intros     map[string]template.HTML
}

// DetailPageData is the template data for the entry detail page.
type DetailPageData struct {
	PageData
	Entry        *ops.ShowOutput
	RenderedHTML template.HTML
}

// SearchPageData is the template data for the search page.
type SearchPageData struct {
	PageData
	Query       string
	Category    string
	FullText    bool
	HasFullText bool
	HasQuery    bool
	Items       []ops.SummaryItem
	Hits        []ops.FullTextItem
	Pagination  ops.Pagination
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates    map[string]*template.Template
	version      string
	catalogTitle string
	logger       *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version, catalogTitle string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"formatChars": formatChars,
		"entryURL":    entryURL,
		"listURL":     listURL,
		"safeHTML":    func(s string) template.HTML { return template.HTML(s) },
		"deref":       deref,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":       "list.html",
		"categories": "categories.html",
		"detail":     "detail.html",
		"search":     "search.html",
		"error":      "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates:    templates,
		version:      version,
		catalogTitle: catalogTitle,
		logger:       logger,
	}
}

// page fills the fields shared by every page.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{
		Title:        title,
		CatalogTitle: r.catalogTitle,
		Version:      r.version,
		Nav:          nav,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", "template", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed", "template", page, "block", block, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var rErr *errors.RefcatError
	if !stderrors.As(err, &rErr) {
		r.logger.Error("request failed", "path", req.URL.Path, "error", err)
		rErr = errors.NewInternal(err)
	}

	status := rErr.Status
	message := rErr.Message

	// htmx request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(rErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML, falling back to escaped
// text if conversion fails.
func renderMarkdown(md string) template.HTML {
	out, err := render.HTML(md)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(out)
}

// entryURL builds the detail page path for an entry. Each segment is
// escaped so titles like "next/image" stay in one segment.
func entryURL(category, title string) string {
	return "/entries/" + url.PathEscape(category) + "/" + url.PathEscape(title)
}

// listURL builds the entry list path, optionally filtered by category.
func listURL(category string) string {
	if category == "" {
		return "/entries"
	}
	return "/entries?category=" + url.QueryEscape(category)
}

// formatChars formats an integer with comma thousands separators.
func formatChars(n int) string {
	if n < 0 {
		return "-" + formatChars(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// deref dereferences a string pointer, returning "" if nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
