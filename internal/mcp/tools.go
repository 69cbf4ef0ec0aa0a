package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/refcat/internal/ops"
)

var categoriesToolDef = mcp.NewTool("catalog_categories",
	mcp.WithDescription("List the categories of the loaded reference catalog in document order, with entry counts."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var listToolDef = mcp.NewTool("catalog_list",
	mcp.WithDescription("List entry summaries in document order, optionally restricted to one category. Returns no body text; use catalog_show for that."),
	mcp.WithString("category",
		mcp.Description("Category name (case-insensitive exact match)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results (default 20, max 100)"),
		mcp.DefaultNumber(ops.DefaultListLimit),
		mcp.Min(1),
		mcp.Max(ops.MaxListLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip"),
		mcp.Min(0),
	),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var searchToolDef = mcp.NewTool("catalog_search",
	mcp.WithDescription("Find entries whose title contains the query (case-insensitive). An empty query matches every entry."),
	mcp.WithString("query",
		mcp.Description("Title substring"),
	),
	mcp.WithString("category",
		mcp.Description("Restrict to one category (case-insensitive)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results (default 20, max 100)"),
		mcp.DefaultNumber(ops.DefaultListLimit),
		mcp.Min(1),
		mcp.Max(ops.MaxListLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip"),
		mcp.Min(0),
	),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var showToolDef = mcp.NewTool("catalog_show",
	mcp.WithDescription("Show one entry, with its body and code sample, by category and title."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category name (case-insensitive)"),
	),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Entry title (case-insensitive)"),
	),
	mcp.WithBoolean("include_body",
		mcp.Description("Return body and code (default true)"),
		mcp.DefaultBool(true),
	),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var fullTextToolDef = mcp.NewTool("catalog_fulltext",
	mcp.WithDescription("Full-text search over titles, categories, bodies and code samples, ranked by relevance. Snippets highlight matches with <b> tags."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Words to search for; each word matches as a prefix"),
	),
	mcp.WithString("category",
		mcp.Description("Restrict to one category (case-insensitive)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum results (default 20, max 100)"),
		mcp.DefaultNumber(ops.DefaultListLimit),
		mcp.Min(1),
		mcp.Max(ops.MaxListLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip"),
		mcp.Min(0),
	),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var exportToolDef = mcp.NewTool("catalog_export",
	mcp.WithDescription("Export the catalog, or one category of it, as Markdown, HTML or JSONL text."),
	mcp.WithString("format",
		mcp.Description("Output format"),
		mcp.Enum(ops.FormatMarkdown, ops.FormatHTML, ops.FormatJSONL),
		mcp.DefaultString(ops.FormatMarkdown),
	),
	mcp.WithString("category",
		mcp.Description("Export only this category (case-insensitive)"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)
