package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cat *catalog.Catalog
	db  *sql.DB
}

// NewHandlers creates a new Handlers instance. db is the full-text index.
func NewHandlers(cat *catalog.Catalog, db *sql.DB) *Handlers {
	return &Handlers{cat: cat, db: db}
}

// Request types for each tool

// ListRequest represents the arguments for catalog_list.
type ListRequest struct {
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for catalog_search and catalog_fulltext.
type SearchRequest struct {
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ShowRequest represents the arguments for catalog_show.
type ShowRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	IncludeBody *bool  `json:"include_body,omitempty"`
}

// ExportRequest represents the arguments for catalog_export.
type ExportRequest struct {
	Format   string `json:"format,omitempty"`
	Category string `json:"category,omitempty"`
}

// Handler implementations

// HandleCategories handles the catalog_categories tool call.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Categories(h.cat))
}

// HandleList handles the catalog_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	return successResult(ops.List(h.cat, ops.ListInput{
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}))
}

// HandleSearch handles the catalog_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	output, err := ops.Search(h.cat, ops.SearchInput{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(output)
}

// HandleShow handles the catalog_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	output, err := ops.Show(h.cat, ops.ShowInput{
		Category:    input.Category,
		Title:       input.Title,
		IncludeBody: input.IncludeBody,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(output)
}

// HandleFullText handles the catalog_fulltext tool call.
func (h *Handlers) HandleFullText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	output, err := ops.FullText(ctx, h.db, ops.FullTextInput{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(output)
}

// HandleExport handles the catalog_export tool call. The export is returned
// as text content rather than written to disk.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var b strings.Builder
	if _, err := ops.Export(ctx, h.cat, ops.ExportInput{
		Format:   input.Format,
		Category: input.Category,
	}, &b); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// errorResult creates an MCP error result with a structured payload.
// Wrapped errors keep their wrapper context in the message.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var rErr *errors.RefcatError
	if stderrors.As(err, &rErr) {
		message := rErr.Message
		if prefix := strings.TrimSuffix(err.Error(), rErr.Error()); prefix != err.Error() && prefix != "" {
			message = prefix + message
		}
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": message,
			"status":  rErr.Status,
		}
		// Internal details may carry file paths or SQL errors
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
