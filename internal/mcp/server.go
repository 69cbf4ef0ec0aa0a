package mcp

import (
	"database/sql"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"catalog"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"catalog_categories": {
		def:     categoriesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategories },
	},
	"catalog_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"catalog_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"catalog_show": {
		def:     showToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"catalog_fulltext": {
		def:     fullTextToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFullText },
	},
	"catalog_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "catalog_show" → "catalog").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server exposing the catalog tools.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration. db is the full-text index; when it is nil
// the catalog_fulltext tool is not registered.
func NewServer(cat *catalog.Catalog, db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"refcat",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(cat, db)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}
	if db == nil {
		disabled["catalog_fulltext"] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the catalog over MCP on stdio until stdin closes.
// Protocol errors are logged through logger; stdout carries only protocol
// messages.
func Run(cat *catalog.Catalog, db *sql.DB, cfg *config.Config, version string, logger *slog.Logger) error {
	s := NewServer(cat, db, cfg, version)
	logger.Info("mcp server starting",
		"catalog_id", cat.ID(),
		"entries", cat.Len(),
		"tools", len(s.ListTools()),
	)
	return server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)))
}
