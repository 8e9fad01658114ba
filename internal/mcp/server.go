package mcp

import (
	"context"
	"net/http"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"draft_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"draft_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"draft_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"draft_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"draft_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"draft_add_source": {
		def:     addSourceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddSource },
	},
	"draft_remove_source": {
		def:     removeSourceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemoveSource },
	},
	"draft_insert": {
		def:     insertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInsert },
	},
	"draft_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"draft_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"draft_import_feed": {
		def:     importFeedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportFeed },
	},
	"draft_clip": {
		def:     clipToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClip },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns the names in the list that are not tools.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the draft tools registered, minus
// those listed in cfg.DisabledTools.
func NewServer(idx *store.Index, cfg *config.Config, client *http.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"quire",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(idx, cfg, client)
	for name, entry := range toolRegistry {
		if slices.Contains(cfg.DisabledTools, name) {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the draft tools over stdio until stdin closes.
func Run(idx *store.Index, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(idx, cfg, nil, version))
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
