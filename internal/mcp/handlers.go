package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/ops"
	"github.com/hpungsan/quire/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	idx    *store.Index
	cfg    *config.Config
	client *http.Client
}

// NewHandlers creates a new Handlers instance. A nil client uses
// http.DefaultClient for clipping.
func NewHandlers(idx *store.Index, cfg *config.Config, client *http.Client) *Handlers {
	return &Handlers{idx: idx, cfg: cfg, client: client}
}

// CreateRequest represents the arguments for draft_create.
type CreateRequest struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// FetchRequest represents the arguments for draft_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeContent *bool  `json:"include_content,omitempty"`
}

// ListRequest represents the arguments for draft_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// SaveRequest represents the arguments for draft_save.
type SaveRequest struct {
	ID       string  `json:"id"`
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Markdown *string `json:"markdown,omitempty"`
}

// IDRequest carries only a draft id (draft_delete).
type IDRequest struct {
	ID string `json:"id"`
}

// AddSourceRequest represents the arguments for draft_add_source.
type AddSourceRequest struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// RemoveSourceRequest represents the arguments for draft_remove_source.
type RemoveSourceRequest struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
}

// InsertRequest represents the arguments for draft_insert.
type InsertRequest struct {
	ID       string `json:"id"`
	HTML     string `json:"html,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// ExportRequest represents the arguments for draft_export.
type ExportRequest struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for draft_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// ImportFeedRequest represents the arguments for draft_import_feed.
type ImportFeedRequest struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Limit int    `json:"limit,omitempty"`
}

// ClipRequest represents the arguments for draft_clip.
type ClipRequest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// handle decodes the request into R, runs fn and converts the outcome
// into a tool result. Failures are reported in-band with IsError set.
func handle[R, O any](ctx context.Context, req mcp.CallToolRequest, fn func(context.Context, R) (O, error)) (*mcp.CallToolResult, error) {
	input, err := decode[R](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := fn(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCreate handles draft_create.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in CreateRequest) (*ops.CreateOutput, error) {
		return ops.Create(ctx, h.idx, ops.CreateInput{Title: in.Title, Content: in.Content, Markdown: in.Markdown})
	})
}

// HandleFetch handles draft_fetch.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in FetchRequest) (*ops.FetchOutput, error) {
		return ops.Fetch(ctx, h.idx, ops.FetchInput{ID: in.ID, IncludeContent: in.IncludeContent})
	})
}

// HandleList handles draft_list.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ListRequest) (*ops.ListOutput, error) {
		return ops.List(ctx, h.idx, ops.ListInput{Limit: in.Limit, Offset: in.Offset})
	})
}

// HandleSave handles draft_save.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in SaveRequest) (*ops.SaveOutput, error) {
		return ops.Save(ctx, h.idx, ops.SaveInput{ID: in.ID, Title: in.Title, Content: in.Content, Markdown: in.Markdown})
	})
}

// HandleDelete handles draft_delete.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in IDRequest) (*ops.DeleteOutput, error) {
		return ops.Delete(ctx, h.idx, ops.DeleteInput{ID: in.ID})
	})
}

// HandleAddSource handles draft_add_source.
func (h *Handlers) HandleAddSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in AddSourceRequest) (*ops.SourceOutput, error) {
		return ops.AddSource(ctx, h.idx, ops.AddSourceInput{
			ID:      in.ID,
			Type:    in.Type,
			Title:   in.Title,
			URL:     in.URL,
			Content: in.Content,
		})
	})
}

// HandleRemoveSource handles draft_remove_source.
func (h *Handlers) HandleRemoveSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in RemoveSourceRequest) (*ops.SourceOutput, error) {
		return ops.RemoveSource(ctx, h.idx, ops.RemoveSourceInput{ID: in.ID, SourceID: in.SourceID})
	})
}

// HandleInsert handles draft_insert.
func (h *Handlers) HandleInsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in InsertRequest) (*ops.InsertOutput, error) {
		return ops.Insert(ctx, h.idx, ops.InsertInput{ID: in.ID, HTML: in.HTML, Markdown: in.Markdown})
	})
}

// HandleExport handles draft_export.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ExportRequest) (*ops.ExportOutput, error) {
		return ops.Export(ctx, h.idx, h.cfg, ops.ExportInput{ID: in.ID, Path: in.Path})
	})
}

// HandleImport handles draft_import.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ImportRequest) (*ops.ImportOutput, error) {
		return ops.Import(ctx, h.idx, h.cfg, ops.ImportInput{Path: in.Path})
	})
}

// HandleImportFeed handles draft_import_feed.
func (h *Handlers) HandleImportFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ImportFeedRequest) (*ops.ImportFeedOutput, error) {
		limit := in.Limit
		if limit <= 0 {
			limit = h.cfg.FeedLimit
		}
		return ops.ImportFeed(ctx, h.idx, ops.ImportFeedInput{ID: in.ID, URL: in.URL, Limit: limit})
	})
}

// HandleClip handles draft_clip.
func (h *Handlers) HandleClip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handle(ctx, req, func(ctx context.Context, in ClipRequest) (*ops.SourceOutput, error) {
		return ops.Clip(ctx, h.client, h.idx, ops.ClipInput{ID: in.ID, URL: in.URL})
	})
}

// errorResult creates an MCP error result from any error.
// Internal error details are withheld; they may carry file paths.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var qErr *errors.QuireError
	if stderrors.As(err, &qErr) {
		errorObj := map[string]any{
			"code":    qErr.Code,
			"message": qErr.Message,
			"status":  qErr.Status,
		}
		if qErr.Code != errors.ErrInternal && qErr.Details != nil {
			errorObj["details"] = qErr.Details
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
