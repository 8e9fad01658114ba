package mcp

import "github.com/mark3labs/mcp-go/mcp"

var createToolDef = mcp.NewTool("draft_create",
	mcp.WithDescription("Create a newsletter draft. All fields are optional; returns the new draft id."),
	mcp.WithString("title", mcp.Description("Draft title")),
	mcp.WithString("content", mcp.Description("Initial body as HTML (sanitized)")),
	mcp.WithString("markdown", mcp.Description("Initial body as Markdown; mutually exclusive with content")),
)

var fetchToolDef = mcp.NewTool("draft_fetch",
	mcp.WithDescription("Fetch a draft with its content, sources and derived metadata."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithBoolean("include_content", mcp.Description("Include the HTML body (default true)")),
)

var listToolDef = mcp.NewTool("draft_list",
	mcp.WithDescription("List draft summaries, most recently updated first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip (default 0)")),
)

var saveToolDef = mcp.NewTool("draft_save",
	mcp.WithDescription("Update a draft's title and/or body. Omitted fields are unchanged. Word count, source count and excerpt are recomputed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("New body as HTML (sanitized)")),
	mcp.WithString("markdown", mcp.Description("New body as Markdown; mutually exclusive with content")),
)

var deleteToolDef = mcp.NewTool("draft_delete",
	mcp.WithDescription("Permanently delete a draft. Unknown ids are not an error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
)

var addSourceToolDef = mcp.NewTool("draft_add_source",
	mcp.WithDescription("Attach a source to a draft. Links take a url; text and pdf sources take content."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("type", mcp.Required(), mcp.Enum("link", "text", "pdf"), mcp.Description("Source type")),
	mcp.WithString("title", mcp.Description("Display title (derived when omitted)")),
	mcp.WithString("url", mcp.Description("Link URL")),
	mcp.WithString("content", mcp.Description("Text or extracted PDF content")),
)

var removeSourceToolDef = mcp.NewTool("draft_remove_source",
	mcp.WithDescription("Detach a source from a draft by source id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("source_id", mcp.Required(), mcp.Description("Source id")),
)

var insertToolDef = mcp.NewTool("draft_insert",
	mcp.WithDescription("Append a quote, summary or theme to a draft's body. HTML is sanitized."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("html", mcp.Description("Fragment as HTML")),
	mcp.WithString("markdown", mcp.Description("Fragment as Markdown; mutually exclusive with html")),
)

var exportToolDef = mcp.NewTool("draft_export",
	mcp.WithDescription("Export a draft as Markdown with a YAML front-matter header."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("path", mcp.Description("Output .md path (default ~/.quire/exports/<title>-<timestamp>.md)")),
)

var importToolDef = mcp.NewTool("draft_import",
	mcp.WithDescription("Create a draft from a Markdown file, such as an earlier export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Input .md path")),
)

var importFeedToolDef = mcp.NewTool("draft_import_feed",
	mcp.WithDescription("Attach the newest items of an RSS, Atom or JSON feed as link sources."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("url", mcp.Required(), mcp.Description("Feed URL")),
	mcp.WithNumber("limit", mcp.Description("Items to read (default 10, max 50)")),
)

var clipToolDef = mcp.NewTool("draft_clip",
	mcp.WithDescription("Fetch an article, extract its readable text and attach it as a text source."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	mcp.WithString("url", mcp.Required(), mcp.Description("Article URL")),
)
