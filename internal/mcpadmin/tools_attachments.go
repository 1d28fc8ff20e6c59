// tools_attachments.go implements MCP tools for attachment blob CRUD
// (§3, §4.2). Content crosses the wire base64-encoded since MCP tool
// arguments are JSON.
package mcpadmin

import (
	"context"
	"encoding/base64"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) attPut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	docID := getString(req, "doc_id", "")
	title := getString(req, "title", "")
	contentType := getString(req, "content_type", "application/octet-stream")

	content, err := base64.StdEncoding.DecodeString(getString(req, "content_base64", ""))
	if err != nil {
		return errResult(err)
	}

	err = h.eng.PutAttachment(ctx, collection, docID, title, contentType, content)
	elog.Event("mcpadmin:att", "put").Detail("collection", collection).Detail("doc_id", docID).Detail("title", title).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult("put " + docID + "/" + title)
}

func (h *handlers) attList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	docID := getString(req, "doc_id", "")

	metas, err := h.eng.ListAttachments(ctx, collection, docID)
	elog.Event("mcpadmin:att", "list").Detail("collection", collection).Detail("doc_id", docID).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(metas)
}
