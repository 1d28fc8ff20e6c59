// tools_links.go implements MCP tools for typed link-record CRUD and
// filtered listing (§4.3).
package mcpadmin

import (
	"context"
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/linkstore"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) linkCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	body := getString(req, "body", "null")

	id, mvcc, err := h.eng.CreateLinkRecord(ctx, collection, linkstore.CreateParams{
		ContextID: getString(req, "context_id", ""),
		Label:     getString(req, "label", ""),
		Href:      getString(req, "href", ""),
		Rel:       getString(req, "rel", ""),
		Authority: getString(req, "authority", ""),
		ExpireTM:  getInt64(req, "expire_tm", 0),
		Body:      json.RawMessage(body),
	})

	elog.Event("mcpadmin:link", "create").Detail("collection", collection).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]string{"id": id, "mvcc": mvcc})
}

func (h *handlers) linkList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	authority := getString(req, "authority", "")

	filter := linkstore.ListFilter{
		ContextID:      getString(req, "context_id", ""),
		Authority:      authority,
		Kind:           linkstore.Kind(getString(req, "kind", "")),
		IncludeDeleted: getBool(req, "include_deleted", false),
		Limit:          getInt(req, "limit", 100),
	}
	if authority != "" {
		filter.AuthorityMatch = linkstore.AuthorityEquals
	}

	rows, err := h.eng.ListLinkRecords(ctx, collection, filter)
	elog.Event("mcpadmin:link", "list").Detail("collection", collection).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(rows)
}

func (h *handlers) linkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	id := getString(req, "id", "")
	mvcc := getString(req, "mvcc", "")

	newMvcc, err := h.eng.DeleteLinkRecord(ctx, collection, id, mvcc)
	elog.Event("mcpadmin:link", "delete").Detail("collection", collection).Detail("id", id).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]string{"id": id, "mvcc": newMvcc})
}
