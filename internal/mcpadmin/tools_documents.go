// tools_documents.go implements MCP tools for document CRUD, bulk
// insert, and the change feed (§4.2, §4.6), mirroring the teacher's
// internal/mcp/tools_documents.go shape (one handler per CLI-equivalent
// verb, errors returned as MCP tool error results rather than Go
// errors so an LLM caller receives actionable feedback).
package mcpadmin

import (
	"context"
	"encoding/json"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) docPut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	body := getString(req, "body", "null")
	id := getString(req, "id", "")
	mvcc := getString(req, "mvcc", "")

	newID, newMvcc, err := h.eng.PutDocument(ctx, collection, id, json.RawMessage(body), mvcc)
	elog.Event("mcpadmin:doc", "put").Detail("collection", collection).Detail("id", id).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]string{"id": newID, "mvcc": newMvcc})
}

func (h *handlers) docGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	id := getString(req, "id", "")
	rev := getInt(req, "rev", 0)

	r, err := h.eng.GetDocument(ctx, collection, id, rev)
	elog.Event("mcpadmin:doc", "get").Detail("collection", collection).Detail("id", id).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"id": r.ID, "mvcc": r.Mvcc(), "body": r.Body, "deleted": r.Deleted})
}

func (h *handlers) docDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	id := getString(req, "id", "")
	mvcc := getString(req, "mvcc", "")

	newMvcc, err := h.eng.DeleteDocument(ctx, collection, id, mvcc)
	elog.Event("mcpadmin:doc", "delete").Detail("collection", collection).Detail("id", id).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]string{"id": id, "mvcc": newMvcc})
}

func (h *handlers) docChanges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := getString(req, "collection", "")
	since := getInt64(req, "since", 0)
	limit := getInt(req, "limit", 100)

	page, err := h.eng.ChangesDump(ctx, collection, since, limit)
	elog.Event("mcpadmin:doc", "changes").Detail("collection", collection).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(page)
}
