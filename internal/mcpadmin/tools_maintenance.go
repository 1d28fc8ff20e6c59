// tools_maintenance.go implements MCP tools for compaction, link
// checking, and view sync (§4.4.4, §4.5).
package mcpadmin

import (
	"context"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) compact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := parseKind(getString(req, "kind", ""))
	if err != nil {
		return errResult(err)
	}
	name := getString(req, "name", "")
	err = h.eng.Compact(ctx, kind, name)
	elog.Event("mcpadmin:compact", string(kind)).Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult("compacted " + name)
}

func (h *handlers) check(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	linkName := getString(req, "link_collection", "")
	parentName := getString(req, "parent_collection", "")
	err := h.eng.Check(ctx, linkName, parentName)
	elog.Event("mcpadmin:check", "run").Detail("link", linkName).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult("checked " + linkName)
}

func (h *handlers) sync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := getString(req, "name", "")
	err := h.eng.Sync(ctx, name)
	elog.Event("mcpadmin:sync", "run").Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult("synced " + name)
}

func (h *handlers) rebuildIndexes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := getString(req, "name", "")
	err := h.eng.RebuildIndexes(ctx, name)
	elog.Event("mcpadmin:rebuild-indexes", "run").Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult("rebuilt " + name)
}
