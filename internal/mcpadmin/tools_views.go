// tools_views.go implements MCP tools for the view read contract and
// lifecycle state (§4.4.4).
package mcpadmin

import (
	"context"

	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) viewList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := getString(req, "name", "")
	rows, err := h.eng.ViewList(ctx, name, view.ListOptions{Limit: getInt(req, "limit", 100)})
	elog.Event("mcpadmin:view", "list").Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(rows)
}

func (h *handlers) viewState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := getString(req, "name", "")
	state, failMsg, err := h.eng.ViewState(ctx, name)
	elog.Event("mcpadmin:view", "state").Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	warning, _ := h.eng.ViewWarning(ctx, name)
	return jsonResult(map[string]string{"state": string(state), "fail_msg": failMsg, "warning": warning})
}
