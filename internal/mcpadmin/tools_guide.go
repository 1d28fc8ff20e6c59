// tools_guide.go implements the dupin_guide MCP tool, letting an LLM
// client pull the same embedded help pages as "dupin guide" (§6).
package mcpadmin

import (
	"context"

	"github.com/areggiori/dupin-go/guide"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) getGuide(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := guide.Get(getString(req, "page", ""))
	if err != nil {
		return errResult(err)
	}
	return textResult(content)
}
