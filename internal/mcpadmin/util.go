// util.go provides helper functions for MCP tool parameter extraction,
// grounded on the teacher's internal/mcp/tools_util.go (permissive
// extraction with safe defaults — an LLM omitting an optional parameter
// shouldn't cause a cryptic error).
package mcpadmin

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

func getInt64(req mcp.CallToolRequest, name string, def int64) int64 {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int64(v)
	}
	return def
}

func getInt(req mcp.CallToolRequest, name string, def int) int {
	return int(getInt64(req, name, int64(def)))
}

// jsonResult wraps a value as an MCP text result with JSON encoding.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
