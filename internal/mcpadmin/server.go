// Package mcpadmin implements the Model Context Protocol server exposing
// the engine's administrative surface to LLMs, mirroring the teacher's
// internal/mcp package (server lifecycle, stdio transport, tools plus a
// handlers struct holding the opened store) but over dupin's engine
// instead of llmd's document service.
package mcpadmin

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/areggiori/dupin-go/engine"
	"github.com/areggiori/dupin-go/internal/econfig"
	"github.com/areggiori/dupin-go/internal/scripthost"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Serve starts the MCP server over stdio against the engine rooted at
// root (or cfgPath's config if non-empty). Logs go to stderr; stdout is
// reserved for MCP JSON-RPC messages, matching the teacher's mcp.Serve.
func Serve(root, cfgPath string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := econfig.Default()
	cfg.RootDir = root
	if cfgPath != "" {
		loaded, err := econfig.Load(cfgPath)
		if err != nil {
			return err
		}
		loaded.RootDir = root
		cfg = loaded
	}

	eng, err := engine.Open(cfg, scripthost.NewNative())
	if err != nil {
		slog.Error("failed to open engine", "error", err)
		return err
	}
	defer eng.Close()

	h := &handlers{eng: eng}

	s := server.NewMCPServer(
		"dupin",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("dupin MCP server ready", "version", Version, "transport", "stdio", "root", root)

	err = server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers provides MCP tool handlers with access to the engine.
type handlers struct {
	eng *engine.Engine
}

func errResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func textResult(s string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s), nil
}
