// tools_collections.go implements MCP tools for collection lifecycle:
// list, create, delete (§4.1).
package mcpadmin

import (
	"context"
	"fmt"

	"github.com/areggiori/dupin-go/engine"
	"github.com/areggiori/dupin-go/internal/elog"
	"github.com/areggiori/dupin-go/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
)

func parseKind(s string) (registry.Kind, error) {
	switch registry.Kind(s) {
	case registry.KindDoc, registry.KindLink, registry.KindAtt, registry.KindView:
		return registry.Kind(s), nil
	default:
		return "", fmt.Errorf("invalid kind %q (want document, link, attachment, or view)", s)
	}
}

func (h *handlers) listCollections(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := parseKind(getString(req, "kind", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(h.eng.List(kind))
}

func (h *handlers) createCollection(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := parseKind(getString(req, "kind", ""))
	if err != nil {
		return errResult(err)
	}
	name := getString(req, "name", "")
	parent := getString(req, "parent", "")

	switch kind {
	case registry.KindDoc:
		err = h.eng.CreateDocument(name)
	case registry.KindLink:
		err = h.eng.CreateLink(name, parent)
	case registry.KindAtt:
		err = h.eng.CreateAttachmentStore(name, parent)
	case registry.KindView:
		pk, perr := parseKind(getString(req, "parent_kind", string(registry.KindDoc)))
		if perr != nil {
			return errResult(perr)
		}
		err = h.eng.CreateView(name, engine.ViewParams{
			ParentKind:   pk,
			ParentName:   parent,
			MapSource:    getString(req, "map_fn", ""),
			MapLang:      "native",
			ReduceSource: getString(req, "reduce_fn", ""),
			ReduceLang:   "native",
			OutputName:   getString(req, "output_collection", ""),
		})
	}

	elog.Event("mcpadmin:create", string(kind)).Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult(fmt.Sprintf("created %s %s", kind, name))
}

func (h *handlers) deleteCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := parseKind(getString(req, "kind", ""))
	if err != nil {
		return errResult(err)
	}
	name := getString(req, "name", "")
	err = h.eng.Delete(ctx, kind, name)

	elog.Event("mcpadmin:delete", string(kind)).Detail("name", name).Write(err)
	if err != nil {
		return errResult(err)
	}
	return textResult(fmt.Sprintf("deleted %s %s", kind, name))
}
