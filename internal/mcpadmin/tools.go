// tools.go registers every MCP tool the server exposes, grounded on the
// teacher's internal/mcp/server.go registerTools (one mcp.NewTool per
// operation, described for an LLM caller, bound to a handlers method).
package mcpadmin

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("dupin_list",
			mcp.WithDescription("List collections of a kind"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("document, link, attachment, or view")),
		),
		h.listCollections,
	)

	s.AddTool(
		mcp.NewTool("dupin_create",
			mcp.WithDescription("Create a new collection"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("document, link, attachment, or view")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
			mcp.WithString("parent", mcp.Description("Parent collection name (link, attachment, view)")),
			mcp.WithString("parent_kind", mcp.Description("Parent kind for a view (document, link, view)")),
			mcp.WithString("map_fn", mcp.Description("Map function source/name (view)")),
			mcp.WithString("reduce_fn", mcp.Description("Reduce function source/name (view)")),
			mcp.WithString("output_collection", mcp.Description("Forward rows to another collection instead of materialising (view)")),
		),
		h.createCollection,
	)

	s.AddTool(
		mcp.NewTool("dupin_delete",
			mcp.WithDescription("Mark a collection for deletion"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("document, link, attachment, or view")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
		),
		h.deleteCollection,
	)

	s.AddTool(
		mcp.NewTool("dupin_doc_put",
			mcp.WithDescription("Create or update a document"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Document collection name")),
			mcp.WithString("body", mcp.Required(), mcp.Description("JSON document body")),
			mcp.WithString("id", mcp.Description("Document id (create only; generated when empty)")),
			mcp.WithString("mvcc", mcp.Description("Current mvcc token (update only)")),
		),
		h.docPut,
	)

	s.AddTool(
		mcp.NewTool("dupin_doc_get",
			mcp.WithDescription("Read a document"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Document collection name")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithNumber("rev", mcp.Description("Specific revision (default: latest)")),
		),
		h.docGet,
	)

	s.AddTool(
		mcp.NewTool("dupin_doc_delete",
			mcp.WithDescription("Tombstone a document"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Document collection name")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Document id")),
			mcp.WithString("mvcc", mcp.Required(), mcp.Description("Current mvcc token")),
		),
		h.docDelete,
	)

	s.AddTool(
		mcp.NewTool("dupin_doc_changes",
			mcp.WithDescription("Read one page of a document collection's change feed"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Document collection name")),
			mcp.WithNumber("since", mcp.Description("Return changes after this sequence number")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		h.docChanges,
	)

	s.AddTool(
		mcp.NewTool("dupin_link_create",
			mcp.WithDescription("Create a link record"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Link collection name")),
			mcp.WithString("context_id", mcp.Required(), mcp.Description("Context document id")),
			mcp.WithString("label", mcp.Required(), mcp.Description("Link label")),
			mcp.WithString("href", mcp.Required(), mcp.Description("Target href (absolute URI = web-link, otherwise relationship)")),
			mcp.WithString("rel", mcp.Description("Relation label")),
			mcp.WithString("authority", mcp.Description("Authority string")),
			mcp.WithNumber("expire_tm", mcp.Description("Expiry, unix microseconds")),
			mcp.WithString("body", mcp.Description("JSON body (default null)")),
		),
		h.linkCreate,
	)

	s.AddTool(
		mcp.NewTool("dupin_link_list",
			mcp.WithDescription("List head links matching filters"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Link collection name")),
			mcp.WithString("context_id", mcp.Description("Restrict to this context_id")),
			mcp.WithString("authority", mcp.Description("Restrict to this authority")),
			mcp.WithString("kind", mcp.Description("web-link or relationship")),
			mcp.WithBoolean("include_deleted", mcp.Description("Include tombstoned links")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		h.linkList,
	)

	s.AddTool(
		mcp.NewTool("dupin_link_delete",
			mcp.WithDescription("Tombstone a link record"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Link collection name")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Link id")),
			mcp.WithString("mvcc", mcp.Required(), mcp.Description("Current mvcc token")),
		),
		h.linkDelete,
	)

	s.AddTool(
		mcp.NewTool("dupin_att_put",
			mcp.WithDescription("Create or overwrite an attachment"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Attachment collection name")),
			mcp.WithString("doc_id", mcp.Required(), mcp.Description("Owning document id")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Attachment title")),
			mcp.WithString("content_type", mcp.Description("MIME type")),
			mcp.WithString("content_base64", mcp.Required(), mcp.Description("Base64-encoded content")),
		),
		h.attPut,
	)

	s.AddTool(
		mcp.NewTool("dupin_att_list",
			mcp.WithDescription("List attachment metadata for a document"),
			mcp.WithString("collection", mcp.Required(), mcp.Description("Attachment collection name")),
			mcp.WithString("doc_id", mcp.Required(), mcp.Description("Owning document id")),
		),
		h.attList,
	)

	s.AddTool(
		mcp.NewTool("dupin_view_list",
			mcp.WithDescription("List rows from a materialized view ordered by key"),
			mcp.WithString("name", mcp.Required(), mcp.Description("View name")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		h.viewList,
	)

	s.AddTool(
		mcp.NewTool("dupin_view_state",
			mcp.WithDescription("Read a view's lifecycle state and last warning"),
			mcp.WithString("name", mcp.Required(), mcp.Description("View name")),
		),
		h.viewState,
	)

	s.AddTool(
		mcp.NewTool("dupin_compact",
			mcp.WithDescription("Prune superseded revisions and reclaim file space"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("document or link")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
		),
		h.compact,
	)

	s.AddTool(
		mcp.NewTool("dupin_check",
			mcp.WithDescription("Tombstone links with a dangling or expired context"),
			mcp.WithString("link_collection", mcp.Required(), mcp.Description("Link collection name")),
			mcp.WithString("parent_collection", mcp.Required(), mcp.Description("Parent document collection name")),
		),
		h.check,
	)

	s.AddTool(
		mcp.NewTool("dupin_sync",
			mcp.WithDescription("Run a view's map/reduce pass to completion synchronously"),
			mcp.WithString("name", mcp.Required(), mcp.Description("View name")),
		),
		h.sync,
	)

	s.AddTool(
		mcp.NewTool("dupin_rebuild_indexes",
			mcp.WithDescription("Rebuild a view's rows from scratch"),
			mcp.WithString("name", mcp.Required(), mcp.Description("View name")),
		),
		h.rebuildIndexes,
	)

	s.AddTool(
		mcp.NewTool("dupin_guide",
			mcp.WithDescription("Get help/guide content for dupin commands"),
			mcp.WithString("page", mcp.Description("Guide page name, or empty for the index")),
		),
		h.getGuide,
	)
}
