// cmd_test.go drives the CLI in-process through RootCmd(), the way the
// teacher's cmd tests exec a built binary but without paying for a
// go build per test run: dupin's root.go already exposes RootCmd() and
// SetOut() for exactly this purpose.
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RootCmd().SilenceErrors = true
	RootCmd().SilenceUsage = true
}

func resetFlags(rootDir string) {
	root = rootDir
	output = ""
	config = ""
	force = false
}

// run executes args against the shared root command with a fresh
// per-call engine root, the same isolation a real invocation gets from
// a fresh process.
func run(t *testing.T, rootDir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootDir)

	var buf bytes.Buffer
	SetOut(&buf)
	if args == nil {
		// A nil slice makes cobra fall back to os.Args (the test flags).
		args = []string{}
	}
	RootCmd().SetArgs(args)
	err := RootCmd().Execute()
	if eng != nil {
		eng.Close()
		eng = nil
	}
	return buf.String(), err
}

func mustRun(t *testing.T, rootDir string, args ...string) string {
	t.Helper()
	out, err := run(t, rootDir, args...)
	require.NoErrorf(t, err, "dupin %v", args)
	return out
}

func TestCollectionLifecycle(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "create", "document", "orders")
	assert.Contains(t, out, "created document orders")

	out = mustRun(t, dir, "list", "document")
	assert.Contains(t, out, "orders")

	out = mustRun(t, dir, "delete", "document", "orders", "--force")
	assert.Contains(t, out, "deleted document orders")

	out = mustRun(t, dir, "list", "document")
	assert.NotContains(t, out, "orders")
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "create", "bogus", "x")
	require.Error(t, err)
}

func TestDocPutGetDelete(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "create", "document", "orders")

	out := mustRun(t, dir, "doc", "put", "orders", `{"a":1}`)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	id, mvcc := fields[0], fields[1]

	out = mustRun(t, dir, "doc", "get", "orders", id)
	assert.Contains(t, out, id)
	assert.Contains(t, out, `"a":1`)

	out = mustRun(t, dir, "doc", "delete", "orders", id, "--mvcc", mvcc)
	assert.Contains(t, out, id)
}

func TestDocGetMissingCollectionErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "doc", "get", "nope", "some-id")
	require.Error(t, err)
}

func TestDocPutJSONOutput(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "create", "document", "orders")

	out := mustRun(t, dir, "doc", "put", "orders", `{"a":1}`, "-o", "json")
	assert.Contains(t, out, `"id"`)
	assert.Contains(t, out, `"mvcc"`)
}

func TestLinkCreateGetDelete(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "create", "document", "orders")
	mustRun(t, dir, "create", "link", "orders-links", "--parent", "orders")

	out := mustRun(t, dir, "doc", "put", "orders", `{}`)
	docID := strings.Fields(out)[0]

	out = mustRun(t, dir, "link", "create", "orders-links", docID, "ref", "local:other")
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	linkID, mvcc := fields[0], fields[1]

	out = mustRun(t, dir, "link", "get", "orders-links", linkID)
	assert.Contains(t, out, docID)
	assert.Contains(t, out, "local:other")

	out = mustRun(t, dir, "link", "delete", "orders-links", linkID, mvcc)
	assert.Contains(t, out, linkID)
}

func TestRootHelpDoesNotError(t *testing.T) {
	_, err := run(t, t.TempDir())
	require.NoError(t, err)
}
