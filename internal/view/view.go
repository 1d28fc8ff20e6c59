package view

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/areggiori/dupin-go/internal/collation"
	"github.com/areggiori/dupin-go/internal/docstore"
	"github.com/areggiori/dupin-go/internal/relstore"
	"github.com/areggiori/dupin-go/internal/scripthost"
)

// View implements one materialized map/reduce view over a ParentSource,
// optionally forwarding reduced output into a document collection.
type View struct {
	file   *relstore.File
	name   string
	parent ParentSource
	host   scripthost.Host
	mapFn  scripthost.CompiledFn
	redFn  scripthost.CompiledFn
	output *docstore.DocStore // nil when the view has no output collection

	run runState
}

// Config wires a View to its parent, script host and (optionally) its
// output collection.
type Config struct {
	Parent       ParentSource
	Host         scripthost.Host
	MapSource    string
	MapLang      string
	ReduceSource string // empty: no reduce
	ReduceLang   string
	Output       *docstore.DocStore // nil: no output collection
}

// Open opens or creates the view's backing file, migrates it, persists
// its configuration on first open, and compiles its map/reduce functions.
func Open(path, name string, cfg Config) (*View, error) {
	f, err := relstore.Open(path, relstore.DefaultOptions())
	if err != nil {
		return nil, err
	}
	if err := relstore.Migrate(context.Background(), f.DB(), schemaSteps); err != nil {
		f.Close()
		return nil, err
	}

	v := &View{file: f, name: name, parent: cfg.Parent, host: cfg.Host, output: cfg.Output}

	if err := v.ensureMeta(context.Background(), cfg); err != nil {
		f.Close()
		return nil, err
	}

	mapFn, err := cfg.Host.Compile(cfg.MapSource, cfg.MapLang)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("view %s: compile map: %w", name, err)
	}
	v.mapFn = mapFn

	if cfg.ReduceSource != "" {
		redFn, err := cfg.Host.Compile(cfg.ReduceSource, cfg.ReduceLang)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("view %s: compile reduce: %w", name, err)
		}
		v.redFn = redFn
	}

	return v, nil
}

func (v *View) ensureMeta(ctx context.Context, cfg Config) error {
	var n int
	if err := v.file.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM view_meta WHERE id = 1`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := v.file.DB().ExecContext(ctx, `INSERT INTO view_meta
		(id, name, parent_kind, parent_name, map_source, map_lang, reduce_source, reduce_lang, output_name, state)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, 'idle')`,
		v.name, cfg.Parent.Kind(), parentName(cfg.Parent), cfg.MapSource, cfg.MapLang, cfg.ReduceSource, cfg.ReduceLang, outputName(cfg.Output))
	return err
}

func parentName(p ParentSource) string {
	switch src := p.(type) {
	case DocSource:
		return src.Store.Name()
	case LinkSource:
		return src.Store.Name()
	case ViewSource:
		return src.View.Name()
	default:
		return ""
	}
}

func outputName(d *docstore.DocStore) string {
	if d == nil {
		return ""
	}
	return d.Name()
}

func (v *View) Name() string         { return v.name }
func (v *View) File() *relstore.File { return v.file }
func (v *View) Close() error         { return v.file.Close() }

func (v *View) loadMeta(ctx context.Context) (Meta, error) {
	var m Meta
	var state string
	var rereduce int
	err := v.file.DB().QueryRowContext(ctx, `SELECT name, parent_kind, parent_name, map_source, map_lang,
		reduce_source, reduce_lang, output_name, state, fail_msg, sync_map_id, sync_reduce_id, sync_rereduce, last_to_delete_id
		FROM view_meta WHERE id = 1`).Scan(
		&m.Name, &m.ParentKind, &m.ParentName, &m.MapSource, &m.MapLang,
		&m.ReduceSource, &m.ReduceLang, &m.OutputName, &state, &m.FailMsg,
		&m.SyncMapID, &m.SyncReduceID, &rereduce, &m.LastToDeleteID)
	if err != nil {
		return Meta{}, err
	}
	m.State = State(state)
	m.SyncRereduce = rereduce != 0
	return m, nil
}

func (v *View) setState(ctx context.Context, tx *sql.Tx, state State, failMsg string) error {
	exec := v.file.DB().ExecContext
	if tx != nil {
		exec = tx.ExecContext
	}
	_, err := exec(ctx, `UPDATE view_meta SET state = ?, fail_msg = ? WHERE id = 1`, string(state), failMsg)
	return err
}

func (v *View) setWarning(ctx context.Context, message string) error {
	_, err := v.file.DB().ExecContext(ctx, `INSERT INTO view_warning (id, message) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET message = excluded.message`, message)
	return err
}

// Warning returns the view's last recorded warning (§7 "the view's
// warning slot is set"), empty if none.
func (v *View) Warning(ctx context.Context) (string, error) {
	var msg string
	err := v.file.DB().QueryRowContext(ctx, `SELECT message FROM view_warning WHERE id = 1`).Scan(&msg)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return msg, err
}

// projectDocument builds the synthetic-field-augmented body a map
// function receives (§4.4.1 "projected document"). A body that is not a
// JSON object, such as a parent view's scalar value, cannot carry the
// synthetic fields and is passed through unchanged.
func projectDocument(row ParentRow) (json.RawMessage, error) {
	var base map[string]any
	if len(row.Body) > 0 {
		if err := json.Unmarshal(row.Body, &base); err != nil {
			return row.Body, nil
		}
	}
	if base == nil {
		base = map[string]any{}
	}
	base["_id"] = row.ID
	base["_rev"] = row.Mvcc
	base["_created"] = row.Created
	if row.IsLink {
		base["_context_id"] = row.ContextID
		base["_href"] = row.Href
		base["_label"] = row.Label
		base["_rel"] = row.Rel
		base["_is_weblink"] = row.IsWebLink
	}
	return json.Marshal(base)
}

func (v *View) rowsAfter(ctx context.Context, since int64, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := v.file.DB().QueryContext(ctx, `SELECT row_id, pid, key, value FROM rows WHERE row_id > ? ORDER BY row_id ASC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var pidJSON string
		if err := rows.Scan(&r.RowID, &pidJSON, &r.Key, &r.Value); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pidJSON), &r.Pid); err != nil {
			return nil, fmt.Errorf("view %s: corrupt pid: %w", v.name, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// normalizeOrRaw renders raw through the domain collation's canonical
// form (sorted object keys, stable number formatting) so that equal
// values always compare and group identically regardless of how the map
// function serialized them; malformed JSON is stored as-is and will
// simply sort by byte value.
func normalizeOrRaw(raw json.RawMessage) (string, error) {
	norm, err := collation.Normalize(raw)
	if err != nil {
		return string(raw), nil
	}
	return norm, nil
}

func (v *View) quitRequested() bool {
	v.run.mu.Lock()
	defer v.run.mu.Unlock()
	return v.run.quit
}

// RequestQuit flips the per-handle "to-quit" flag background workers
// poll at batch boundaries (§5 "shutdown flips a per-handle 'to-quit'
// flag that all waiters poll").
func (v *View) RequestQuit() {
	v.run.mu.Lock()
	v.run.quit = true
	v.run.mu.Unlock()
}

func (v *View) lastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := v.file.DB().QueryRowContext(ctx, `SELECT MAX(row_id) FROM rows`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq.Int64, nil
}
