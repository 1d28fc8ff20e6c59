// Package collation implements the domain collation over JSON values used
// to order and group view keys (§3 "domain collation"): null < false < true
// < number < string < array < object, applied elementwise for arrays and
// by sorted key for objects (a total order, so invariant 10's reflexivity/
// antisymmetry/transitivity hold even though it departs slightly from the
// original implementation's exact field-order comparison).
//
// The collation is registered with the embedded file as a named SQLite
// collating sequence so that "ORDER BY key COLLATE DUPIN_DOMAIN" and the
// view engine's grouped-reduce query can both rely on it (§6 "user-defined
// collations"). It must be installed on every connection before any
// statement referencing it, per §9's design note.
package collation

import (
	"encoding/json"
	"fmt"
	"sort"

	"modernc.org/sqlite"
)

// Name is the collating sequence name installed on every embedded file.
const Name = "DUPIN_DOMAIN"

// Register installs the collation with the modernc.org/sqlite driver. It
// must run (via init) before any *sql.DB is opened against the "sqlite"
// driver, since modernc.org/sqlite resolves collating sequences at
// connection time.
func Register() error {
	if err := sqlite.RegisterCollationUtf8(Name, Compare); err != nil {
		return fmt.Errorf("collation: register %s: %w", Name, err)
	}
	return nil
}

func init() {
	if err := Register(); err != nil {
		panic(err)
	}
}

// kind is the tagged-value precedence class (§9).
type kind int

const (
	kindNull kind = iota
	kindFalse
	kindTrue
	kindNumber
	kindString
	kindArray
	kindObject
)

// Compare implements the domain collation between two normalized JSON-
// encoded key strings. It is total: reflexive, antisymmetric, and
// transitive (§8 property 10), which is what lets it double as both a
// SQLite collation and the view engine's in-process grouping comparator.
func Compare(a, b string) int {
	var va, vb any
	// Malformed input (should not happen for engine-written keys) sorts
	// as null rather than panicking, so a corrupt row can still be listed
	// and removed.
	_ = json.Unmarshal([]byte(a), &va)
	_ = json.Unmarshal([]byte(b), &vb)
	return compareValues(va, vb)
}

func classify(v any) kind {
	switch x := v.(type) {
	case nil:
		return kindNull
	case bool:
		if x {
			return kindTrue
		}
		return kindFalse
	case float64, json.Number:
		return kindNumber
	case string:
		return kindString
	case []any:
		return kindArray
	case map[string]any:
		return kindObject
	default:
		return kindNull
	}
}

func compareValues(a, b any) int {
	ka, kb := classify(a), classify(b)
	if ka != kb {
		return int(ka) - int(kb)
	}
	switch ka {
	case kindNull, kindFalse, kindTrue:
		return 0
	case kindNumber:
		return compareNumbers(a, b)
	case kindString:
		return compareStrings(a.(string), b.(string))
	case kindArray:
		return compareArrays(a.([]any), b.([]any))
	case kindObject:
		return compareObjects(a.(map[string]any), b.(map[string]any))
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}

func compareNumbers(a, b any) int {
	fa, fb := toFloat(a), toFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareArrays(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// compareObjects compares by sorted key, then by value for matching keys,
// then by arity. Sorting keys (rather than encounter order) is what keeps
// the comparison a well-defined total order regardless of how the map/
// reduce script emitted its fields.
func compareObjects(a, b map[string]any) int {
	ka, kb := sortedKeys(a), sortedKeys(b)
	n := len(ka)
	if len(kb) < n {
		n = len(kb)
	}
	for i := 0; i < n; i++ {
		if c := compareStrings(ka[i], kb[i]); c != 0 {
			return c
		}
		if c := compareValues(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	return len(ka) - len(kb)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize re-encodes a JSON value into the canonical form used for
// storage and grouping: the value is decoded and re-marshalled, so object
// keys come out sorted and insignificant whitespace is dropped. The view
// engine stores keys in this form; Compare treats key order as
// insignificant either way.
func Normalize(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
