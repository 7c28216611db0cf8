// Package relation implements an in-memory relational algebra engine over
// typed, schema-bound tables: rename, projection, selection, set operators,
// Cartesian product, nested-loop / index / sort-merge joins, outer joins,
// division, group-by with aggregates, ordering, and a checked mutation layer
// with primary-index maintenance and foreign-key referential integrity.
//
// Query operators are non-destructive: each reads one or two source tables
// and builds a fresh Table sharing no index state with its sources. Only the
// mutation layer writes in place, behind a single-writer mutex.
package relation

import (
	"fmt"
	"log"
	"sync"

	"github.com/relacore/relacore/internal/bloom"
	"github.com/relacore/relacore/internal/observability"
	"github.com/relacore/relacore/pkg/types"
)

// Table is the aggregate relational entity: a name, schema, domain, key, the
// live tuple collection, an optional primary index, secondary indexes built
// for non-unique index joins, and outgoing foreign-key linkages.
type Table struct {
	name   string
	schema types.Schema
	domain types.Domain
	key    types.Schema
	rows   []types.Tuple

	// colPos maps attribute name to position; built once at construction.
	colPos map[string]int
	keyPos []int

	index    map[types.Key]types.Tuple
	keyBloom *bloom.Filter

	// secondary maps an attribute-list signature to a non-unique index.
	secondary map[string]map[types.Key][]types.Tuple

	linkages []Linkage

	grouped    bool
	groups     map[string][]types.Tuple
	groupOrder []string
	groupAttr  string

	stats *observability.OpStats
	mu    sync.Mutex
}

// New constructs a table. Construction degrades rather than failing: a
// schema/domain length mismatch, duplicate attribute names, or a key
// attribute missing from the schema are logged and the offending part is
// dropped (extra domain tags truncated, bad key cleared) so that callers
// always get a usable table back.
func New(name string, schema types.Schema, domain types.Domain, key types.Schema, rows []types.Tuple) *Table {
	t := &Table{
		name:   name,
		schema: schema.Clone(),
		domain: append(types.Domain(nil), domain...),
		key:    key.Clone(),
		rows:   rows,
		stats:  observability.NewOpStats(),
	}

	if len(t.schema) != len(t.domain) {
		log.Printf("relation: table %s: schema has %d attributes but domain has %d tags",
			name, len(t.schema), len(t.domain))
		t.stats.RecordDegraded("new", "schema/domain length mismatch")
		if len(t.domain) > len(t.schema) {
			t.domain = t.domain[:len(t.schema)]
		} else {
			for len(t.domain) < len(t.schema) {
				t.domain = append(t.domain, types.Text)
			}
		}
	}
	if !t.schema.Unique() {
		log.Printf("relation: table %s: duplicate attribute names in schema %v", name, t.schema)
		t.stats.RecordDegraded("new", "duplicate attribute names")
	}

	t.colPos = make(map[string]int, len(t.schema))
	for i, a := range t.schema {
		if _, dup := t.colPos[a]; !dup {
			t.colPos[a] = i
		}
	}

	t.keyPos = make([]int, 0, len(t.key))
	for _, a := range t.key {
		p, ok := t.colPos[a]
		if !ok {
			log.Printf("relation: table %s: key attribute %q not in schema", name, a)
			t.stats.RecordDegraded("new", "key attribute not in schema")
			t.key = nil
			t.keyPos = t.keyPos[:0]
			break
		}
		t.keyPos = append(t.keyPos, p)
	}

	return t
}

// NewFromAttrs constructs a table from comma-separated attribute and key
// lists ("id, name, salary") and a parallel domain.
func NewFromAttrs(name, attrs string, domain types.Domain, key string, rows []types.Tuple) *Table {
	return New(name, types.SplitSchema(attrs), domain, types.SplitSchema(key), rows)
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the table's attribute names. Callers must not mutate it.
func (t *Table) Schema() types.Schema { return t.schema }

// Domain returns the table's column type tags. Callers must not mutate it.
func (t *Table) Domain() types.Domain { return t.domain }

// Key returns the key attribute subsequence.
func (t *Table) Key() types.Schema { return t.key }

// Size returns the number of tuples.
func (t *Table) Size() int { return len(t.rows) }

// Row returns the i-th tuple.
func (t *Table) Row(i int) types.Tuple { return t.rows[i] }

// Rows returns the live tuple slice. Callers must treat it as read-only;
// mutation goes through Add/Update/Delete.
func (t *Table) Rows() []types.Tuple { return t.rows }

// Pos returns the position of an attribute, or -1 when absent.
func (t *Table) Pos(attr string) int {
	if p, ok := t.colPos[attr]; ok {
		return p
	}
	return -1
}

// Stats exposes the table's operator statistics, letting callers inspect
// whether a transformation degraded.
func (t *Table) Stats() *observability.OpStats { return t.stats }

// Degraded returns the number of structural violations this table absorbed.
func (t *Table) Degraded() int64 { return t.stats.Degraded() }

// TypeCheck validates a candidate tuple's arity and per-column type against
// the table's domain. The wide text class is compatible with the narrow tag.
// It never panics; callers decide whether to reject the tuple.
func (t *Table) TypeCheck(tup types.Tuple) bool {
	if len(tup) != len(t.domain) {
		log.Printf("relation: table %s: tuple arity %d != domain arity %d",
			t.name, len(tup), len(t.domain))
		return false
	}
	for i, v := range tup {
		if v == nil {
			log.Printf("relation: table %s: nil value at position %d", t.name, i)
			return false
		}
		if v.Type().Normalize() != t.domain[i].Normalize() {
			log.Printf("relation: table %s: type %s at position %d, domain wants %s",
				t.name, v.Type(), i, t.domain[i])
			return false
		}
	}
	return true
}

// positions resolves attribute names to positions once, for reuse across
// every tuple of an operator. Unknown attributes are reported.
func (t *Table) positions(attrs types.Schema) ([]int, error) {
	pos := make([]int, len(attrs))
	for i, a := range attrs {
		p, ok := t.colPos[a]
		if !ok {
			return nil, fmt.Errorf("table %s has no attribute %q", t.name, a)
		}
		pos[i] = p
	}
	return pos, nil
}

// derive builds an operator result table. The key is kept only when every
// key attribute survives into the new schema; result tables never share
// index state with their sources.
func (t *Table) derive(name string, schema types.Schema, domain types.Domain, rows []types.Tuple) *Table {
	key := t.key
	for _, a := range key {
		if !schema.Contains(a) {
			key = nil
			break
		}
	}
	return New(name, schema, domain, key, rows)
}

// String renders the table for diagnostics: name, schema and row count.
func (t *Table) String() string {
	return fmt.Sprintf("%s%v (%d rows)", t.name, t.schema, len(t.rows))
}
