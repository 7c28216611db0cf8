package relation

import (
	"log"
	"strings"

	"github.com/relacore/relacore/internal/bloom"
	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

// LookupStatus distinguishes an empty-but-valid lookup from one that could
// not be answered because no index exists.
type LookupStatus int

const (
	// Found means the key resolved to a tuple.
	Found LookupStatus = iota
	// NotFound means the index exists but holds no entry for the key.
	NotFound
	// IndexAbsent means no index has been built; the lookup fails closed
	// and the caller must CreateIndex first.
	IndexAbsent
)

// CreateIndex builds the primary index, mapping each tuple's key to the
// tuple. On a key collision the later tuple overwrites the earlier one and a
// diagnostic is logged: duplicate keys collapse last-write-wins, they are
// not an error. rebuild=true keeps entries already present, allowing an
// incremental catch-up after streaming inserts.
func (t *Table) CreateIndex(rebuild bool) {
	t.stats.Record("createIndex")

	if t.index == nil || !rebuild {
		t.index = make(map[types.Key]types.Tuple, len(t.rows))
	}
	for i, row := range t.rows {
		k := types.MakeKey(row, t.keyPos)
		if _, dup := t.index[k]; dup && !rebuild {
			log.Printf("relation: table %s: duplicate key %q at row %d, last write wins", t.name, k, i)
		}
		t.index[k] = row
	}

	t.keyBloom = bloom.New(len(t.index), 0.01)
	for k := range t.index {
		t.keyBloom.Add(string(k))
	}
}

// DropIndex discards the primary index. Key-based lookups fail closed until
// the index is rebuilt.
func (t *Table) DropIndex() {
	t.stats.Record("dropIndex")
	t.index = nil
	t.keyBloom = nil
}

// HasIndex reports whether a primary index is present.
func (t *Table) HasIndex() bool { return t.index != nil }

// Pkey returns the key of the i-th tuple. It does not require the index.
func (t *Table) Pkey(i int) (types.Key, error) {
	if i < 0 || i >= len(t.rows) {
		return "", errors.NewIndexError(errors.CodeKeyNotFound, "row position out of range")
	}
	return types.MakeKey(t.rows[i], t.keyPos), nil
}

// Lookup probes the primary index for a key. The status separates "no such
// key" from "no index to ask".
func (t *Table) Lookup(k types.Key) (types.Tuple, LookupStatus) {
	if t.index == nil {
		return nil, IndexAbsent
	}
	if t.keyBloom != nil && !t.keyBloom.MayContain(string(k)) {
		return nil, NotFound
	}
	row, ok := t.index[k]
	if !ok {
		return nil, NotFound
	}
	return row, Found
}

// containsKey is the referential-integrity probe: bloom fast-negative first,
// then the index map.
func (t *Table) containsKey(k types.Key) bool {
	if t.index == nil {
		return false
	}
	if t.keyBloom != nil && !t.keyBloom.MayContain(string(k)) {
		return false
	}
	_, ok := t.index[k]
	return ok
}

// CreateSecondaryIndex builds a non-unique index over an attribute
// subsequence: every extended key maps to all tuples carrying it. The
// non-unique index join probes it.
func (t *Table) CreateSecondaryIndex(attrs types.Schema) error {
	t.stats.Record("createSecondaryIndex")

	pos, err := t.positions(attrs)
	if err != nil {
		return errors.NewQueryError(errors.CodeUnknownAttribute, err.Error())
	}

	idx := make(map[types.Key][]types.Tuple)
	for _, row := range t.rows {
		k := types.MakeKey(row, pos)
		idx[k] = append(idx[k], row)
	}
	if t.secondary == nil {
		t.secondary = make(map[string]map[types.Key][]types.Tuple)
	}
	t.secondary[attrSignature(attrs)] = idx
	return nil
}

// secondaryFor returns the non-unique index for an attribute list, or nil.
func (t *Table) secondaryFor(attrs types.Schema) map[types.Key][]types.Tuple {
	if t.secondary == nil {
		return nil
	}
	return t.secondary[attrSignature(attrs)]
}

func attrSignature(attrs types.Schema) string {
	return strings.Join(attrs, ",")
}
