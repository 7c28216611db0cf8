package relation

import (
	"log"

	"github.com/relacore/relacore/pkg/types"
)

// The mutation layer. Add, Update and Delete write the tuple collection and
// index in place behind one exclusive mutex: a single writer at a time,
// callers serialize reads against writers. Query operators never mutate.

// Add appends a tuple after TypeCheck and ReferenceCheck both pass, and
// inserts it into the primary index when one exists. A failed check leaves
// the tuple count unchanged; index work already performed in this call is
// not rolled back.
func (t *Table) Add(tup types.Tuple) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Record("add")

	if !t.TypeCheck(tup) {
		t.stats.RecordDegraded("add", "type check failed")
		return false
	}
	if !t.ReferenceCheck(tup) {
		t.stats.RecordDegraded("add", "reference check failed")
		return false
	}

	t.rows = append(t.rows, tup)
	if t.index != nil {
		k := types.MakeKey(tup, t.keyPos)
		if _, dup := t.index[k]; dup {
			log.Printf("relation: table %s: duplicate key %q on add, last write wins", t.name, k)
		}
		t.index[k] = tup
		if t.keyBloom != nil {
			t.keyBloom.Add(string(k))
		}
	}
	return true
}

// Update scans all tuples and replaces attr's value with newValue wherever
// it currently equals matchValue. It reports whether at least one tuple
// changed. The new value's referential integrity is not re-validated.
func (t *Table) Update(attr string, newValue, matchValue types.Value) bool {
	return t.UpdateFn(attr, func(types.Value) types.Value { return newValue }, matchValue)
}

// UpdateFn is Update with a computed replacement: fn maps each matching
// current value to its replacement.
func (t *Table) UpdateFn(attr string, fn func(types.Value) types.Value, matchValue types.Value) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Record("update")

	p, ok := t.colPos[attr]
	if !ok {
		log.Printf("relation: update on %s: no attribute %q", t.name, attr)
		t.stats.RecordDegraded("update", "unknown attribute")
		return false
	}

	changed := false
	for _, row := range t.rows {
		eq, err := row[p].Compare(types.Equals, matchValue)
		if err != nil || !eq {
			continue
		}
		row[p] = fn(row[p])
		changed = true
	}
	if changed && t.keyAffected(p) && t.index != nil {
		// Key values moved under the index; a rebuild is required before
		// the next key-based lookup.
		log.Printf("relation: table %s: update touched key attribute %q, dropping stale index", t.name, attr)
		t.index = nil
		t.keyBloom = nil
	}
	return changed
}

// Delete removes the tuples matching the predicate, along with their index
// entries when an index exists. Dependent rows in linked tables are not
// cascaded.
func (t *Table) Delete(pred func(types.Tuple) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Record("delete")

	kept := t.rows[:0:0]
	removed := 0
	for _, row := range t.rows {
		if pred(row) {
			removed++
			if t.index != nil {
				delete(t.index, types.MakeKey(row, t.keyPos))
			}
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return removed
}

func (t *Table) keyAffected(pos int) bool {
	for _, p := range t.keyPos {
		if p == pos {
			return true
		}
	}
	return false
}
