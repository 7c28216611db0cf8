package relation

import (
	"log"

	"github.com/relacore/relacore/internal/condition"
	"github.com/relacore/relacore/pkg/types"
)

// The join engine. All equi-joins take two attribute subsequences x (left)
// and y (right) of equal arity and produce concatenated tuples where
// pull(l, x) == pull(r, y); the result schema is the disambiguated
// concatenation of both schemas.
//
// Strategy trade-offs:
//
//	ThetaJoin            O(n*m)     arbitrary two-tuple predicate
//	Join (nested loop)   O(n*m)     always correct, the default
//	IndexJoin            O(n)       right table indexed on its key = y
//	IndexJoinNonUnique   O(m)       left secondary index on x, right drives
//	MergeJoin            O(n+m)     both inputs pre-sorted on x / y
//
// MergeJoin silently returns wrong answers when its sort precondition is
// unmet; keeping the inputs sorted is the caller's responsibility.

// ThetaJoin joins on an arbitrary two-tuple predicate.
func (t *Table) ThetaJoin(other *Table, pred func(l, r types.Tuple) bool) *Table {
	t.stats.Record("thetaJoin")

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	var rows []types.Tuple
	for _, l := range t.rows {
		for _, r := range other.rows {
			if pred(l, r) {
				rows = append(rows, l.Concat(r))
			}
		}
	}
	return New(t.name+"_j_"+other.name, schema, domain, nil, rows)
}

// JoinWhere theta-joins on a condition string evaluated over the
// concatenated tuple; attribute names resolve into the left schema first,
// then the right (colliding right names carry the "2" suffix). A parse
// failure degrades to an empty join.
func (t *Table) JoinWhere(other *Table, cond string) *Table {
	t.stats.Record("joinWhere")

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	c, err := condition.Parse(cond, schema, domain)
	if err != nil {
		log.Printf("relation: joinWhere %s/%s: %v", t.name, other.name, err)
		t.stats.RecordDegraded("joinWhere", err.Error())
		return New(t.name+"_j_"+other.name, schema, domain, nil, nil)
	}

	joined := New(t.name+"_j_"+other.name, schema, domain, nil, nil)
	pred := joined.predicateOf(c)
	return t.ThetaJoin(other, func(l, r types.Tuple) bool {
		return pred(l.Concat(r))
	})
}

// Join is the default nested-loop equi-join on x (left) and y (right).
func (t *Table) Join(other *Table, x, y types.Schema) *Table {
	t.stats.Record("join")

	xpos, ypos, ok := t.joinPositions(other, x, y, "join")
	if !ok {
		return t.emptyJoin(other)
	}
	return t.ThetaJoin(other, func(l, r types.Tuple) bool {
		return l.Pull(xpos).Equal(r.Pull(ypos))
	})
}

// IndexJoin is the unique-index equi-join: the left table drives and each
// left tuple probes the right table's primary index once, so y must be the
// right table's key. A missing index degrades to the nested-loop join with
// a diagnostic.
func (t *Table) IndexJoin(other *Table, x, y types.Schema) *Table {
	t.stats.Record("indexJoin")

	if !other.HasIndex() || !sameAttrs(y, other.key) {
		log.Printf("relation: indexJoin %s/%s: right table not indexed on %v, using nested loop",
			t.name, other.name, y)
		t.stats.RecordDegraded("indexJoin", "right index unavailable")
		return t.Join(other, x, y)
	}

	xpos, _, ok := t.joinPositions(other, x, y, "indexJoin")
	if !ok {
		return t.emptyJoin(other)
	}

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	var rows []types.Tuple
	for _, l := range t.rows {
		if r, status := other.Lookup(types.MakeKey(l, xpos)); status == Found {
			rows = append(rows, l.Concat(r))
		}
	}
	return New(t.name+"_j_"+other.name, schema, domain, nil, rows)
}

// IndexJoinNonUnique is the non-unique-index equi-join: the right table
// drives and each right tuple probes this table's secondary index on x,
// preserving multiplicity. The secondary index is built on demand when
// absent.
func (t *Table) IndexJoinNonUnique(other *Table, x, y types.Schema) *Table {
	t.stats.Record("indexJoinNonUnique")

	_, ypos, ok := t.joinPositions(other, x, y, "indexJoinNonUnique")
	if !ok {
		return t.emptyJoin(other)
	}

	idx := t.secondaryFor(x)
	if idx == nil {
		log.Printf("relation: indexJoinNonUnique %s/%s: building secondary index on %v",
			t.name, other.name, x)
		if err := t.CreateSecondaryIndex(x); err != nil {
			t.stats.RecordDegraded("indexJoinNonUnique", err.Error())
			return t.emptyJoin(other)
		}
		idx = t.secondaryFor(x)
	}

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	var rows []types.Tuple
	for _, r := range other.rows {
		for _, l := range idx[types.MakeKey(r, ypos)] {
			rows = append(rows, l.Concat(r))
		}
	}
	return New(t.name+"_j_"+other.name, schema, domain, nil, rows)
}

// MergeJoin is the sort-merge equi-join: one synchronized linear scan over
// both inputs, with a cross product emitted per run of equal keys. Both
// tables must already be sorted ascending on x and y respectively; the scan
// does not verify this.
func (t *Table) MergeJoin(other *Table, x, y types.Schema) *Table {
	t.stats.Record("mergeJoin")

	xpos, ypos, ok := t.joinPositions(other, x, y, "mergeJoin")
	if !ok {
		return t.emptyJoin(other)
	}

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	var rows []types.Tuple

	i, j := 0, 0
	for i < len(t.rows) && j < len(other.rows) {
		lk := t.rows[i].Pull(xpos)
		rk := other.rows[j].Pull(ypos)

		switch cmpTuples(lk, rk) {
		case -1:
			i++
		case 1:
			j++
		default:
			// Runs of equal keys on both sides cross-multiply.
			i2 := i
			for i2 < len(t.rows) && cmpTuples(t.rows[i2].Pull(xpos), rk) == 0 {
				i2++
			}
			j2 := j
			for j2 < len(other.rows) && cmpTuples(lk, other.rows[j2].Pull(ypos)) == 0 {
				j2++
			}
			for a := i; a < i2; a++ {
				for b := j; b < j2; b++ {
					rows = append(rows, t.rows[a].Concat(other.rows[b]))
				}
			}
			i, j = i2, j2
		}
	}
	return New(t.name+"_j_"+other.name, schema, domain, nil, rows)
}

// NaturalJoin equi-joins on all commonly named attributes, in left-schema
// order, keeping the common columns once.
func (t *Table) NaturalJoin(other *Table) *Table {
	t.stats.Record("naturalJoin")
	common := t.schema.Intersect(other.schema)
	return t.dropRightCommon(t.Join(other, common, common), other, common)
}

// NaturalIndexJoin is the unique-index variant of the natural join.
func (t *Table) NaturalIndexJoin(other *Table) *Table {
	t.stats.Record("naturalIndexJoin")
	common := t.schema.Intersect(other.schema)
	return t.dropRightCommon(t.IndexJoin(other, common, common), other, common)
}

// NaturalMergeJoin is the sort-merge variant of the natural join; both
// inputs must be sorted ascending on the common attributes.
func (t *Table) NaturalMergeJoin(other *Table) *Table {
	t.stats.Record("naturalMergeJoin")
	common := t.schema.Intersect(other.schema)
	return t.dropRightCommon(t.MergeJoin(other, common, common), other, common)
}

// LeftJoin extends the equi-join so that every unmatched left tuple is
// retained once, concatenated with a synthetic tuple of the right domain's
// typed missing sentinels.
func (t *Table) LeftJoin(other *Table, x, y types.Schema) *Table {
	t.stats.Record("leftJoin")

	xpos, ypos, ok := t.joinPositions(other, x, y, "leftJoin")
	if !ok {
		return t.emptyJoin(other)
	}

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	pad := missingTuple(other.domain)

	var rows []types.Tuple
	for _, l := range t.rows {
		matched := false
		for _, r := range other.rows {
			if l.Pull(xpos).Equal(r.Pull(ypos)) {
				rows = append(rows, l.Concat(r))
				matched = true
			}
		}
		if !matched {
			rows = append(rows, l.Concat(pad))
		}
	}
	return New(t.name+"_lj_"+other.name, schema, domain, nil, rows)
}

// RightJoin mirrors LeftJoin: every unmatched right tuple is retained once,
// padded on the left with this table's missing sentinels.
func (t *Table) RightJoin(other *Table, x, y types.Schema) *Table {
	t.stats.Record("rightJoin")

	xpos, ypos, ok := t.joinPositions(other, x, y, "rightJoin")
	if !ok {
		return t.emptyJoin(other)
	}

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	pad := missingTuple(t.domain)

	var rows []types.Tuple
	for _, r := range other.rows {
		matched := false
		for _, l := range t.rows {
			if l.Pull(xpos).Equal(r.Pull(ypos)) {
				rows = append(rows, l.Concat(r))
				matched = true
			}
		}
		if !matched {
			rows = append(rows, pad.Concat(r))
		}
	}
	return New(t.name+"_rj_"+other.name, schema, domain, nil, rows)
}

// joinPositions resolves both attribute subsequences once. Mismatched arity
// or unknown attributes degrade the join to an empty result.
func (t *Table) joinPositions(other *Table, x, y types.Schema, op string) (xpos, ypos []int, ok bool) {
	if len(x) != len(y) {
		log.Printf("relation: %s %s/%s: join attribute arity %d != %d",
			op, t.name, other.name, len(x), len(y))
		t.stats.RecordDegraded(op, "join attribute arity mismatch")
		return nil, nil, false
	}
	xpos, err := t.positions(x)
	if err != nil {
		log.Printf("relation: %s %s/%s: %v", op, t.name, other.name, err)
		t.stats.RecordDegraded(op, err.Error())
		return nil, nil, false
	}
	ypos, err = other.positions(y)
	if err != nil {
		log.Printf("relation: %s %s/%s: %v", op, t.name, other.name, err)
		t.stats.RecordDegraded(op, err.Error())
		return nil, nil, false
	}
	return xpos, ypos, true
}

func (t *Table) emptyJoin(other *Table) *Table {
	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	return New(t.name+"_j_"+other.name, schema, domain, nil, nil)
}

// dropRightCommon removes the right-side duplicates of the natural-join
// columns, so each common attribute appears once.
func (t *Table) dropRightCommon(joined, other *Table, common types.Schema) *Table {
	if len(common) == 0 {
		return joined
	}
	keep := make([]int, 0, len(joined.schema)-len(common))
	for i, a := range joined.schema {
		if i >= len(t.schema) && common.Contains(trimSuffix2(a, common)) {
			continue
		}
		keep = append(keep, i)
	}
	out := joined.projectAt(keep)
	out.name = joined.name
	return out
}

// trimSuffix2 undoes the "2" collision suffix when the base name is one of
// the natural-join columns.
func trimSuffix2(a string, common types.Schema) string {
	if len(a) > 1 && a[len(a)-1] == '2' && common.Contains(a[:len(a)-1]) {
		return a[:len(a)-1]
	}
	return a
}

// sameAttrs reports whether two attribute lists are equal element-wise.
func sameAttrs(a, b types.Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cmpTuples orders two pulled key tuples lexicographically.
func cmpTuples(a, b types.Tuple) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := types.Cmp(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

// missingTuple builds the null-pad tuple for an outer join: one typed
// missing sentinel per domain tag.
func missingTuple(d types.Domain) types.Tuple {
	out := make(types.Tuple, len(d))
	for i, tag := range d {
		out[i] = types.MissingFor(tag)
	}
	return out
}
