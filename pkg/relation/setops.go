package relation

import (
	"log"

	"github.com/relacore/relacore/pkg/types"
)

// Incompatible reports whether two tables cannot participate in a set
// operator because their domain sequences differ.
func (t *Table) Incompatible(other *Table) bool {
	if t.domain.Equal(other.domain) {
		return false
	}
	log.Printf("relation: %s and %s have incompatible domains %v vs %v",
		t.name, other.name, t.domain, other.domain)
	return true
}

// Union returns the bag union of both tables: duplicates are kept.
// Rebuilding the primary index afterwards is the documented way to collapse
// duplicates by key. Incompatible operands degrade to the left operand.
func (t *Table) Union(other *Table) *Table {
	t.stats.Record("union")

	if t.Incompatible(other) {
		t.stats.RecordDegraded("union", "incompatible domains")
		return t
	}
	rows := make([]types.Tuple, 0, len(t.rows)+len(other.rows))
	rows = append(rows, t.rows...)
	rows = append(rows, other.rows...)
	return t.derive(t.name+"_u", t.schema, t.domain, rows)
}

// Minus returns the tuples of this table that do not occur in the other.
// Multiplicity on the left is respected: each left occurrence consumes at
// most one right occurrence.
func (t *Table) Minus(other *Table) *Table {
	t.stats.Record("minus")

	if t.Incompatible(other) {
		t.stats.RecordDegraded("minus", "incompatible domains")
		return t
	}

	remaining := countTuples(other.rows)
	var rows []types.Tuple
	for _, row := range t.rows {
		k := row.KeyString()
		if remaining[k] > 0 {
			remaining[k]--
			continue
		}
		rows = append(rows, row)
	}
	return t.derive(t.name+"_m", t.schema, t.domain, rows)
}

// Intersect returns the tuples of this table that also occur in the other,
// respecting multiplicity on both sides.
func (t *Table) Intersect(other *Table) *Table {
	t.stats.Record("intersect")

	if t.Incompatible(other) {
		t.stats.RecordDegraded("intersect", "incompatible domains")
		return t
	}

	remaining := countTuples(other.rows)
	var rows []types.Tuple
	for _, row := range t.rows {
		k := row.KeyString()
		if remaining[k] > 0 {
			remaining[k]--
			rows = append(rows, row)
		}
	}
	return t.derive(t.name+"_i", t.schema, t.domain, rows)
}

// Distinct returns the table with duplicate tuples removed, keeping the
// first occurrence of each.
func (t *Table) Distinct() *Table {
	t.stats.Record("distinct")

	seen := make(map[string]struct{}, len(t.rows))
	var rows []types.Tuple
	for _, row := range t.rows {
		k := row.KeyString()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, row)
	}
	return t.derive(t.name+"_d", t.schema, t.domain, rows)
}

// Product returns the Cartesian product: every pairwise tuple concatenation,
// |T1| x |T2| rows. Colliding attribute names from the right table are
// suffixed with "2".
func (t *Table) Product(other *Table) *Table {
	t.stats.Record("product")

	schema, domain := concatSchemas(t.schema, t.domain, other.schema, other.domain)
	rows := make([]types.Tuple, 0, len(t.rows)*len(other.rows))
	for _, l := range t.rows {
		for _, r := range other.rows {
			rows = append(rows, l.Concat(r))
		}
	}
	return New(t.name+"_x_"+other.name, schema, domain, nil, rows)
}

// countTuples builds a multiset of tuple encodings.
func countTuples(rows []types.Tuple) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.KeyString()]++
	}
	return counts
}

// concatSchemas concatenates two schema/domain pairs, disambiguating right
// attribute names that collide with left ones by suffixing "2".
func concatSchemas(ls types.Schema, ld types.Domain, rs types.Schema, rd types.Domain) (types.Schema, types.Domain) {
	schema := make(types.Schema, 0, len(ls)+len(rs))
	schema = append(schema, ls...)
	for _, a := range rs {
		if ls.Contains(a) {
			a += "2"
		}
		schema = append(schema, a)
	}
	return schema, ld.Concat(rd)
}
