package relation

import (
	"log"

	"github.com/relacore/relacore/pkg/types"
)

// Divide implements relational division. The divisor's schema must be a
// subsequence of this table's schema; the quotient keeps the remaining
// attributes. A quotient tuple survives only if its combination with every
// divisor tuple occurs in this table.
func (t *Table) Divide(other *Table) *Table {
	t.stats.Record("divide")

	var qattrs types.Schema
	for _, a := range t.schema {
		if !other.schema.Contains(a) {
			qattrs = append(qattrs, a)
		}
	}
	if len(qattrs) == len(t.schema) {
		log.Printf("relation: divide %s/%s: divisor shares no attributes", t.name, other.name)
		t.stats.RecordDegraded("divide", "divisor shares no attributes")
		return t.derive(t.name+"_q", qattrs, t.domain, nil)
	}

	qpos, _ := t.positions(qattrs)
	dpos, err := t.positions(other.schema)
	if err != nil {
		log.Printf("relation: divide %s/%s: %v", t.name, other.name, err)
		t.stats.RecordDegraded("divide", err.Error())
		return t.derive(t.name+"_q", qattrs, t.domain.Pull(qpos), nil)
	}

	// Membership set of the dividend, keyed by full-tuple encoding.
	member := make(map[string]struct{}, len(t.rows))
	for _, row := range t.rows {
		member[row.KeyString()] = struct{}{}
	}

	candidates := t.projectAt(qpos).Distinct()

	var rows []types.Tuple
	for _, q := range candidates.rows {
		all := true
		for _, u := range other.rows {
			full := make(types.Tuple, len(t.schema))
			for i, p := range qpos {
				full[p] = q[i]
			}
			for i, p := range dpos {
				full[p] = u[i]
			}
			if _, ok := member[full.KeyString()]; !ok {
				all = false
				break
			}
		}
		if all {
			rows = append(rows, q)
		}
	}
	return t.derive(t.name+"_q", qattrs, t.domain.Pull(qpos), rows)
}
