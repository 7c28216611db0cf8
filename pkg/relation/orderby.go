package relation

import (
	"log"
	"sort"

	"github.com/relacore/relacore/pkg/types"
)

// OrderBy returns the table sorted ascending over the attributes, compared
// lexicographically left to right. The sort is stable: ties keep their
// original order. The source table is untouched.
func (t *Table) OrderBy(attrs ...string) *Table {
	t.stats.Record("orderBy")
	return t.orderBy(attrs, false)
}

// OrderByDesc sorts descending instead.
func (t *Table) OrderByDesc(attrs ...string) *Table {
	t.stats.Record("orderByDesc")
	return t.orderBy(attrs, true)
}

func (t *Table) orderBy(attrs []string, desc bool) *Table {
	pos, err := t.positions(types.Schema(attrs))
	if err != nil {
		log.Printf("relation: orderBy on %s: %v", t.name, err)
		t.stats.RecordDegraded("orderBy", err.Error())
		return t.derive(t.name+"_o", t.schema, t.domain, t.rows)
	}

	rows := make([]types.Tuple, len(t.rows))
	copy(rows, t.rows)

	sort.SliceStable(rows, func(i, j int) bool {
		for _, p := range pos {
			c := types.Cmp(rows[i][p], rows[j][p])
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return t.derive(t.name+"_o", t.schema, t.domain, rows)
}
