package relation

import (
	"log"

	"github.com/relacore/relacore/internal/condition"
	"github.com/relacore/relacore/pkg/types"
)

// Rename returns a table with a new name over the same data. Tuples are
// shared; the result carries no index.
func (t *Table) Rename(newName string) *Table {
	t.stats.Record("rename")
	return New(newName, t.schema, t.domain, t.key, t.rows)
}

// Project returns the table restricted to the named attributes, in the given
// order. Unknown attributes degrade to an empty projection of the known ones.
// Attribute positions are resolved once and reused for every tuple.
func (t *Table) Project(attrs ...string) *Table {
	t.stats.Record("project")

	pos, err := t.positions(types.Schema(attrs))
	if err != nil {
		log.Printf("relation: project on %s: %v", t.name, err)
		t.stats.RecordDegraded("project", err.Error())
		return t.derive(t.name+"_p", nil, nil, nil)
	}
	return t.projectAt(pos)
}

// ProjectAt projects by column position instead of name.
func (t *Table) ProjectAt(pos ...int) *Table {
	t.stats.Record("projectAt")

	for _, p := range pos {
		if p < 0 || p >= len(t.schema) {
			log.Printf("relation: projectAt on %s: position %d out of range", t.name, p)
			t.stats.RecordDegraded("projectAt", "position out of range")
			return t.derive(t.name+"_p", nil, nil, nil)
		}
	}
	return t.projectAt(pos)
}

func (t *Table) projectAt(pos []int) *Table {
	schema := make(types.Schema, len(pos))
	for i, p := range pos {
		schema[i] = t.schema[p]
	}
	domain := t.domain.Pull(pos)

	rows := make([]types.Tuple, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.Pull(pos)
	}
	return t.derive(t.name+"_p", schema, domain, rows)
}

// Select keeps the tuples for which the predicate holds.
func (t *Table) Select(pred func(types.Tuple) bool) *Table {
	t.stats.Record("select")

	var rows []types.Tuple
	for _, row := range t.rows {
		if pred(row) {
			rows = append(rows, row)
		}
	}
	return t.derive(t.name+"_s", t.schema, t.domain, rows)
}

// SelectWhere selects by a three-token condition string such as
// "salary > 50000" or "name == 'Ada Lovelace'". A parse failure degrades to
// an empty selection.
func (t *Table) SelectWhere(cond string) *Table {
	t.stats.Record("selectWhere")

	c, err := condition.Parse(cond, t.schema, t.domain)
	if err != nil {
		log.Printf("relation: selectWhere on %s: %v", t.name, err)
		t.stats.RecordDegraded("selectWhere", err.Error())
		return t.derive(t.name+"_s", t.schema, t.domain, nil)
	}
	return t.Select(t.predicateOf(c))
}

// predicateOf compiles a parsed condition into a tuple predicate. Attribute
// positions are resolved once, before iteration.
func (t *Table) predicateOf(c *condition.Cond) func(types.Tuple) bool {
	lp := t.colPos[c.Attr]
	if c.Right.IsAttr {
		rp := t.colPos[c.Right.Attr]
		return func(row types.Tuple) bool {
			ok, err := row[lp].Compare(c.Op, row[rp])
			return err == nil && ok
		}
	}
	lit := c.Right.Lit
	op := c.Op
	return func(row types.Tuple) bool {
		ok, err := row[lp].Compare(op, lit)
		return err == nil && ok
	}
}

// SelectKey performs a single primary-index lookup, returning a one-tuple
// table on a hit and an empty table on a miss. When no index exists the
// lookup fails closed with a diagnostic.
func (t *Table) SelectKey(k types.Key) *Table {
	t.stats.Record("selectKey")

	row, status := t.Lookup(k)
	switch status {
	case Found:
		return t.derive(t.name+"_s", t.schema, t.domain, []types.Tuple{row})
	case IndexAbsent:
		log.Printf("relation: selectKey on %s: no index, rebuild required", t.name)
		t.stats.RecordDegraded("selectKey", "index absent")
	}
	return t.derive(t.name+"_s", t.schema, t.domain, nil)
}

// SelProject fuses a selection with a single-column projection: one pass
// over the rows, pulling just the named attribute from matches.
func (t *Table) SelProject(attr string, pred func(types.Value) bool) *Table {
	t.stats.Record("selproject")

	p, ok := t.colPos[attr]
	if !ok {
		log.Printf("relation: selproject on %s: no attribute %q", t.name, attr)
		t.stats.RecordDegraded("selproject", "unknown attribute")
		return t.derive(t.name+"_sp", nil, nil, nil)
	}

	var rows []types.Tuple
	for _, row := range t.rows {
		if pred(row[p]) {
			rows = append(rows, types.Tuple{row[p]})
		}
	}
	return t.derive(t.name+"_sp", types.Schema{attr}, types.Domain{t.domain[p]}, rows)
}
