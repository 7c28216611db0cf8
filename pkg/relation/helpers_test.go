package relation

import (
	"sort"

	"github.com/relacore/relacore/pkg/types"
)

// employees builds the workhorse fixture: id/name/dept/salary rows.
func employees() *Table {
	return NewFromAttrs("emp", "id, name, dept, salary",
		types.Domain{types.Integer, types.Text, types.Text, types.Double},
		"id",
		[]types.Tuple{
			{types.IntVal(1), types.TextVal("Ada"), types.TextVal("GA"), types.DoubleVal(120000)},
			{types.IntVal(2), types.TextVal("Grace"), types.TextVal("GA"), types.DoubleVal(64000)},
			{types.IntVal(3), types.TextVal("Edsger"), types.TextVal("FL"), types.DoubleVal(95000)},
		})
}

// pair builds a two-column table from id/text pairs.
func pair(name string, rows ...[2]interface{}) *Table {
	tuples := make([]types.Tuple, len(rows))
	for i, r := range rows {
		tuples[i] = types.Tuple{types.IntVal(int32(r[0].(int))), types.TextVal(r[1].(string))}
	}
	return NewFromAttrs(name, "id, name",
		types.Domain{types.Integer, types.Text}, "id", tuples)
}

// rowKeys returns the sorted multiset of tuple encodings of a table, for
// order-insensitive comparison of operator results.
func rowKeys(t *Table) []string {
	out := make([]string, t.Size())
	for i := 0; i < t.Size(); i++ {
		out[i] = t.Row(i).KeyString()
	}
	sort.Strings(out)
	return out
}
