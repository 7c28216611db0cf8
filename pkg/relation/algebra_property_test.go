package relation

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/relacore/relacore/pkg/types"
)

// tableOf builds a keyless two-column table from small integers; the text
// column is derived from the value so equal ids imply equal tuples.
func tableOf(name string, ids []int32) *Table {
	rows := make([]types.Tuple, len(ids))
	for i, id := range ids {
		rows[i] = types.Tuple{types.IntVal(id), types.TextVal("v" + strconv.Itoa(int(id)))}
	}
	return NewFromAttrs(name, "id, name", types.Domain{types.Integer, types.Text}, "", rows)
}

func genIDs() gopter.Gen {
	return gen.SliceOf(gen.Int32Range(0, 9))
}

func TestProperty_UnionCardinality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("bag union size is the sum of both sizes", prop.ForAll(
		func(a, b []int32) bool {
			t1 := tableOf("t1", a)
			t2 := tableOf("t2", b)
			return t1.Union(t2).Size() == t1.Size()+t2.Size()
		},
		genIDs(),
		genIDs(),
	))

	properties.TestingRun(t)
}

func TestProperty_SelectionIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("selecting twice with the same condition changes nothing", prop.ForAll(
		func(ids []int32, bound int32) bool {
			tb := tableOf("t", ids)
			cond := "id < " + strconv.Itoa(int(bound))
			once := tb.SelectWhere(cond)
			twice := once.SelectWhere(cond)
			return equalRowKeys(once, twice)
		},
		genIDs(),
		gen.Int32Range(0, 10),
	))

	properties.TestingRun(t)
}

func TestProperty_FullProjectionIsIdentity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("projecting the whole schema preserves every tuple", prop.ForAll(
		func(ids []int32) bool {
			tb := tableOf("t", ids)
			return equalRowKeys(tb, tb.Project("id", "name"))
		},
		genIDs(),
	))

	properties.TestingRun(t)
}

func TestProperty_JoinStrategiesAgree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	x, y := types.Schema{"id"}, types.Schema{"id"}

	properties.Property("non-unique index join matches the nested loop", prop.ForAll(
		func(a, b []int32) bool {
			t1 := tableOf("t1", a)
			t2 := tableOf("t2", b)
			nested := t1.Join(t2, x, y)
			indexed := t1.IndexJoinNonUnique(t2, x, y)
			return equalRowKeys(nested, indexed)
		},
		genIDs(),
		genIDs(),
	))

	properties.Property("sort-merge join over sorted inputs matches the nested loop", prop.ForAll(
		func(a, b []int32) bool {
			t1 := tableOf("t1", a).OrderBy("id")
			t2 := tableOf("t2", b).OrderBy("id")
			nested := t1.Join(t2, x, y)
			merged := t1.MergeJoin(t2, x, y)
			return equalRowKeys(nested, merged)
		},
		genIDs(),
		genIDs(),
	))

	properties.TestingRun(t)
}

func TestProperty_MinusIntersectPartition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("|T1-T2| + |T1 n T2| == |T1|", prop.ForAll(
		func(a, b []int32) bool {
			t1 := tableOf("t1", a)
			t2 := tableOf("t2", b)
			return t1.Minus(t2).Size()+t1.Intersect(t2).Size() == t1.Size()
		},
		genIDs(),
		genIDs(),
	))

	properties.TestingRun(t)
}

func equalRowKeys(a, b *Table) bool {
	ka, kb := rowKeys(a), rowKeys(b)
	if len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}
