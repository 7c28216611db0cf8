package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relacore/relacore/pkg/types"
)

func joinFixture() (*Table, *Table) {
	t1 := pair("t1", [2]interface{}{1, "A"}, [2]interface{}{2, "B"})
	t2 := NewFromAttrs("t2", "id, value", types.Domain{types.Integer, types.Double}, "id",
		[]types.Tuple{
			{types.IntVal(1), types.DoubleVal(10)},
			{types.IntVal(3), types.DoubleVal(20)},
		})
	return t1, t2
}

func TestJoin_NestedLoop(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.Join(t2, types.Schema{"id"}, types.Schema{"id"})

	assert.Equal(t, types.Schema{"id", "name", "id2", "value"}, j.Schema())
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())
}

func TestNaturalJoin(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.NaturalJoin(t2)

	// Common columns are kept once.
	assert.Equal(t, types.Schema{"id", "name", "value"}, j.Schema())
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|10", j.Row(0).KeyString())
}

func TestThetaJoin(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.ThetaJoin(t2, func(l, r types.Tuple) bool {
		c, err := l[0].Compare(types.LessThan, r[0])
		return err == nil && c
	})
	// (1,A)x(3,20) and (2,B)x(3,20)
	assert.Equal(t, 2, j.Size())
}

func TestJoinWhere(t *testing.T) {
	t1, t2 := joinFixture()

	j := t1.JoinWhere(t2, "id == id2")
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())

	j = t1.JoinWhere(t2, "value > 15")
	assert.Equal(t, 2, j.Size())

	// A parse failure degrades to an empty join.
	j = t1.JoinWhere(t2, "value >")
	assert.Equal(t, 0, j.Size())
	assert.Equal(t, int64(1), t1.Stats().OpDegraded("joinWhere"))
}

func TestIndexJoin(t *testing.T) {
	t1, t2 := joinFixture()
	t2.CreateIndex(false)

	j := t1.IndexJoin(t2, types.Schema{"id"}, types.Schema{"id"})
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())
	assert.Equal(t, int64(0), t1.Stats().OpDegraded("indexJoin"))
}

func TestIndexJoin_FallsBackWithoutIndex(t *testing.T) {
	t1, t2 := joinFixture()

	j := t1.IndexJoin(t2, types.Schema{"id"}, types.Schema{"id"})
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())
	assert.Equal(t, int64(1), t1.Stats().OpDegraded("indexJoin"))
}

func TestIndexJoinNonUnique_PreservesMultiplicity(t *testing.T) {
	// Left side carries duplicate join values; a unique index would collapse
	// them, the non-unique index keeps every pairing.
	left := NewFromAttrs("orders", "cust, item", types.Domain{types.Integer, types.Text}, "",
		[]types.Tuple{
			{types.IntVal(1), types.TextVal("pen")},
			{types.IntVal(1), types.TextVal("ink")},
			{types.IntVal(2), types.TextVal("pad")},
		})
	right := pair("cust", [2]interface{}{1, "Ada"}, [2]interface{}{3, "Edsger"})

	j := left.IndexJoinNonUnique(right, types.Schema{"cust"}, types.Schema{"id"})
	assert.Equal(t, []string{"1|ink|1|Ada", "1|pen|1|Ada"}, rowKeys(j))
}

func TestMergeJoin(t *testing.T) {
	t1, t2 := joinFixture()
	// Fixture rows are already ascending on id.
	j := t1.MergeJoin(t2, types.Schema{"id"}, types.Schema{"id"})
	require.Equal(t, 1, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())
}

func TestMergeJoin_EqualKeyRunsCrossMultiply(t *testing.T) {
	left := NewFromAttrs("l", "k, lv", types.Domain{types.Integer, types.Text}, "",
		[]types.Tuple{
			{types.IntVal(1), types.TextVal("a")},
			{types.IntVal(1), types.TextVal("b")},
			{types.IntVal(2), types.TextVal("c")},
		})
	right := NewFromAttrs("r", "k, rv", types.Domain{types.Integer, types.Text}, "",
		[]types.Tuple{
			{types.IntVal(1), types.TextVal("x")},
			{types.IntVal(1), types.TextVal("y")},
			{types.IntVal(3), types.TextVal("z")},
		})

	j := left.MergeJoin(right, types.Schema{"k"}, types.Schema{"k"})
	assert.Equal(t, 4, j.Size())
}

func TestJoinStrategies_Agree(t *testing.T) {
	t1, t2 := joinFixture()
	x, y := types.Schema{"id"}, types.Schema{"id"}

	nested := t1.Join(t2, x, y)

	t2.CreateIndex(false)
	indexed := t1.IndexJoin(t2, x, y)
	merged := t1.MergeJoin(t2, x, y)

	assert.Equal(t, rowKeys(nested), rowKeys(indexed))
	assert.Equal(t, rowKeys(nested), rowKeys(merged))
}

func TestLeftJoin_PadsUnmatched(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.LeftJoin(t2, types.Schema{"id"}, types.Schema{"id"})

	require.Equal(t, 2, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())

	// The unmatched left tuple is padded with typed missing sentinels.
	padded := j.Row(1)
	assert.Equal(t, "B", padded[1].String())
	assert.Equal(t, types.NoInt, padded[2])
	assert.Equal(t, types.NoDouble, padded[3])
	assert.True(t, padded.Missing())
}

func TestRightJoin_PadsUnmatched(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.RightJoin(t2, types.Schema{"id"}, types.Schema{"id"})

	require.Equal(t, 2, j.Size())
	assert.Equal(t, "1|A|1|10", j.Row(0).KeyString())

	padded := j.Row(1)
	assert.Equal(t, types.NoInt, padded[0])
	assert.Equal(t, types.NoText, padded[1])
	assert.Equal(t, "20", padded[3].String())
}

func TestOuterJoin_Completeness(t *testing.T) {
	t1, t2 := joinFixture()

	left := t1.LeftJoin(t2, types.Schema{"id"}, types.Schema{"id"})
	assert.GreaterOrEqual(t, left.Size(), t1.Size())

	right := t1.RightJoin(t2, types.Schema{"id"}, types.Schema{"id"})
	assert.GreaterOrEqual(t, right.Size(), t2.Size())
}

func TestJoin_ArityMismatchDegrades(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.Join(t2, types.Schema{"id", "name"}, types.Schema{"id"})
	assert.Equal(t, 0, j.Size())
	assert.Equal(t, int64(1), t1.Stats().OpDegraded("join"))
}

func TestJoin_UnknownAttributeDegrades(t *testing.T) {
	t1, t2 := joinFixture()
	j := t1.Join(t2, types.Schema{"missing"}, types.Schema{"id"})
	assert.Equal(t, 0, j.Size())
}
