package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginerr "github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

func TestGroupByAggregate_Sum(t *testing.T) {
	e := employees()

	out, err := e.GroupBy("dept").Aggregate("dept", AggSpec{Fn: AggSum, Col: "salary"})
	require.NoError(t, err)

	assert.Equal(t, types.Schema{"dept", "sum_salary"}, out.Schema())
	assert.Equal(t, types.Domain{types.Text, types.Double}, out.Domain())

	// Group order is first-seen: GA before FL.
	require.Equal(t, 2, out.Size())
	assert.Equal(t, "GA|184000", out.Row(0).KeyString())
	assert.Equal(t, "FL|95000", out.Row(1).KeyString())
}

func TestGroupByAggregate_MultipleSpecs(t *testing.T) {
	e := employees()

	out, err := e.GroupBy("dept").Aggregate("dept",
		AggSpec{Fn: AggCount, Col: "id"},
		AggSpec{Fn: AggAvg, Col: "salary"},
		AggSpec{Fn: AggMin, Col: "salary"},
		AggSpec{Fn: AggMax, Col: "salary"})
	require.NoError(t, err)

	assert.Equal(t, types.Schema{"dept", "count_id", "avg_salary", "min_salary", "max_salary"}, out.Schema())

	ga := out.Row(0)
	assert.Equal(t, "GA", ga[0].String())
	assert.Equal(t, types.IntVal(2), ga[1])
	assert.Equal(t, types.DoubleVal(92000), ga[2])
	assert.Equal(t, types.DoubleVal(64000), ga[3])
	assert.Equal(t, types.DoubleVal(120000), ga[4])
}

func TestAggregate_WithoutGroupByFails(t *testing.T) {
	e := employees()
	_, err := e.Aggregate("dept", AggSpec{Fn: AggSum, Col: "salary"})
	require.Error(t, err)
	assert.Equal(t, enginerr.CodeNotGrouped, enginerr.GetCode(err))
}

func TestAggregate_AttributeMismatchFails(t *testing.T) {
	e := employees()
	_, err := e.GroupBy("dept").Aggregate("name", AggSpec{Fn: AggSum, Col: "salary"})
	require.Error(t, err)
	assert.Equal(t, enginerr.CodeBadArgument, enginerr.GetCode(err))
}

func TestAggregate_UnknownColumnFails(t *testing.T) {
	e := employees()
	_, err := e.GroupBy("dept").Aggregate("dept", AggSpec{Fn: AggSum, Col: "missing"})
	assert.Error(t, err)
}

func TestAggregate_ClearsGroupingState(t *testing.T) {
	e := employees()
	_, err := e.GroupBy("dept").Aggregate("dept", AggSpec{Fn: AggCount, Col: "id"})
	require.NoError(t, err)

	// A second aggregate without a fresh GroupBy must fail.
	_, err = e.Aggregate("dept", AggSpec{Fn: AggCount, Col: "id"})
	assert.Error(t, err)
}

func TestAggregate_SkipsMissingValues(t *testing.T) {
	tb := NewFromAttrs("t", "dept, salary", types.Domain{types.Text, types.Double}, "",
		[]types.Tuple{
			{types.TextVal("GA"), types.DoubleVal(100)},
			{types.TextVal("GA"), types.NoDouble},
			{types.TextVal("FL"), types.NoDouble},
		})

	out, err := tb.GroupBy("dept").Aggregate("dept",
		AggSpec{Fn: AggCount, Col: "salary"},
		AggSpec{Fn: AggAvg, Col: "salary"})
	require.NoError(t, err)

	ga := out.Row(0)
	assert.Equal(t, types.IntVal(1), ga[1])
	assert.Equal(t, types.DoubleVal(100), ga[2])

	// A group of only missing values averages to the missing sentinel.
	fl := out.Row(1)
	assert.Equal(t, types.IntVal(0), fl[1])
	assert.Equal(t, types.NoDouble, fl[2])
}

func TestAggregate_SumTypedByColumn(t *testing.T) {
	tb := NewFromAttrs("t", "g, n", types.Domain{types.Text, types.Long}, "",
		[]types.Tuple{
			{types.TextVal("a"), types.LongVal(2)},
			{types.TextVal("a"), types.LongVal(3)},
		})
	out, err := tb.GroupBy("g").Aggregate("g", AggSpec{Fn: AggSum, Col: "n"})
	require.NoError(t, err)
	assert.Equal(t, types.LongVal(5), out.Row(0)[1])
}

func TestAggregate_SumOverTextFails(t *testing.T) {
	tb := NewFromAttrs("t", "g, s", types.Domain{types.Text, types.Text}, "",
		[]types.Tuple{{types.TextVal("a"), types.TextVal("b")}})
	_, err := tb.GroupBy("g").Aggregate("g", AggSpec{Fn: AggSum, Col: "s"})
	assert.Error(t, err)
}

func TestGroupBy_UnknownAttributeDegrades(t *testing.T) {
	e := employees()
	e.GroupBy("missing")
	assert.Equal(t, int64(1), e.Stats().OpDegraded("groupBy"))
}

func TestParseAggFunc(t *testing.T) {
	fn, err := ParseAggFunc("sum")
	require.NoError(t, err)
	assert.Equal(t, AggSum, fn)

	fn, err = ParseAggFunc("COUNT")
	require.NoError(t, err)
	assert.Equal(t, AggCount, fn)

	_, err = ParseAggFunc("median")
	assert.Error(t, err)
}
