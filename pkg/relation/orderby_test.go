package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relacore/relacore/pkg/types"
)

func TestOrderBy(t *testing.T) {
	e := employees()
	o := e.OrderBy("salary")

	assert.Equal(t, "Grace", o.Row(0)[1].String())
	assert.Equal(t, "Edsger", o.Row(1)[1].String())
	assert.Equal(t, "Ada", o.Row(2)[1].String())

	// The source is untouched.
	assert.Equal(t, "Ada", e.Row(0)[1].String())
}

func TestOrderByDesc(t *testing.T) {
	e := employees()
	o := e.OrderByDesc("salary")
	assert.Equal(t, "Ada", o.Row(0)[1].String())
	assert.Equal(t, "Grace", o.Row(2)[1].String())
}

func TestOrderBy_MultiAttribute(t *testing.T) {
	tb := NewFromAttrs("t", "dept, n", types.Domain{types.Text, types.Integer}, "",
		[]types.Tuple{
			{types.TextVal("b"), types.IntVal(1)},
			{types.TextVal("a"), types.IntVal(2)},
			{types.TextVal("a"), types.IntVal(1)},
		})
	o := tb.OrderBy("dept", "n")
	assert.Equal(t, "a|1", o.Row(0).KeyString())
	assert.Equal(t, "a|2", o.Row(1).KeyString())
	assert.Equal(t, "b|1", o.Row(2).KeyString())
}

func TestOrderBy_StableOnTies(t *testing.T) {
	tb := NewFromAttrs("t", "k, tag", types.Domain{types.Integer, types.Text}, "",
		[]types.Tuple{
			{types.IntVal(1), types.TextVal("first")},
			{types.IntVal(1), types.TextVal("second")},
		})
	o := tb.OrderBy("k")
	assert.Equal(t, "first", o.Row(0)[1].String())
	assert.Equal(t, "second", o.Row(1)[1].String())
}

func TestOrderBy_UnknownAttributeDegrades(t *testing.T) {
	e := employees()
	o := e.OrderBy("missing")
	assert.Equal(t, e.Size(), o.Size())
	assert.Equal(t, int64(1), e.Stats().OpDegraded("orderBy"))
}
