package types

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ParseValueRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("long values survive the canonical string encoding", prop.ForAll(
		func(n int64) bool {
			v, err := ParseValue(Long, LongVal(n).String())
			if err != nil {
				return false
			}
			eq, err := v.Compare(Equals, LongVal(n))
			return err == nil && eq
		},
		gen.Int64(),
	))

	properties.Property("int values survive the canonical string encoding", prop.ForAll(
		func(n int32) bool {
			v, err := ParseValue(Integer, IntVal(n).String())
			if err != nil {
				return false
			}
			eq, err := v.Compare(Equals, IntVal(n))
			return err == nil && eq
		},
		gen.Int32(),
	))

	properties.Property("double values survive the canonical string encoding", prop.ForAll(
		func(f float64) bool {
			v, err := ParseValue(Double, DoubleVal(f).String())
			if err != nil {
				return false
			}
			eq, err := v.Compare(Equals, DoubleVal(f))
			return err == nil && eq
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.TestingRun(t)
}

func TestProperty_CmpAntisymmetric(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Cmp(a,b) == -Cmp(b,a) for longs", prop.ForAll(
		func(a, b int64) bool {
			return Cmp(LongVal(a), LongVal(b)) == -Cmp(LongVal(b), LongVal(a))
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("Cmp(a,b) == -Cmp(b,a) for text", prop.ForAll(
		func(a, b string) bool {
			return Cmp(TextVal(a), TextVal(b)) == -Cmp(TextVal(b), TextVal(a))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
