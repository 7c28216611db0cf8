package bloom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_NoFalseNegatives(t *testing.T) {
	f := New(1000, 0.01)
	for i := 0; i < 1000; i++ {
		f.Add(fmt.Sprintf("key-%d", i))
	}
	for i := 0; i < 1000; i++ {
		assert.True(t, f.MayContain(fmt.Sprintf("key-%d", i)), "key-%d", i)
	}
	assert.Equal(t, uint64(1000), f.Count())
}

func TestFilter_FalsePositiveRateNearTarget(t *testing.T) {
	f := New(1000, 0.01)
	for i := 0; i < 1000; i++ {
		f.Add(fmt.Sprintf("key-%d", i))
	}

	falsePositives := 0
	probes := 10000
	for i := 0; i < probes; i++ {
		if f.MayContain(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(probes)
	assert.Less(t, rate, 0.05, "observed false positive rate %f", rate)
	assert.Less(t, f.FalsePositiveRate(), 0.05)
}

func TestFilter_EmptyContainsNothing(t *testing.T) {
	f := New(100, 0.01)
	assert.False(t, f.MayContain("anything"))
	assert.Equal(t, float64(0), f.FalsePositiveRate())
}

func TestFilter_DegenerateParams(t *testing.T) {
	// Bad sizing inputs fall back to defaults instead of panicking.
	f := New(0, 0)
	f.Add("x")
	assert.True(t, f.MayContain("x"))

	f = New(-5, 2)
	f.Add("y")
	assert.True(t, f.MayContain("y"))
}

func TestFilter_CompositeKeyEncodings(t *testing.T) {
	f := New(10, 0.01)
	f.Add("x|2")
	assert.True(t, f.MayContain("x|2"))
	assert.False(t, f.MayContain("x|3"))
}
