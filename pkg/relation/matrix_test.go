package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMatrix(t *testing.T) {
	e := employees()
	m, err := e.ToMatrix("id", "salary")
	require.NoError(t, err)
	require.Len(t, m, 3)
	assert.Equal(t, []float64{1, 120000}, m[0])
	assert.Equal(t, []float64{3, 95000}, m[2])
}

func TestToMatrix_NonNumericFails(t *testing.T) {
	e := employees()
	_, err := e.ToMatrix("name")
	assert.Error(t, err)
	_, err = e.ToMatrix("missing")
	assert.Error(t, err)
}

func TestToMatrixV(t *testing.T) {
	e := employees()
	x, y, err := e.ToMatrixV([]string{"id"}, "salary")
	require.NoError(t, err)
	assert.Len(t, x, 3)
	assert.Equal(t, []float64{120000, 64000, 95000}, y)
}

func TestTypedColumns(t *testing.T) {
	e := employees()

	ids, err := e.IntCol("id")
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, ids)

	names, err := e.TextCol("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Grace", "Edsger"}, names)

	sal, err := e.DoubleCol("salary")
	require.NoError(t, err)
	assert.Equal(t, []float64{120000, 64000, 95000}, sal)

	// Tag mismatches are rejected.
	_, err = e.LongCol("id")
	assert.Error(t, err)
	_, err = e.IntCol("name")
	assert.Error(t, err)
	_, err = e.TextCol("salary")
	assert.Error(t, err)
}
