package relation

import (
	"time"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

// Numeric export for downstream analytics. ToMatrix and ToMatrixV follow
// the Xb = y regression convention: selected columns become a row-major
// float64 matrix, optionally with one column split out as the target vector.

// ToMatrix extracts the named columns as a row-major float64 matrix.
func (t *Table) ToMatrix(cols ...string) ([][]float64, error) {
	pos, err := t.positions(types.Schema(cols))
	if err != nil {
		return nil, errors.NewQueryError(errors.CodeUnknownAttribute, err.Error())
	}

	out := make([][]float64, len(t.rows))
	for i, row := range t.rows {
		rec := make([]float64, len(pos))
		for j, p := range pos {
			f, ok := numericOf(row[p])
			if !ok {
				return nil, errors.NewQueryError(errors.CodeTypeMismatch,
					"column "+cols[j]+" of "+t.name+" is not numeric")
			}
			rec[j] = f
		}
		out[i] = rec
	}
	return out, nil
}

// ToMatrixV extracts cols as the X matrix and target as the y vector.
func (t *Table) ToMatrixV(cols []string, target string) ([][]float64, []float64, error) {
	x, err := t.ToMatrix(cols...)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.DoubleCol(target)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// DoubleCol extracts one numeric column as a float64 vector.
func (t *Table) DoubleCol(attr string) ([]float64, error) {
	p, ok := t.colPos[attr]
	if !ok {
		return nil, errors.NewQueryError(errors.CodeUnknownAttribute,
			"table "+t.name+" has no attribute "+attr)
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		f, num := numericOf(row[p])
		if !num {
			return nil, errors.NewQueryError(errors.CodeTypeMismatch,
				"column "+attr+" of "+t.name+" is not numeric")
		}
		out[i] = f
	}
	return out, nil
}

// IntCol extracts one Integer column as an int32 vector.
func (t *Table) IntCol(attr string) ([]int32, error) {
	p, err := t.typedCol(attr, types.Integer)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(t.rows))
	for i, row := range t.rows {
		out[i] = int32(row[p].(types.IntVal))
	}
	return out, nil
}

// LongCol extracts one Long column as an int64 vector.
func (t *Table) LongCol(attr string) ([]int64, error) {
	p, err := t.typedCol(attr, types.Long)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(t.rows))
	for i, row := range t.rows {
		out[i] = int64(row[p].(types.LongVal))
	}
	return out, nil
}

// TextCol extracts one text column (either width class) as a string vector.
func (t *Table) TextCol(attr string) ([]string, error) {
	p, ok := t.colPos[attr]
	if !ok {
		return nil, errors.NewQueryError(errors.CodeUnknownAttribute,
			"table "+t.name+" has no attribute "+attr)
	}
	if t.domain[p].Normalize() != types.Text {
		return nil, errors.NewQueryError(errors.CodeTypeMismatch,
			"column "+attr+" of "+t.name+" is not text")
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[p].String()
	}
	return out, nil
}

// TimeCol extracts one TimeStamp column as a time.Time vector.
func (t *Table) TimeCol(attr string) ([]time.Time, error) {
	p, err := t.typedCol(attr, types.TimeStamp)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(t.rows))
	for i, row := range t.rows {
		out[i] = time.Time(row[p].(types.TimeVal))
	}
	return out, nil
}

func (t *Table) typedCol(attr string, want types.Type) (int, error) {
	p, ok := t.colPos[attr]
	if !ok {
		return 0, errors.NewQueryError(errors.CodeUnknownAttribute,
			"table "+t.name+" has no attribute "+attr)
	}
	if t.domain[p] != want {
		return 0, errors.NewQueryError(errors.CodeTypeMismatch,
			"column "+attr+" of "+t.name+" is not "+want.String())
	}
	return p, nil
}
