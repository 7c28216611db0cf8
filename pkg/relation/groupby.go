package relation

import (
	"fmt"
	"log"
	"strings"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

// AggFunc identifies an aggregate function.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

// String returns the function name.
func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// ParseAggFunc converts a function name to an AggFunc.
func ParseAggFunc(name string) (AggFunc, error) {
	switch strings.ToUpper(name) {
	case "COUNT":
		return AggCount, nil
	case "SUM":
		return AggSum, nil
	case "AVG":
		return AggAvg, nil
	case "MIN":
		return AggMin, nil
	case "MAX":
		return AggMax, nil
	default:
		return 0, fmt.Errorf("unknown aggregate function: %s", name)
	}
}

// AggSpec pairs an aggregate function with the column it consumes.
type AggSpec struct {
	Fn  AggFunc
	Col string
}

// GroupBy partitions the tuples by the value of attr and flags the table as
// grouped. Group order is first-seen and stable. The same table is returned;
// Aggregate must follow.
func (t *Table) GroupBy(attr string) *Table {
	t.stats.Record("groupBy")

	p, ok := t.colPos[attr]
	if !ok {
		log.Printf("relation: groupBy on %s: no attribute %q", t.name, attr)
		t.stats.RecordDegraded("groupBy", "unknown attribute")
		return t
	}

	t.groups = make(map[string][]types.Tuple)
	t.groupOrder = t.groupOrder[:0]
	for _, row := range t.rows {
		k := row[p].String()
		if _, seen := t.groups[k]; !seen {
			t.groupOrder = append(t.groupOrder, k)
		}
		t.groups[k] = append(t.groups[k], row)
	}
	t.grouped = true
	t.groupAttr = attr
	return t
}

// Aggregate produces one output tuple per group: the group key first, then
// one column per AggSpec holding Fn over Col's values within the group.
// It requires a prior GroupBy on the same attribute and clears the grouping
// state afterwards.
func (t *Table) Aggregate(attr string, specs ...AggSpec) (*Table, error) {
	t.stats.Record("aggregate")

	if !t.grouped {
		return nil, errors.NewQueryError(errors.CodeNotGrouped,
			"aggregate on "+t.name+" without a prior groupBy")
	}
	if attr != t.groupAttr {
		return nil, errors.NewQueryError(errors.CodeBadArgument,
			fmt.Sprintf("aggregate attribute %q does not match grouping attribute %q", attr, t.groupAttr))
	}

	kp := t.colPos[attr]
	schema := types.Schema{attr}
	domain := types.Domain{t.domain[kp]}

	cols := make([]int, len(specs))
	for i, spec := range specs {
		p, ok := t.colPos[spec.Col]
		if !ok {
			return nil, errors.NewQueryError(errors.CodeUnknownAttribute,
				"aggregate column "+spec.Col+" not in schema of "+t.name)
		}
		cols[i] = p
		schema = append(schema, strings.ToLower(spec.Fn.String())+"_"+spec.Col)
		domain = append(domain, aggDomain(spec.Fn, t.domain[p]))
	}

	rows := make([]types.Tuple, 0, len(t.groupOrder))
	for _, gk := range t.groupOrder {
		group := t.groups[gk]
		out := make(types.Tuple, 0, 1+len(specs))
		out = append(out, group[0][kp])
		for i, spec := range specs {
			vals := make([]types.Value, len(group))
			for j, row := range group {
				vals[j] = row[cols[i]]
			}
			agg, err := applyAgg(spec.Fn, t.domain[cols[i]], vals)
			if err != nil {
				return nil, errors.NewQueryError(errors.CodeBadArgument, err.Error())
			}
			out = append(out, agg)
		}
		rows = append(rows, out)
	}

	t.grouped = false
	t.groups = nil
	t.groupOrder = nil
	t.groupAttr = ""

	return New(t.name+"_g", schema, domain, types.Schema{attr}, rows), nil
}

// aggDomain returns the output tag of an aggregate over a column tag:
// COUNT is integral, AVG is always floating point, the rest keep the
// column's tag.
func aggDomain(fn AggFunc, col types.Type) types.Type {
	switch fn {
	case AggCount:
		return types.Integer
	case AggAvg:
		return types.Double
	default:
		return col
	}
}

// applyAgg folds one group's column values with the aggregate function.
// Missing sentinels are skipped by every function, matching the usual
// aggregate treatment of absent values.
func applyAgg(fn AggFunc, col types.Type, vals []types.Value) (types.Value, error) {
	present := vals[:0:0]
	for _, v := range vals {
		if !v.Missing() {
			present = append(present, v)
		}
	}

	switch fn {
	case AggCount:
		return types.IntVal(int32(len(present))), nil

	case AggSum, AggAvg:
		var sum float64
		for _, v := range present {
			f, ok := numericOf(v)
			if !ok {
				return nil, fmt.Errorf("%s over non-numeric %s column", fn, col)
			}
			sum += f
		}
		if fn == AggAvg {
			if len(present) == 0 {
				return types.NoDouble, nil
			}
			return types.DoubleVal(sum / float64(len(present))), nil
		}
		return sumValue(col, sum)

	case AggMin, AggMax:
		if len(present) == 0 {
			return types.MissingFor(col), nil
		}
		best := present[0]
		for _, v := range present[1:] {
			c := types.Cmp(v, best)
			if (fn == AggMin && c < 0) || (fn == AggMax && c > 0) {
				best = v
			}
		}
		return best, nil

	default:
		return nil, fmt.Errorf("unknown aggregate function %d", fn)
	}
}

// sumValue types a SUM result after the column's own tag.
func sumValue(col types.Type, sum float64) (types.Value, error) {
	switch col {
	case types.Double:
		return types.DoubleVal(sum), nil
	case types.Integer:
		return types.IntVal(int32(sum)), nil
	case types.Long:
		return types.LongVal(int64(sum)), nil
	default:
		return nil, fmt.Errorf("SUM over non-numeric %s column", col)
	}
}

func numericOf(v types.Value) (float64, bool) {
	switch x := v.(type) {
	case types.DoubleVal:
		return float64(x), true
	case types.IntVal:
		return float64(x), true
	case types.LongVal:
		return float64(x), true
	default:
		return 0, false
	}
}
