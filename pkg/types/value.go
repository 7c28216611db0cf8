package types

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spaolacci/murmur3"
)

// Value is a single typed cell of a tuple. Implementations are the concrete
// per-domain value types; a cell's Type must equal the corresponding domain
// tag (up to Text/WideText normalization).
type Value interface {
	// Type returns the domain tag of the value.
	Type() Type

	// Compare applies a comparison operator between this value and other.
	// Comparing values of incompatible kinds returns an error.
	Compare(op Predicate, other Value) (bool, error)

	// Missing reports whether the value is the typed missing sentinel.
	Missing() bool

	// Hash returns a murmur3 hash of the value's canonical encoding.
	Hash() uint64

	String() string
}

// Typed missing sentinels, one per domain tag. A tagged sentinel per type is
// used instead of a universal null; outer joins pad unmatched tuples with
// these.
var (
	NoDouble   = DoubleVal(-math.MaxFloat64)
	NoInt      = IntVal(math.MinInt32)
	NoLong     = LongVal(math.MinInt64)
	NoText     = TextVal("\x00")
	NoWideText = WideTextVal("\x00")
	NoTime     = TimeVal(time.Time{})
)

// MissingFor returns the missing sentinel for a domain tag.
func MissingFor(t Type) Value {
	switch t {
	case Double:
		return NoDouble
	case Integer:
		return NoInt
	case Long:
		return NoLong
	case Text:
		return NoText
	case WideText:
		return NoWideText
	case TimeStamp:
		return NoTime
	default:
		return NoText
	}
}

// DoubleVal is a 64-bit floating point value.
type DoubleVal float64

func (v DoubleVal) Type() Type    { return Double }
func (v DoubleVal) Missing() bool { return v == NoDouble }

func (v DoubleVal) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

func (v DoubleVal) Hash() uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(v)))
	return murmur3.Sum64(buf[:])
}

func (v DoubleVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := other.(DoubleVal)
	if !ok {
		return false, incomparable(v, other)
	}
	return ordered(op, cmpFloat(float64(v), float64(o)))
}

// IntVal is a 32-bit integer value.
type IntVal int32

func (v IntVal) Type() Type     { return Integer }
func (v IntVal) Missing() bool  { return v == NoInt }
func (v IntVal) String() string { return strconv.FormatInt(int64(v), 10) }

func (v IntVal) Hash() uint64 {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return murmur3.Sum64(buf[:])
}

func (v IntVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := other.(IntVal)
	if !ok {
		return false, incomparable(v, other)
	}
	return ordered(op, cmpInt(int64(v), int64(o)))
}

// LongVal is a 64-bit integer value.
type LongVal int64

func (v LongVal) Type() Type     { return Long }
func (v LongVal) Missing() bool  { return v == NoLong }
func (v LongVal) String() string { return strconv.FormatInt(int64(v), 10) }

func (v LongVal) Hash() uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return murmur3.Sum64(buf[:])
}

func (v LongVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := other.(LongVal)
	if !ok {
		return false, incomparable(v, other)
	}
	return ordered(op, cmpInt(int64(v), int64(o)))
}

// TextVal is a narrow variable-length text value.
type TextVal string

func (v TextVal) Type() Type     { return Text }
func (v TextVal) Missing() bool  { return v == NoText }
func (v TextVal) String() string { return string(v) }
func (v TextVal) Hash() uint64   { return murmur3.Sum64([]byte(v)) }

func (v TextVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := textOf(other)
	if !ok {
		return false, incomparable(v, other)
	}
	return ordered(op, cmpText(string(v), o))
}

// WideTextVal is a wide text value. It compares against both text classes.
type WideTextVal string

func (v WideTextVal) Type() Type     { return WideText }
func (v WideTextVal) Missing() bool  { return v == NoWideText }
func (v WideTextVal) String() string { return string(v) }
func (v WideTextVal) Hash() uint64   { return murmur3.Sum64([]byte(v)) }

func (v WideTextVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := textOf(other)
	if !ok {
		return false, incomparable(v, other)
	}
	return ordered(op, cmpText(string(v), o))
}

// TimeVal is a date-time value.
type TimeVal time.Time

func (v TimeVal) Type() Type     { return TimeStamp }
func (v TimeVal) Missing() bool  { return time.Time(v).IsZero() }
func (v TimeVal) String() string { return time.Time(v).Format(time.RFC3339Nano) }

func (v TimeVal) Hash() uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(time.Time(v).UnixNano()))
	return murmur3.Sum64(buf[:])
}

func (v TimeVal) Compare(op Predicate, other Value) (bool, error) {
	o, ok := other.(TimeVal)
	if !ok {
		return false, incomparable(v, other)
	}
	a, b := time.Time(v), time.Time(o)
	switch {
	case a.Before(b):
		return ordered(op, -1)
	case a.After(b):
		return ordered(op, 1)
	default:
		return ordered(op, 0)
	}
}

// Cmp totally orders two values for sorting. Values of incompatible kinds
// fall back to ordering by type tag so that a stable sort never flips them.
func Cmp(a, b Value) int {
	lt, err := a.Compare(LessThan, b)
	if err != nil {
		return cmpInt(int64(a.Type().Normalize()), int64(b.Type().Normalize()))
	}
	if lt {
		return -1
	}
	if eq, _ := a.Compare(Equals, b); eq {
		return 0
	}
	return 1
}

// FromNative converts a plain Go value (as produced by JSON decoding or the
// condition parser) into a Value of the given domain tag.
func FromNative(t Type, v interface{}) (Value, error) {
	if v == nil {
		return MissingFor(t), nil
	}
	switch t {
	case Double:
		if f, ok := toFloat64(v); ok {
			return DoubleVal(f), nil
		}
	case Integer:
		if f, ok := toFloat64(v); ok {
			return IntVal(int32(f)), nil
		}
	case Long:
		if f, ok := toFloat64(v); ok {
			return LongVal(int64(f)), nil
		}
	case Text:
		if s, ok := v.(string); ok {
			return TextVal(s), nil
		}
	case WideText:
		if s, ok := v.(string); ok {
			return WideTextVal(s), nil
		}
	case TimeStamp:
		switch x := v.(type) {
		case time.Time:
			return TimeVal(x), nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, fmt.Errorf("bad timestamp %q: %w", x, err)
			}
			return TimeVal(ts), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %s", v, t)
}

// ParseValue re-types a canonical string encoding (the String form of a
// value) by its domain tag. Snapshots and the journal round-trip cells
// through it.
func ParseValue(tag Type, s string) (Value, error) {
	switch tag {
	case Double:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad double %q: %w", s, err)
		}
		return DoubleVal(f), nil
	case Integer:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", s, err)
		}
		return IntVal(int32(n)), nil
	case Long:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad long %q: %w", s, err)
		}
		return LongVal(n), nil
	case Text:
		return TextVal(s), nil
	case WideText:
		return WideTextVal(s), nil
	case TimeStamp:
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", s, err)
		}
		return TimeVal(ts), nil
	default:
		return nil, fmt.Errorf("unknown type tag %d", tag)
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func textOf(v Value) (string, bool) {
	switch x := v.(type) {
	case TextVal:
		return string(x), true
	case WideTextVal:
		return string(x), true
	default:
		return "", false
	}
}

func incomparable(a, b Value) error {
	return fmt.Errorf("incomparable values: %s vs %s", a.Type(), b.Type())
}

func ordered(op Predicate, cmp int) (bool, error) {
	switch op {
	case Equals:
		return cmp == 0, nil
	case NotEqual:
		return cmp != 0, nil
	case LessThan:
		return cmp < 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unknown predicate %d", op)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpText(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
