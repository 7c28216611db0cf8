package types

import "strings"

// Tuple is one table row: an ordered sequence of values positionally aligned
// with the table's domain.
type Tuple []Value

// Pull extracts the sub-tuple at the given positions, in order.
func (t Tuple) Pull(pos []int) Tuple {
	out := make(Tuple, len(pos))
	for i, p := range pos {
		out[i] = t[p]
	}
	return out
}

// Concat returns a new tuple holding this tuple's values followed by u's.
func (t Tuple) Concat(u Tuple) Tuple {
	out := make(Tuple, 0, len(t)+len(u))
	out = append(out, t...)
	out = append(out, u...)
	return out
}

// Equal reports whether two tuples hold pairwise equal values.
func (t Tuple) Equal(u Tuple) bool {
	if len(t) != len(u) {
		return false
	}
	for i := range t {
		eq, err := t[i].Compare(Equals, u[i])
		if err != nil || !eq {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the tuple. Values are immutable, so a
// copied backing slice is enough to decouple the rows.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}

// KeyString produces a deterministic encoding of the tuple's values, joined
// with "|". It is used for index keys, group keys and set-membership keys.
func (t Tuple) KeyString() string {
	parts := make([]string, len(t))
	for i, v := range t {
		if v == nil {
			parts[i] = "<NIL>"
		} else {
			parts[i] = v.String()
		}
	}
	return strings.Join(parts, "|")
}

// Missing reports whether any value of the tuple is a missing sentinel.
// Outer-join padding is detected this way.
func (t Tuple) Missing() bool {
	for _, v := range t {
		if v != nil && v.Missing() {
			return true
		}
	}
	return false
}

// Key identifies one tuple of a table: the encoding of the values at the
// table's key positions. Keys may be composite.
type Key string

// MakeKey computes the key of a tuple from the key attribute positions.
func MakeKey(t Tuple, pos []int) Key {
	return Key(t.Pull(pos).KeyString())
}
