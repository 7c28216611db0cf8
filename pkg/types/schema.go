package types

import "strings"

// Schema is the ordered list of attribute names of a table. Position is
// significant and shared with Domain and Tuple.
type Schema []string

// SplitSchema parses a comma-separated attribute list, trimming whitespace
// around each name.
func SplitSchema(s string) Schema {
	parts := strings.Split(s, ",")
	out := make(Schema, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Index returns the position of an attribute, or -1 when absent.
func (s Schema) Index(name string) int {
	for i, a := range s {
		if a == name {
			return i
		}
	}
	return -1
}

// Contains reports whether the schema names the attribute.
func (s Schema) Contains(name string) bool { return s.Index(name) >= 0 }

// Intersect returns the attributes common to both schemas, in this schema's
// order. Natural joins derive their join columns from it.
func (s Schema) Intersect(other Schema) Schema {
	var out Schema
	for _, a := range s {
		if other.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

// Unique reports whether all attribute names are distinct.
func (s Schema) Unique() bool {
	seen := make(map[string]struct{}, len(s))
	for _, a := range s {
		if _, dup := seen[a]; dup {
			return false
		}
		seen[a] = struct{}{}
	}
	return true
}

// Clone returns a copy of the schema.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Domain is the ordered list of column type tags, positionally aligned with
// a Schema.
type Domain []Type

// Equal reports whether two domains carry the same tag sequence, after
// normalizing the wide text class. Set operators and products require equal
// domains.
func (d Domain) Equal(other Domain) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i].Normalize() != other[i].Normalize() {
			return false
		}
	}
	return true
}

// Concat returns the concatenation of two domains.
func (d Domain) Concat(other Domain) Domain {
	out := make(Domain, 0, len(d)+len(other))
	out = append(out, d...)
	out = append(out, other...)
	return out
}

// Pull extracts the sub-domain at the given positions.
func (d Domain) Pull(pos []int) Domain {
	out := make(Domain, len(pos))
	for i, p := range pos {
		out[i] = d[p]
	}
	return out
}

// ParseDomain converts a comma-separated tag list ("int, text, double") into
// a Domain.
func ParseDomain(s string) (Domain, error) {
	parts := strings.Split(s, ",")
	out := make(Domain, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			continue
		}
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
