// Package types provides the core data types for the Relacore engine:
// domain type tags, typed values with per-type missing sentinels, tuples,
// schemas and key encodings.
package types

import "fmt"

// Type is the domain tag for one table column.
type Type int

const (
	// Double is a 64-bit floating point column.
	Double Type = iota
	// Integer is a 32-bit integer column.
	Integer
	// Long is a 64-bit integer column.
	Long
	// Text is a variable-length text column (narrow width class).
	Text
	// WideText is the wide text class. It is type-compatible with Text:
	// domain checks normalize WideText to Text before comparing tags.
	WideText
	// TimeStamp is a date-time column.
	TimeStamp
)

// String returns a string representation of the type tag.
func (t Type) String() string {
	switch t {
	case Double:
		return "DOUBLE"
	case Integer:
		return "INTEGER"
	case Long:
		return "LONG"
	case Text:
		return "TEXT"
	case WideText:
		return "WIDE_TEXT"
	case TimeStamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// Normalize collapses the wide text class onto Text so that the two width
// classes compare as the same tag. All other tags map to themselves.
func (t Type) Normalize() Type {
	if t == WideText {
		return Text
	}
	return t
}

// ParseType converts a tag name to a Type. Both the long names used in
// schema files ("double") and the single-letter shorthand ("D") are accepted.
func ParseType(s string) (Type, error) {
	switch s {
	case "double", "D":
		return Double, nil
	case "int", "integer", "I":
		return Integer, nil
	case "long", "L":
		return Long, nil
	case "text", "string", "S":
		return Text, nil
	case "wtext", "X":
		return WideText, nil
	case "time", "timestamp", "T":
		return TimeStamp, nil
	default:
		return 0, fmt.Errorf("unknown type tag: %q", s)
	}
}
