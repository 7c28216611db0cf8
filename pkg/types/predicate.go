package types

// Predicate is a comparison operator applied between two values.
type Predicate int

const (
	Equals Predicate = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

// String returns the operator's source form.
func (p Predicate) String() string {
	switch p {
	case Equals:
		return "=="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return "UNKNOWN"
	}
}

// ParsePredicate converts an operator token to a Predicate. Both "=" and
// "==" denote equality; "<>" is accepted for inequality.
func ParsePredicate(op string) (Predicate, bool) {
	switch op {
	case "=", "==":
		return Equals, true
	case "!=", "<>":
		return NotEqual, true
	case "<":
		return LessThan, true
	case "<=":
		return LessThanOrEqual, true
	case ">":
		return GreaterThan, true
	case ">=":
		return GreaterThanOrEqual, true
	default:
		return 0, false
	}
}
