package condition

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/types"
)

// Operand is the right-hand side of a condition: either a typed literal or a
// reference to another attribute of the target schema.
type Operand struct {
	IsAttr bool
	Attr   string
	Lit    types.Value
}

// Cond is a parsed, executable three-token condition.
type Cond struct {
	Attr  string
	Op    types.Predicate
	Right Operand
}

// String returns the condition's source form.
func (c *Cond) String() string {
	if c.Right.IsAttr {
		return fmt.Sprintf("%s %s %s", c.Attr, c.Op, c.Right.Attr)
	}
	return fmt.Sprintf("%s %s %s", c.Attr, c.Op, c.Right.Lit)
}

// Parse parses "attr op operand" against the target schema and domain. The
// literal is typed by the left attribute's domain tag, so "salary > 50000"
// yields a LongVal for a Long column and a DoubleVal for a Double column.
func Parse(input string, schema types.Schema, domain types.Domain) (*Cond, error) {
	lx := NewLexer(input)

	left := lx.Next()
	if left.Type != TokenIdent {
		return nil, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: expected attribute, got %q", input, left.Literal))
	}
	pos := schema.Index(left.Literal)
	if pos < 0 {
		return nil, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: unknown attribute %q", input, left.Literal))
	}

	opTok := lx.Next()
	if opTok.Type != TokenOperator {
		return nil, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: expected operator, got %q", input, opTok.Literal))
	}
	op, ok := types.ParsePredicate(opTok.Literal)
	if !ok {
		return nil, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: unknown operator %q", input, opTok.Literal))
	}

	right := lx.Next()
	operand, err := parseOperand(input, right, schema, domain[pos])
	if err != nil {
		return nil, err
	}

	if tail := lx.Next(); tail.Type != TokenEOF {
		return nil, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: trailing input at %q", input, tail.Literal))
	}

	return &Cond{Attr: left.Literal, Op: op, Right: operand}, nil
}

// parseOperand types the right operand. An unquoted identifier must name an
// attribute of the schema; there is no guessing by spelling.
func parseOperand(input string, tok Token, schema types.Schema, leftTag types.Type) (Operand, error) {
	switch tok.Type {
	case TokenIdent:
		if schema.Contains(tok.Literal) {
			return Operand{IsAttr: true, Attr: tok.Literal}, nil
		}
		return Operand{}, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: %q is neither an attribute nor a quoted literal", input, tok.Literal))

	case TokenString:
		lit, err := textLiteral(tok.Literal, leftTag)
		if err != nil {
			return Operand{}, errors.NewQueryError(errors.CodeParseError,
				fmt.Sprintf("condition %q: %v", input, err))
		}
		return Operand{Lit: lit}, nil

	case TokenNumber:
		lit, err := numericLiteral(tok.Literal, leftTag)
		if err != nil {
			return Operand{}, errors.NewQueryError(errors.CodeParseError,
				fmt.Sprintf("condition %q: %v", input, err))
		}
		return Operand{Lit: lit}, nil

	default:
		return Operand{}, errors.NewQueryError(errors.CodeParseError,
			fmt.Sprintf("condition %q: missing right operand", input))
	}
}

func textLiteral(s string, tag types.Type) (types.Value, error) {
	switch tag.Normalize() {
	case types.Text:
		if tag == types.WideText {
			return types.WideTextVal(s), nil
		}
		return types.TextVal(s), nil
	case types.TimeStamp:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("bad timestamp literal %q", s)
		}
		return types.TimeVal(ts), nil
	default:
		return nil, fmt.Errorf("quoted literal %q against %s column", s, tag)
	}
}

func numericLiteral(s string, tag types.Type) (types.Value, error) {
	switch tag {
	case types.Double:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad double literal %q", s)
		}
		return types.DoubleVal(f), nil
	case types.Integer:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad integer literal %q", s)
		}
		return types.IntVal(int32(n)), nil
	case types.Long:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad long literal %q", s)
		}
		return types.LongVal(n), nil
	default:
		return nil, fmt.Errorf("numeric literal %q against %s column", s, tag)
	}
}
