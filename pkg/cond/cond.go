// Package cond defines the boolean conditions attached to conditional
// flow-graph nodes. Conditions are opaque to the structuring pass: it only
// negates them, joins them with && and ||, and prints them.
package cond

import "strings"

// Expr is any rendered expression, such as a return value
type Expr interface {
	String() string
}

// Condition is the interface for branch conditions
type Condition interface {
	Expr
	// Negated returns the logical complement of the condition
	Negated() Condition
	implCondition()
}

// LogicalOp is a short-circuit boolean operator
type LogicalOp int

const (
	OpAnd LogicalOp = iota // &&
	OpOr                   // ||
)

func (op LogicalOp) String() string {
	names := []string{"&&", "||"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Flip returns the dual operator (De Morgan)
func (op LogicalOp) Flip() LogicalOp {
	if op == OpAnd {
		return OpOr
	}
	return OpAnd
}

// ParseLogicalOp converts "&&" or "||" to a LogicalOp
func ParseLogicalOp(s string) (LogicalOp, bool) {
	switch s {
	case "&&":
		return OpAnd, true
	case "||":
		return OpOr, true
	}
	return 0, false
}

// --- Conditions ---

// Raw is an opaque, already rendered condition or expression
type Raw struct {
	Text string
}

// Not is the negation of a condition that has no cheaper complement
type Not struct {
	Arg Condition
}

// Compare is a relational test "Left Op Right"; negation flips Op
type Compare struct {
	Left  string
	Op    string // one of == != < <= > >=
	Right string
}

// Binary joins two conditions with && or ||
type Binary struct {
	Op    LogicalOp
	Left  Condition
	Right Condition
}

func (Raw) implCondition()     {}
func (Not) implCondition()     {}
func (Compare) implCondition() {}
func (Binary) implCondition()  {}

func (r Raw) Negated() Condition { return Not{Arg: r} }
func (n Not) Negated() Condition { return n.Arg }

func (c Compare) Negated() Condition {
	return Compare{Left: c.Left, Op: negatedOps[c.Op], Right: c.Right}
}

// Negated applies De Morgan's law
func (b Binary) Negated() Condition {
	return Binary{Op: b.Op.Flip(), Left: b.Left.Negated(), Right: b.Right.Negated()}
}

var negatedOps = map[string]string{
	"==": "!=",
	"!=": "==",
	"<":  ">=",
	">=": "<",
	">":  "<=",
	"<=": ">",
}

// ValidCompareOp reports whether op can be used in a Compare
func ValidCompareOp(op string) bool {
	_, ok := negatedOps[op]
	return ok
}

func (r Raw) String() string { return r.Text }

func (n Not) String() string {
	s := n.Arg.String()
	if wrapped(s) {
		return "!" + s
	}
	return "!(" + s + ")"
}

// String parenthesizes operands that are not primary expressions, so
// "a & 1" compared with 0 prints as "(a & 1) == 0".
func (c Compare) String() string {
	return primary(c.Left) + " " + c.Op + " " + primary(c.Right)
}

// wrapped reports whether s is one parenthesized group: its leading "("
// is closed by its final ")".
func wrapped(s string) bool {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// primary parenthesizes s if it contains an operator outside of any
// brackets. Leading unary operators and "->" are left alone.
func primary(s string) string {
	if wrapped(s) {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '-':
			if i+1 < len(s) && s[i+1] == '>' {
				i++
				continue
			}
			fallthrough
		default:
			if depth == 0 && i > 0 && strings.IndexByte(" +-*/%&|^<>=!?:,", ch) >= 0 {
				return "(" + s + ")"
			}
		}
	}
	return s
}

func (b Binary) String() string {
	return "(" + operand(b.Left) + " " + b.Op.String() + " " + operand(b.Right) + ")"
}

// operand parenthesizes comparisons nested inside a && / || chain
func operand(c Condition) string {
	if cmp, ok := c.(Compare); ok {
		return "(" + cmp.String() + ")"
	}
	return c.String()
}

// And returns "a && b"
func And(a, b Condition) Condition {
	return Binary{Op: OpAnd, Left: a, Right: b}
}

// Or returns "a || b"
func Or(a, b Condition) Condition {
	return Binary{Op: OpOr, Left: a, Right: b}
}

// Join combines a and b with op
func Join(op LogicalOp, a, b Condition) Condition {
	return Binary{Op: op, Left: a, Right: b}
}

// Format renders a condition for use inside "if (...)", dropping the
// outermost pair of parentheses a Binary would otherwise print twice.
func Format(c Condition) string {
	s := c.String()
	if _, ok := c.(Binary); ok {
		return s[1 : len(s)-1]
	}
	return s
}
