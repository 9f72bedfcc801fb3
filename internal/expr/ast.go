package expr

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Node is a parsed condition.
type Node interface {
	Pos() int
	String() string
}

// CompareOp is a comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

func (op CompareOp) String() string {
	return [...]string{"==", "!=", "<", "<=", ">", ">="}[op]
}

// LogicalOp joins two conditions.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpAnd {
		return "&&"
	}
	return "||"
}

// Literal is a constant.
type Literal struct {
	Value  models.Value
	Offset int
}

// FieldRef references an answer by field identifier.
type FieldRef struct {
	ID     string
	Offset int
}

// VariableRef references a derived context variable.
type VariableRef struct {
	Name   string
	Offset int
}

// Comparison compares two operands.
type Comparison struct {
	Op          CompareOp
	Left, Right Node
	Offset      int
}

// Logical combines two conditions with short-circuit semantics.
type Logical struct {
	Op          LogicalOp
	Left, Right Node
	Offset      int
}

// Not negates a condition.
type Not struct {
	Operand Node
	Offset  int
}

// Membership is contains(collection, item).
type Membership struct {
	Collection, Item Node
	Offset           int
}

func (n *Literal) Pos() int     { return n.Offset }
func (n *FieldRef) Pos() int    { return n.Offset }
func (n *VariableRef) Pos() int { return n.Offset }
func (n *Comparison) Pos() int  { return n.Offset }
func (n *Logical) Pos() int     { return n.Offset }
func (n *Not) Pos() int         { return n.Offset }
func (n *Membership) Pos() int  { return n.Offset }

func (n *Literal) String() string     { return n.Value.String() }
func (n *FieldRef) String() string    { return n.ID }
func (n *VariableRef) String() string { return n.Name }
func (n *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
func (n *Logical) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}
func (n *Not) String() string { return "!" + n.Operand.String() }
func (n *Membership) String() string {
	return fmt.Sprintf("contains(%s, %s)", n.Collection, n.Item)
}

// Walk visits n and its children depth-first. Returning false from fn skips
// the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *Comparison:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *Logical:
		Walk(x.Left, fn)
		Walk(x.Right, fn)
	case *Not:
		Walk(x.Operand, fn)
	case *Membership:
		Walk(x.Collection, fn)
		Walk(x.Item, fn)
	}
}

// References lists the distinct field ids and variable names used by n.
func References(n Node) (fields, variables []string) {
	seen := make(map[string]bool)
	Walk(n, func(node Node) bool {
		switch x := node.(type) {
		case *FieldRef:
			if !seen[x.ID] {
				seen[x.ID] = true
				fields = append(fields, x.ID)
			}
		case *VariableRef:
			if !seen[x.Name] {
				seen[x.Name] = true
				variables = append(variables, x.Name)
			}
		}
		return true
	})
	return fields, variables
}

// Format renders n back to source form.
func Format(n Node) string {
	return strings.TrimSpace(n.String())
}
