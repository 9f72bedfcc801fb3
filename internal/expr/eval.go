// Package expr implements the condition language used by constat rules.
//
// Conditions are parsed into an AST and interpreted against a Resolver; no
// code is generated. Evaluation fails closed: an expression that cannot be
// parsed or evaluated counts as false and is reported as a diagnostic.
package expr

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Resolver supplies values for field and variable references.
type Resolver interface {
	// Lookup returns the current value of a field id or variable name.
	Lookup(name string) (models.Value, bool)
	// DeclaredKind returns the value kind a field's schema declares.
	DeclaredKind(fieldID string) (models.ValueKind, bool)
}

// Program is a parsed condition ready for evaluation.
type Program struct {
	src  string
	root Node
}

// Compile parses src.
func Compile(src string) (*Program, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Root returns the parsed AST.
func (p *Program) Root() Node { return p.root }

// Source returns the original text.
func (p *Program) Source() string { return p.src }

// Eval runs the program. The error wraps models.ErrExpressionEvaluation.
func (p *Program) Eval(r Resolver) (bool, error) {
	in := &interp{src: p.src, r: r}
	v, err := in.eval(p.root)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Evaluator evaluates conditions and reports failures to a diagnostic sink.
type Evaluator struct {
	sink logger.Sink
}

// NewEvaluator creates an Evaluator. A nil sink discards diagnostics.
func NewEvaluator(sink logger.Sink) *Evaluator {
	return &Evaluator{sink: logger.OrNop(sink)}
}

// Evaluate returns the truth of expression against r. It never panics and
// never returns an error: failures resolve to false and are reported.
func (e *Evaluator) Evaluate(expression string, r Resolver) (result bool) {
	return e.EvaluateFor("", expression, r)
}

// EvaluateFor is Evaluate with a subject (constat or field id) attached to
// any diagnostic it reports.
func (e *Evaluator) EvaluateFor(subject, expression string, r Resolver) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.report(subject, fmt.Sprintf("panic evaluating %q: %v", expression, rec))
			result = false
		}
	}()

	prog, err := Compile(expression)
	if err != nil {
		e.report(subject, err.Error())
		return false
	}
	ok, err := prog.Eval(r)
	if err != nil {
		e.report(subject, err.Error())
		return false
	}
	return ok
}

func (e *Evaluator) report(subject, message string) {
	e.sink.Report(logger.NewDiagnostic(logger.KindExpression, "expr", subject, message))
}

type interp struct {
	src string
	r   Resolver
}

func (in *interp) errorf(n Node, format string, args ...any) error {
	return &models.EvalError{Expression: in.src, Pos: n.Pos(), Message: fmt.Sprintf(format, args...)}
}

func (in *interp) eval(n Node) (models.Value, error) {
	switch x := n.(type) {
	case *Literal:
		return x.Value, nil
	case *FieldRef:
		v, ok := in.r.Lookup(x.ID)
		if !ok {
			return models.Null(), nil
		}
		if kind, declared := in.r.DeclaredKind(x.ID); declared && !v.IsNull() && v.Kind() != kind {
			return models.Null(), in.errorf(x, "field %s is declared %s but holds %s", x.ID, kind, v.Kind())
		}
		return v, nil
	case *VariableRef:
		v, ok := in.r.Lookup(x.Name)
		if !ok {
			return models.Null(), nil
		}
		return v, nil
	case *Not:
		v, err := in.eval(x.Operand)
		if err != nil {
			return models.Null(), err
		}
		return models.Bool(!v.Truthy()), nil
	case *Logical:
		left, err := in.eval(x.Left)
		if err != nil {
			return models.Null(), err
		}
		if x.Op == OpAnd && !left.Truthy() {
			return models.Bool(false), nil
		}
		if x.Op == OpOr && left.Truthy() {
			return models.Bool(true), nil
		}
		right, err := in.eval(x.Right)
		if err != nil {
			return models.Null(), err
		}
		return models.Bool(right.Truthy()), nil
	case *Membership:
		return in.membership(x)
	case *Comparison:
		left, err := in.eval(x.Left)
		if err != nil {
			return models.Null(), err
		}
		right, err := in.eval(x.Right)
		if err != nil {
			return models.Null(), err
		}
		return in.compare(x, left, right)
	default:
		return models.Null(), in.errorf(n, "unsupported node %T", n)
	}
}

func (in *interp) membership(x *Membership) (models.Value, error) {
	coll, err := in.eval(x.Collection)
	if err != nil {
		return models.Null(), err
	}
	item, err := in.eval(x.Item)
	if err != nil {
		return models.Null(), err
	}
	switch coll.Kind() {
	case models.KindNull:
		return models.Bool(false), nil
	case models.KindList:
		return models.Bool(coll.Contains(item)), nil
	case models.KindString:
		s, _ := coll.AsString()
		sub, ok := item.AsString()
		if !ok {
			return models.Null(), in.errorf(x, "contains on a string needs a string item, got %s", item.Kind())
		}
		return models.Bool(strings.Contains(s, sub)), nil
	default:
		return models.Null(), in.errorf(x, "contains needs a list or string, got %s", coll.Kind())
	}
}

// compare implements the polymorphic comparison rules: a list compared for
// equality with a scalar is a membership test, other equality is strict, and
// ordering needs two numbers or two strings. Ordering against null is false.
func (in *interp) compare(x *Comparison, left, right models.Value) (models.Value, error) {
	switch x.Op {
	case OpEq, OpNeq:
		eq := looseEqual(left, right)
		if x.Op == OpNeq {
			eq = !eq
		}
		return models.Bool(eq), nil
	}

	if left.IsNull() || right.IsNull() {
		return models.Bool(false), nil
	}

	var cmp int
	if a, ok := left.AsNumber(); ok {
		b, ok := right.AsNumber()
		if !ok {
			return models.Null(), in.errorf(x, "cannot compare number with %s", right.Kind())
		}
		cmp = compareFloat(a, b)
	} else if a, ok := left.AsString(); ok {
		b, ok := right.AsString()
		if !ok {
			return models.Null(), in.errorf(x, "cannot compare string with %s", right.Kind())
		}
		cmp = strings.Compare(a, b)
	} else {
		return models.Null(), in.errorf(x, "cannot order %s values", left.Kind())
	}

	switch x.Op {
	case OpLt:
		return models.Bool(cmp < 0), nil
	case OpLte:
		return models.Bool(cmp <= 0), nil
	case OpGt:
		return models.Bool(cmp > 0), nil
	default:
		return models.Bool(cmp >= 0), nil
	}
}

func looseEqual(left, right models.Value) bool {
	leftList := left.Kind() == models.KindList
	rightList := right.Kind() == models.KindList
	switch {
	case leftList && !rightList:
		return left.Contains(right)
	case rightList && !leftList:
		return right.Contains(left)
	default:
		return left.Equal(right)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MapResolver resolves references from a plain map; nothing is declared.
type MapResolver map[string]any

// Lookup implements Resolver.
func (m MapResolver) Lookup(name string) (models.Value, bool) {
	v, ok := m[name]
	if !ok {
		return models.Null(), false
	}
	return models.ValueOf(v), true
}

// DeclaredKind implements Resolver.
func (m MapResolver) DeclaredKind(string) (models.ValueKind, bool) {
	return models.KindNull, false
}
