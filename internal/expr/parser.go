package expr

import (
	"fmt"
	"strings"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
)

// Parse turns a condition into an AST.
//
// Grammar:
//
//	or         = and { ("||" | "or") and }
//	and        = unary { ("&&" | "and") unary }
//	unary      = ("!" | "not") unary | comparison
//	comparison = operand [ ("==" | "===" | "!=" | "!==" | "<" | "<=" | ">" | ">=") operand ]
//	operand    = number | "-" number | string | "true" | "false" | "null"
//	           | "contains" "(" or "," or ")" | identifier | "(" or ")"
//
// Identifiers shaped like field ids (C1T02E01) become FieldRef nodes; any
// other identifier is a VariableRef.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, &models.EvalError{Expression: src, Pos: -1, Message: err.Error()}
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s", tok.kind)
	}
	return node, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", kind, tok.kind)
	}
	return tok, nil
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &models.EvalError{Expression: p.src, Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		op := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: OpOr, Left: left, Right: right, Offset: op.pos}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: OpAnd, Left: left, Right: right, Offset: op.pos}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokNot {
		op := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand, Offset: op.pos}, nil
	}
	return p.parseComparison()
}

var compareOps = map[tokenKind]CompareOp{
	tokEq:  OpEq,
	tokNeq: OpNeq,
	tokLt:  OpLt,
	tokLte: OpLte,
	tokGt:  OpGt,
	tokGte: OpGte,
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := compareOps[p.peek().kind]
	if !ok {
		return left, nil
	}
	opTok := p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, chained := compareOps[p.peek().kind]; chained {
		return nil, p.errorf(p.peek(), "chained comparison")
	}
	return &Comparison{Op: op, Left: left, Right: right, Offset: opTok.pos}, nil
}

func (p *parser) parseOperand() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokNumber:
		return &Literal{Value: models.Number(tok.num), Offset: tok.pos}, nil
	case tokMinus:
		num, err := p.expect(tokNumber)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: models.Number(-num.num), Offset: tok.pos}, nil
	case tokString:
		return &Literal{Value: models.String(tok.text), Offset: tok.pos}, nil
	case tokIdent:
		return p.parseIdent(tok)
	default:
		return nil, p.errorf(tok, "unexpected %s", tok.kind)
	}
}

func (p *parser) parseIdent(tok token) (Node, error) {
	switch tok.text {
	case "true":
		return &Literal{Value: models.Bool(true), Offset: tok.pos}, nil
	case "false":
		return &Literal{Value: models.Bool(false), Offset: tok.pos}, nil
	case "null", "undefined":
		return &Literal{Value: models.Null(), Offset: tok.pos}, nil
	}

	if p.peek().kind == tokLParen {
		if !strings.EqualFold(tok.text, "contains") {
			return nil, p.errorf(tok, "unknown function %q", tok.text)
		}
		p.next()
		coll, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma); err != nil {
			return nil, err
		}
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &Membership{Collection: coll, Item: item, Offset: tok.pos}, nil
	}

	if models.IsFieldID(tok.text) {
		return &FieldRef{ID: tok.text, Offset: tok.pos}, nil
	}
	return &VariableRef{Name: tok.text, Offset: tok.pos}, nil
}
