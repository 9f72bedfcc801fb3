package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokEq  // == ===
	tokNeq // != !==
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd // && and AND
	tokOr  // || or OR
	tokNot // ! not NOT
	tokMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokIdent:
		return "identifier"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokEq:
		return "'=='"
	case tokNeq:
		return "'!='"
	case tokLt:
		return "'<'"
	case tokLte:
		return "'<='"
	case tokGt:
		return "'>'"
	case tokGte:
		return "'>='"
	case tokAnd:
		return "'&&'"
	case tokOr:
		return "'||'"
	case tokNot:
		return "'!'"
	case tokMinus:
		return "'-'"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string  // identifier name or unquoted string
	num  float64 // number literal
	pos  int
}

// lex splits src into tokens. Keywords and/or/not are case-insensitive.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, pos: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, pos: i})
			i++
		case c == '=':
			n := runLength(src[i:], '=')
			if n < 2 || n > 3 {
				return nil, fmt.Errorf("offset %d: unexpected %q", i, src[i:i+n])
			}
			toks = append(toks, token{kind: tokEq, pos: i})
			i += n
		case c == '!':
			if strings.HasPrefix(src[i:], "!==") {
				toks = append(toks, token{kind: tokNeq, pos: i})
				i += 3
			} else if strings.HasPrefix(src[i:], "!=") {
				toks = append(toks, token{kind: tokNeq, pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokNot, pos: i})
				i++
			}
		case c == '<' || c == '>':
			kind := tokLt
			if c == '>' {
				kind = tokGt
			}
			if strings.HasPrefix(src[i+1:], "=") {
				kind++
				toks = append(toks, token{kind: kind, pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: kind, pos: i})
				i++
			}
		case c == '&':
			if !strings.HasPrefix(src[i:], "&&") {
				return nil, fmt.Errorf("offset %d: single '&'", i)
			}
			toks = append(toks, token{kind: tokAnd, pos: i})
			i += 2
		case c == '|':
			if !strings.HasPrefix(src[i:], "||") {
				return nil, fmt.Errorf("offset %d: single '|'", i)
			}
			toks = append(toks, token{kind: tokOr, pos: i})
			i += 2
		case c == '\'' || c == '"':
			s, n, err := lexString(src[i:])
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", i, err)
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i += n
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(src[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("offset %d: bad number %q", i, src[i:j])
			}
			toks = append(toks, token{kind: tokNumber, num: n, pos: i})
			i = j
		case isIdentStart(runeAt(src, i)):
			j := i
			for j < len(src) {
				r, size := utf8.DecodeRuneInString(src[j:])
				if !isIdentPart(r) {
					break
				}
				j += size
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, token{kind: tokAnd, pos: i})
			case "or":
				toks = append(toks, token{kind: tokOr, pos: i})
			case "not":
				toks = append(toks, token{kind: tokNot, pos: i})
			default:
				toks = append(toks, token{kind: tokIdent, text: word, pos: i})
			}
			i = j
		default:
			return nil, fmt.Errorf("offset %d: unexpected character %q", i, runeAt(src, i))
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// lexString reads a quoted literal starting at s[0] and returns its value and
// the number of bytes consumed. Backslash escapes the next character.
func lexString(s string) (string, int, error) {
	quote := s[0]
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			i++
			sb.WriteByte(s[i])
		case quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func runeAt(s string, i int) rune {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
