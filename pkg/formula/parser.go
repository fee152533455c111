// Package formula parses and evaluates the arithmetic expressions that
// derive calculated indicators and columns.
//
// Two dialects share one grammar:
//
//   - reference-call form: VAL(id), AVG(id, ...), LAST_VAL(id, ...)
//   - direct-expression form: dotted field paths as operands, e.g.
//     "totals.plan <= totals.samePeriod * 0.9"
//
// Grammar (precedence low to high):
//
//	expr       → or
//	or         → and ("||" and)*
//	and        → equality ("&&" equality)*
//	equality   → relational (("==" | "!=" | "===" | "!==") relational)*
//	relational → additive (("<" | "<=" | ">" | ">=") additive)*
//	additive   → multiplicative (("+" | "-") multiplicative)*
//	multiplicative → unary (("*" | "/" | "%") unary)*
//	unary      → "-" unary | primary
//	primary    → NUMBER | call | path | "(" expr ")"
//	call       → ("VAL" | "AVG" | "LAST_VAL") "(" NUMBER ("," NUMBER)* ")"
//	path       → IDENT ("." IDENT)*
//
// The grammar is deliberately closed: no assignment, no arbitrary function
// names, no strings. Configuration authors get comparison expressions, not
// a scripting language.
package formula

import (
	"fmt"
	"strconv"
)

// Function names accepted in the reference-call dialect.
const (
	FuncVal     = "VAL"
	FuncAvg     = "AVG"
	FuncLastVal = "LAST_VAL"
)

// Parser parses a single formula into an Expr.
type Parser struct {
	lexer  *Lexer
	token  Token // current token
	peek   Token // lookahead token
	errors []error
}

// NewParser creates a parser for the given formula source.
func NewParser(src string) *Parser {
	p := &Parser{lexer: NewLexer(src)}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the formula and returns the AST.
func Parse(src string) (Expr, error) {
	p := NewParser(src)
	e := p.parseExpr()
	if !p.check(TOKEN_EOF) {
		p.addError(fmt.Sprintf("unexpected trailing token %s", p.token.Type))
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return e, nil
}

// MustParse parses or panics; for fixtures and tests only.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// ---------- Token helpers ----------

func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.token.Type))
	return false
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{Pos: p.token.Pos, Message: msg})
}

// ---------- Grammar ----------

func (p *Parser) parseExpr() Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.check(TOKEN_OR) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseAnd()}
	}
	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseEquality()
	for p.check(TOKEN_AND) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseEquality()}
	}
	return left
}

func (p *Parser) parseEquality() Expr {
	left := p.parseRelational()
	for p.check(TOKEN_EQ) || p.check(TOKEN_NE) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseRelational()}
	}
	return left
}

func (p *Parser) parseRelational() Expr {
	left := p.parseAdditive()
	for p.check(TOKEN_LT) || p.check(TOKEN_LE) || p.check(TOKEN_GT) || p.check(TOKEN_GE) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseAdditive()}
	}
	return left
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.check(TOKEN_PLUS) || p.check(TOKEN_MINUS) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseMultiplicative()}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.check(TOKEN_STAR) || p.check(TOKEN_SLASH) || p.check(TOKEN_PERCENT) {
		op := p.token.Type
		p.nextToken()
		left = &Binary{Op: op, Left: left, Right: p.parseUnary()}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.check(TOKEN_MINUS) {
		p.nextToken()
		return &Unary{Op: TOKEN_MINUS, Right: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		f, err := strconv.ParseFloat(p.token.Literal, 64)
		if err != nil {
			p.addError(fmt.Sprintf("bad number literal %q", p.token.Literal))
			f = 0
		}
		p.nextToken()
		return &NumberLit{Value: f}

	case TOKEN_LPAREN:
		p.nextToken()
		e := p.parseExpr()
		p.expect(TOKEN_RPAREN)
		return e

	case TOKEN_IDENT:
		name := p.token.Literal
		if p.peek.Type == TOKEN_LPAREN {
			return p.parseCall(name)
		}
		return p.parsePath()

	default:
		p.addError(fmt.Sprintf("unexpected token %s", p.token.Type))
		p.nextToken()
		return &NumberLit{}
	}
}

// parseCall parses VAL/AVG/LAST_VAL with integer ID arguments.
func (p *Parser) parseCall(name string) Expr {
	switch name {
	case FuncVal, FuncAvg, FuncLastVal:
	default:
		p.addError(fmt.Sprintf("unknown function %q", name))
	}
	p.nextToken() // consume function name
	p.expect(TOKEN_LPAREN)

	var ids []int
	for {
		if !p.check(TOKEN_NUMBER) {
			p.addError(fmt.Sprintf("expected indicator id, got %s", p.token.Type))
			break
		}
		id, err := strconv.Atoi(p.token.Literal)
		if err != nil {
			p.addError(fmt.Sprintf("indicator id must be an integer, got %q", p.token.Literal))
		}
		ids = append(ids, id)
		p.nextToken()
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
	p.expect(TOKEN_RPAREN)

	if name == FuncVal {
		if len(ids) != 1 {
			p.addError(fmt.Sprintf("VAL takes exactly one id, got %d", len(ids)))
			ids = append(ids, 0)
		}
		return &Ref{ID: ids[0]}
	}
	if len(ids) == 0 {
		p.addError(fmt.Sprintf("%s needs at least one id", name))
	}
	return &Call{Func: name, IDs: ids}
}

// parsePath parses a dotted field path like "monthlyData.october.plan".
func (p *Parser) parsePath() Expr {
	path := p.token.Literal
	p.nextToken()
	for p.check(TOKEN_DOT) {
		p.nextToken()
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("expected path segment after '.', got %s", p.token.Type))
			break
		}
		path += "." + p.token.Literal
		p.nextToken()
	}
	return &PathRef{Path: path}
}
