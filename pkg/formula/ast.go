package formula

import (
	"fmt"
	"strconv"
)

// Expr is a parsed formula node. Expressions are parsed once at
// configuration load and evaluated many times per recomputation.
type Expr interface {
	expr()
	// String reconstructs a canonical source form, for diagnostics.
	String() string
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// Ref is a VAL(id) reference to another indicator or field by ID.
type Ref struct {
	ID int
}

// Call is an aggregate reference call: AVG(id, ...) or LAST_VAL(id, ...).
type Call struct {
	Func string
	IDs  []int
}

// PathRef is a dotted field path operand in the direct dialect,
// e.g. "totals.plan" or "monthlyData.october.samePeriod".
type PathRef struct {
	Path string
}

// Unary is a prefix operator application (only minus).
type Unary struct {
	Op    TokenType
	Right Expr
}

// Binary is an infix operator application.
type Binary struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*NumberLit) expr() {}
func (*Ref) expr()       {}
func (*Call) expr()      {}
func (*PathRef) expr()   {}
func (*Unary) expr()     {}
func (*Binary) expr()    {}

func (n *NumberLit) String() string { return trimFloat(n.Value) }
func (r *Ref) String() string       { return fmt.Sprintf("VAL(%d)", r.ID) }
func (p *PathRef) String() string   { return p.Path }
func (u *Unary) String() string     { return fmt.Sprintf("(%s%s)", u.Op, u.Right) }

func (c *Call) String() string {
	s := c.Func + "("
	for i, id := range c.IDs {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", id)
	}
	return s + ")"
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Refs returns every indicator/field ID the expression references, in
// source order, with duplicates preserved by first occurrence only.
func Refs(e Expr) []int {
	seen := make(map[int]bool)
	var out []int
	walk(e, func(n Expr) {
		switch v := n.(type) {
		case *Ref:
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v.ID)
			}
		case *Call:
			for _, id := range v.IDs {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	})
	return out
}

// Paths returns every dotted field path the expression references.
func Paths(e Expr) []string {
	seen := make(map[string]bool)
	var out []string
	walk(e, func(n Expr) {
		if p, ok := n.(*PathRef); ok && !seen[p.Path] {
			seen[p.Path] = true
			out = append(out, p.Path)
		}
	})
	return out
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch v := e.(type) {
	case *Unary:
		walk(v.Right, fn)
	case *Binary:
		walk(v.Left, fn)
		walk(v.Right, fn)
	}
}
