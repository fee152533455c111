package formula

import (
	"math"

	"github.com/heatstack/heatplan/pkg/core"
)

// Env supplies operand values during evaluation. Val resolves VAL/AVG/
// LAST_VAL references by ID; Path resolves dotted field paths. Either may
// return core.None for a cell with no data; evaluation degrades per the
// policy below instead of erroring. References to IDs that do not exist in
// the template at all are a configuration error and are rejected up front
// by template.Check, not here.
type Env interface {
	Val(id int) core.Value
	Path(path string) core.Value
}

// EnvFunc adapts a pair of lookup functions to Env.
type EnvFunc struct {
	ValFn  func(id int) core.Value
	PathFn func(path string) core.Value
}

// Val implements Env.
func (e EnvFunc) Val(id int) core.Value {
	if e.ValFn == nil {
		return core.None
	}
	return e.ValFn(id)
}

// Path implements Env.
func (e EnvFunc) Path(path string) core.Value {
	if e.PathFn == nil {
		return core.None
	}
	return e.PathFn(path)
}

// Eval evaluates the expression against the environment. Pure: same inputs,
// same output, no side effects.
//
// Empty-value policy (applied uniformly across the project):
//   - "+", "-": a missing operand counts as 0, unless both operands are
//     missing, in which case the result is missing. A completely empty sum
//     renders a dash; a partially entered one a number.
//   - "*", "/", "%", comparisons, "&&", "||": all operands must be
//     present, otherwise the result is missing.
//   - Division or modulo by zero, and any NaN/Inf result, are missing.
//   - AVG averages present operands only; LAST_VAL takes the rightmost
//     present operand (the most recent month with data).
//
// Missing results propagate, so a calculated cell downstream of missing
// data shows a dash rather than a misleading zero.
func Eval(e Expr, env Env) core.Value {
	switch v := e.(type) {
	case *NumberLit:
		return core.Number(v.Value)

	case *Ref:
		return env.Val(v.ID)

	case *PathRef:
		return env.Path(v.Path)

	case *Call:
		return evalCall(v, env)

	case *Unary:
		r := Eval(v.Right, env)
		if !r.Valid {
			return core.None
		}
		return core.Number(-r.Num)

	case *Binary:
		return evalBinary(v, env)

	default:
		return core.None
	}
}

func evalCall(c *Call, env Env) core.Value {
	switch c.Func {
	case FuncAvg:
		sum, n := 0.0, 0
		for _, id := range c.IDs {
			if v := env.Val(id); v.Valid {
				sum += v.Num
				n++
			}
		}
		if n == 0 {
			return core.None
		}
		return core.Number(sum / float64(n))

	case FuncLastVal:
		for i := len(c.IDs) - 1; i >= 0; i-- {
			if v := env.Val(c.IDs[i]); v.Valid {
				return v
			}
		}
		return core.None

	default:
		return core.None
	}
}

func evalBinary(b *Binary, env Env) core.Value {
	l := Eval(b.Left, env)
	r := Eval(b.Right, env)

	switch b.Op {
	case TOKEN_PLUS, TOKEN_MINUS:
		if !l.Valid && !r.Valid {
			return core.None
		}
		// one-sided missing counts as zero
		ln, rn := l.Num, r.Num
		if !l.Valid {
			ln = 0
		}
		if !r.Valid {
			rn = 0
		}
		if b.Op == TOKEN_PLUS {
			return core.Number(ln + rn)
		}
		return core.Number(ln - rn)
	}

	if !l.Valid || !r.Valid {
		return core.None
	}

	switch b.Op {
	case TOKEN_STAR:
		return core.Number(l.Num * r.Num)
	case TOKEN_SLASH:
		if r.Num == 0 {
			return core.None
		}
		return core.Number(l.Num / r.Num)
	case TOKEN_PERCENT:
		if r.Num == 0 {
			return core.None
		}
		return core.Number(math.Mod(l.Num, r.Num))
	case TOKEN_EQ:
		return boolValue(l.Num == r.Num)
	case TOKEN_NE:
		return boolValue(l.Num != r.Num)
	case TOKEN_LT:
		return boolValue(l.Num < r.Num)
	case TOKEN_LE:
		return boolValue(l.Num <= r.Num)
	case TOKEN_GT:
		return boolValue(l.Num > r.Num)
	case TOKEN_GE:
		return boolValue(l.Num >= r.Num)
	case TOKEN_AND:
		return boolValue(l.Num != 0 && r.Num != 0)
	case TOKEN_OR:
		return boolValue(l.Num != 0 || r.Num != 0)
	default:
		return core.None
	}
}

func boolValue(b bool) core.Value {
	if b {
		return core.Number(1)
	}
	return core.Number(0)
}

// Truthy interprets an evaluation result as a rule outcome: a missing
// result or any non-zero number passes. Validation rules cannot fail on
// data that is not there; notEmpty covers that case.
func Truthy(v core.Value) bool {
	return !v.Valid || v.Num != 0
}
