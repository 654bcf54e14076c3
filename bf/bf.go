package bf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooLarge is returned when the clausal form of a formula exceeds MaxClauses.
var ErrTooLarge = errors.New("formula too large")

// MaxClauses is the maximum number of clauses a single formula may expand to.
const MaxClauses = 1 << 16

// A Formula is any kind of boolean formula, not necessarily in CNF.
type Formula interface {
	nnf() Formula
	prec() int
	String() string
	Eval(model map[string]bool) bool
}

// Operator precedences, from lowest to highest.
const (
	precEq = iota + 1
	precImplies
	precOr
	precAnd
	precNot
	precAtom
)

// The "true" constant.
type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) nnf() Formula                   { return t }
func (t trueConst) prec() int                      { return precAtom }
func (t trueConst) String() string                 { return "⊤" }
func (t trueConst) Eval(model map[string]bool) bool { return true }

// The "false" constant.
type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) nnf() Formula                   { return f }
func (f falseConst) prec() int                      { return precAtom }
func (f falseConst) String() string                 { return "⊥" }
func (f falseConst) Eval(model map[string]bool) bool { return false }

// Var generates a named boolean variable in a formula.
func Var(name string) Formula {
	return variable(name)
}

type variable string

func (v variable) nnf() Formula {
	return lit{v: v}
}

func (v variable) prec() int      { return precAtom }
func (v variable) String() string { return string(v) }

func (v variable) Eval(model map[string]bool) bool {
	b, ok := model[string(v)]
	if !ok {
		panic(fmt.Errorf("model lacks binding for variable %s", string(v)))
	}
	return b
}

type lit struct {
	v      variable
	signed bool
}

func (l lit) nnf() Formula { return l }

func (l lit) prec() int {
	if l.signed {
		return precNot
	}
	return precAtom
}

func (l lit) String() string {
	if l.signed {
		return "~" + string(l.v)
	}
	return string(l.v)
}

func (l lit) Eval(model map[string]bool) bool {
	return l.v.Eval(model) != l.signed
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula {
	return not{f}
}

type not [1]Formula

func (n not) nnf() Formula {
	switch f := n[0].(type) {
	case variable:
		return lit{v: f, signed: true}
	case lit:
		f.signed = !f.signed
		return f
	case not:
		return f[0].nnf()
	case and:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}
		}
		return or(subs).nnf()
	case or:
		subs := make([]Formula, len(f))
		for i, sub := range f {
			subs[i] = not{sub}
		}
		return and(subs).nnf()
	case implies:
		return and{f[0], not{f[1]}}.nnf()
	case equiv:
		return or{and{f[0], not{f[1]}}, and{not{f[0]}, f[1]}}.nnf()
	case trueConst:
		return False
	case falseConst:
		return True
	default:
		panic("invalid formula type")
	}
}

func (n not) prec() int { return precNot }

func (n not) String() string {
	return "~" + wrap(n[0], precNot, false)
}

func (n not) Eval(model map[string]bool) bool {
	return !n[0].Eval(model)
}

// And generates a conjunction of subformulas.
func And(subs ...Formula) Formula {
	return and(subs)
}

type and []Formula

func (a and) nnf() Formula {
	var res and
	for _, s := range a {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case and: // Simplify: "and"s in the "and" get to the higher level
			res = append(res, nnf...)
		case trueConst: // True is ignored
		case falseConst:
			return False
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return True
	}
	return res
}

func (a and) prec() int { return precAnd }

func (a and) String() string {
	return join(a, " ∧ ", precAnd)
}

func (a and) Eval(model map[string]bool) bool {
	for _, s := range a {
		if !s.Eval(model) {
			return false
		}
	}
	return true
}

// Or generates a disjunction of subformulas.
func Or(subs ...Formula) Formula {
	return or(subs)
}

type or []Formula

func (o or) nnf() Formula {
	var res or
	for _, s := range o {
		nnf := s.nnf()
		switch nnf := nnf.(type) {
		case or: // Simplify: "or"s in the "or" get to the higher level
			res = append(res, nnf...)
		case falseConst: // False is ignored
		case trueConst:
			return True
		default:
			res = append(res, nnf)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	if len(res) == 0 {
		return False
	}
	return res
}

func (o or) prec() int { return precOr }

func (o or) String() string {
	return join(o, " ∨ ", precOr)
}

func (o or) Eval(model map[string]bool) bool {
	for _, s := range o {
		if s.Eval(model) {
			return true
		}
	}
	return false
}

// Implies indicates a subformula implies another one.
func Implies(f1, f2 Formula) Formula {
	return implies{f1, f2}
}

type implies [2]Formula

func (i implies) nnf() Formula { return or{not{i[0]}, i[1]}.nnf() }
func (i implies) prec() int    { return precImplies }

// Implication is right-associative: a → b → c is a → (b → c).
func (i implies) String() string {
	return wrap(i[0], precImplies, true) + " → " + wrap(i[1], precImplies, false)
}

func (i implies) Eval(model map[string]bool) bool {
	return !i[0].Eval(model) || i[1].Eval(model)
}

// Eq indicates a subformula is equivalent to another one.
func Eq(f1, f2 Formula) Formula {
	return equiv{f1, f2}
}

type equiv [2]Formula

func (e equiv) nnf() Formula {
	return and{or{not{e[0]}, e[1]}, or{e[0], not{e[1]}}}.nnf()
}

func (e equiv) prec() int { return precEq }

func (e equiv) String() string {
	return wrap(e[0], precEq, true) + " ↔ " + wrap(e[1], precEq, true)
}

func (e equiv) Eval(model map[string]bool) bool {
	return e[0].Eval(model) == e[1].Eval(model)
}

// Xor indicates exactly one of the two given subformulas is true.
func Xor(f1, f2 Formula) Formula {
	return and{or{not{f1}, not{f2}}, or{f1, f2}}
}

// wrap returns the string of f, parenthesized when f binds looser than its
// context. strict also parenthesizes operators of the same precedence.
func wrap(f Formula, ctx int, strict bool) string {
	if p := f.prec(); p < ctx || (strict && p == ctx) {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func join(subs []Formula, sep string, ctx int) string {
	strs := make([]string, len(subs))
	for i, f := range subs {
		strs[i] = wrap(f, ctx, false)
	}
	return strings.Join(strs, sep)
}

// Vars returns the names of the variables of f, in order of first appearance.
func Vars(f Formula) []string {
	var res []string
	seen := make(map[string]bool)
	var rec func(f Formula)
	rec = func(f Formula) {
		switch f := f.(type) {
		case variable:
			if !seen[string(f)] {
				seen[string(f)] = true
				res = append(res, string(f))
			}
		case lit:
			rec(f.v)
		case not:
			rec(f[0])
		case and:
			for _, sub := range f {
				rec(sub)
			}
		case or:
			for _, sub := range f {
				rec(sub)
			}
		case implies:
			rec(f[0])
			rec(f[1])
		case equiv:
			rec(f[0])
			rec(f[1])
		}
	}
	rec(f)
	return res
}

// Rename returns a copy of f where each variable is renamed through fn.
func Rename(f Formula, fn func(name string) string) Formula {
	switch f := f.(type) {
	case variable:
		return variable(fn(string(f)))
	case lit:
		return lit{v: variable(fn(string(f.v))), signed: f.signed}
	case not:
		return not{Rename(f[0], fn)}
	case and:
		subs := make(and, len(f))
		for i, sub := range f {
			subs[i] = Rename(sub, fn)
		}
		return subs
	case or:
		subs := make(or, len(f))
		for i, sub := range f {
			subs[i] = Rename(sub, fn)
		}
		return subs
	case implies:
		return implies{Rename(f[0], fn), Rename(f[1], fn)}
	case equiv:
		return equiv{Rename(f[0], fn), Rename(f[1], fn)}
	default:
		return f
	}
}
