// Package translate turns simple English constraint statements into boolean
// expressions over feature names.
//
// It is a best-effort pattern matcher, not a natural language parser: a
// statement is tried against an ordered list of rules and the first rule that
// matches produces the expression. Statements that no rule understands are
// left untranslated. Matching ignores case, but feature names keep the casing
// they have in the statement.
package translate

import (
	"strings"

	"github.com/crillab/featsat/fm"
)

// A Translator translates a statement into a boolean expression.
// ok is false when the statement could not be translated.
type Translator interface {
	Translate(text string) (expr string, ok bool)
}

// Func adapts a function to the Translator interface.
type Func func(text string) (string, bool)

// Translate calls fn.
func (fn Func) Translate(text string) (string, bool) { return fn(text) }

// A Rule recognizes one surface pattern.
// Match is given the lower-case statement. Build is only called when Match
// reported true, with the statement and its lower-case version (both of the
// same length), and may still fail when the statement does not have the
// expected shape; the next rule is then tried.
type Rule struct {
	Name  string
	Match func(lower string) bool
	Build func(text, lower string) (string, bool)
}

// Rules is an ordered list of rules. The first rule to build an expression wins.
type Rules []Rule

// Translate implements Translator.
func (rs Rules) Translate(text string) (string, bool) {
	s := newStatement(text)
	for _, r := range rs {
		if !r.Match(s.lower) {
			continue
		}
		if expr, ok := r.Build(s.text, s.lower); ok {
			return expr, true
		}
	}
	return "", false
}

// Default is the translator used when none is given.
var Default Translator = DefaultRules

// DefaultRules are the built-in patterns, in priority order.
var DefaultRules = Rules{
	{
		Name: "if-must-be-selected",
		Match: func(l string) bool {
			return strings.Contains(l, "if") && strings.Contains(l, "must be selected")
		},
		Build: func(text, lower string) (string, bool) {
			return statement{text, lower}.conditional("must be selected", requires)
		},
	},
	{
		Name: "if-cannot-be-selected",
		Match: func(l string) bool {
			return strings.Contains(l, "if") && strings.Contains(l, "is selected") && strings.Contains(l, "cannot be selected")
		},
		Build: func(text, lower string) (string, bool) {
			return statement{text, lower}.conditional("cannot be selected", excludes)
		},
	},
	{
		Name:  "is-required-to",
		Match: func(l string) bool { return strings.Contains(l, "is required to") },
		Build: func(text, lower string) (string, bool) {
			a, b, ok := statement{text, lower}.split("is required to")
			if !ok {
				return "", false
			}
			a = trimPrefixFold(a, "the ")
			if strings.Contains(strings.ToLower(b), "filter the catalog by location") {
				b = "ByLocation"
			}
			return requires(a, b)
		},
	},
	{
		Name:  "requires",
		Match: func(l string) bool { return strings.Contains(l, "requires") },
		Build: func(text, lower string) (string, bool) { return statement{text, lower}.around("requires", requires) },
	},
	{
		Name:  "implies",
		Match: func(l string) bool { return strings.Contains(l, "implies") },
		Build: func(text, lower string) (string, bool) { return statement{text, lower}.around("implies", requires) },
	},
	{
		Name:  "excludes",
		Match: func(l string) bool { return strings.Contains(l, "excludes") },
		Build: func(text, lower string) (string, bool) { return statement{text, lower}.around("excludes", excludes) },
	},
}

func requires(a, b string) (string, bool) {
	if a == "" || b == "" {
		return "", false
	}
	return a + " → " + b, true
}

func excludes(a, b string) (string, bool) {
	if a == "" || b == "" {
		return "", false
	}
	return "~(" + a + " ∧ " + b + ")", true
}

// Classify returns the advisory type of a boolean expression.
func Classify(expr string) fm.ConstraintType {
	switch {
	case strings.Contains(expr, "→") || strings.Contains(expr, "->"):
		return fm.Requires
	case strings.HasPrefix(expr, "~(") || strings.HasPrefix(expr, "¬(") || strings.HasPrefix(expr, "!("):
		return fm.Excludes
	default:
		return fm.Unknown
	}
}

// Resolve returns a copy of cs where each constraint lacking an expression
// gets the translation of its English statement, if any, and where every
// constraint with an expression is classified.
func Resolve(cs []fm.Constraint, tr Translator) []fm.Constraint {
	if tr == nil {
		tr = Default
	}
	res := make([]fm.Constraint, len(cs))
	for i, c := range cs {
		if c.Expression == "" && c.English != "" {
			if expr, ok := tr.Translate(c.English); ok {
				c.Expression = expr
			}
		}
		if c.Expression != "" {
			c.Type = Classify(c.Expression)
		} else if c.Type == "" {
			c.Type = fm.Unknown
		}
		res[i] = c
	}
	return res
}
