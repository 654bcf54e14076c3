package cnf

import (
	"errors"
	"fmt"

	"github.com/crillab/featsat/bf"
	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/translate"
)

var (
	// ErrUnknownFeature is returned when an expression names a feature that
	// is not in the model.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrInvalidConstraint is returned when an explicit boolean expression
	// cannot be compiled.
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// An Option configures the compiler.
type Option func(*compiler)

// WithTranslator sets the translator used for constraints that have no boolean
// expression. A nil translator disables translation: such constraints are dropped.
func WithTranslator(tr translate.Translator) Option {
	return func(c *compiler) { c.tr = tr }
}

type compiler struct {
	tr translate.Translator
	pb *Problem
}

// Compile returns the clausal form of the given model.
// Structural errors in the model and invalid explicit expressions make it fail.
func Compile(m *fm.Model, opts ...Option) (*Problem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	vars, err := Allocate(m)
	if err != nil {
		return nil, err
	}
	c := compiler{tr: translate.Default, pb: &Problem{Root: m.Root.Name, Vars: vars}}
	for _, opt := range opts {
		opt(&c)
	}
	c.add(Rule{Kind: RootRule, Parent: m.Root.Name}, []int{c.id(m.Root.Name)})
	c.feature(m.Root)
	for _, ct := range m.Constraints {
		if err := c.constraint(ct); err != nil {
			return nil, err
		}
	}
	return c.pb, nil
}

func (c *compiler) id(name string) int {
	id, _ := c.pb.Vars.ID(name)
	return id
}

func (c *compiler) add(rule Rule, clauses ...[]int) {
	idx := len(c.pb.Rules)
	c.pb.Rules = append(c.pb.Rules, rule)
	for _, clause := range clauses {
		c.pb.Clauses = append(c.pb.Clauses, clause)
		c.pb.Origins = append(c.pb.Origins, idx)
	}
}

// feature encodes the links between f and its children, then the subtrees of
// its children.
func (c *compiler) feature(f *fm.Feature) {
	p := c.id(f.Name)
	for _, child := range f.Children {
		switch child := child.(type) {
		case *fm.Feature:
			ch := c.id(child.Name)
			if child.Mandatory {
				c.add(Rule{Kind: MandatoryRule, Parent: f.Name, Child: child.Name}, []int{-p, ch}, []int{-ch, p})
			} else {
				c.add(Rule{Kind: OptionalRule, Parent: f.Name, Child: child.Name}, []int{-ch, p})
			}
			c.feature(child)
		case *fm.Group:
			c.group(f.Name, p, child)
			for _, gf := range child.Features {
				c.feature(gf)
			}
		}
	}
}

func (c *compiler) group(parent string, p int, g *fm.Group) {
	names := make([]string, len(g.Features))
	ids := make([]int, len(g.Features))
	for i, gf := range g.Features {
		names[i] = gf.Name
		ids[i] = c.id(gf.Name)
	}
	atLeastOne := append([]int{-p}, ids...)
	clauses := [][]int{atLeastOne}
	kind := OrRule
	if g.Type == fm.Xor {
		kind = XorRule
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				clauses = append(clauses, []int{-ids[i], -ids[j]})
			}
		}
	}
	for _, ch := range ids {
		clauses = append(clauses, []int{-ch, p})
	}
	c.add(Rule{Kind: kind, Parent: parent, Group: names}, clauses...)
}

func (c *compiler) drop(ct fm.Constraint, format string, args ...interface{}) {
	c.pb.Dropped = append(c.pb.Dropped, Dropped{ID: ct.ID, Reason: fmt.Sprintf(format, args...)})
}

// constraint encodes a cross-tree constraint. Explicit expressions must be
// valid; translated ones are dropped when they are not.
func (c *compiler) constraint(ct fm.Constraint) error {
	expr := ct.Expression
	translated := false
	if expr == "" {
		if ct.English == "" {
			c.drop(ct, "no boolean expression nor English statement")
			return nil
		}
		var ok bool
		if c.tr != nil {
			expr, ok = c.tr.Translate(ct.English)
		}
		if !ok || expr == "" {
			c.drop(ct, "could not translate %q", ct.English)
			return nil
		}
		translated = true
	}
	f, err := bf.Parse(expr)
	if err == nil {
		err = c.checkVars(f)
	}
	var clauses [][]int
	if err == nil {
		clauses, err = bf.Clauses(f, c.pb.Vars.Resolve)
	}
	if err != nil {
		if translated && !errors.Is(err, bf.ErrTooLarge) {
			c.drop(ct, "translation %q is not usable: %v", expr, err)
			return nil
		}
		return fmt.Errorf("%w %s (%q): %w", ErrInvalidConstraint, ct.ID, expr, err)
	}
	canonical := bf.Rename(f, func(name string) string {
		id, _ := c.pb.Vars.Resolve(name)
		return c.pb.Vars.Name(id)
	})
	c.add(Rule{Kind: ConstraintRule, Constraint: ct.ID, Expression: canonical.String()}, clauses...)
	return nil
}

// checkVars makes sure every variable of f can be resolved, including those
// that would vanish while building clauses, e.g in "a ∨ ~a".
func (c *compiler) checkVars(f bf.Formula) error {
	for _, name := range bf.Vars(f) {
		if _, err := c.pb.Vars.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}
