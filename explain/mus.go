// Package explain helps understand why a feature model has no valid product,
// or why a selection of features is not a valid product.
package explain

import (
	"context"
	"errors"
	"fmt"

	"github.com/crillab/gophersat/solver"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/oracle"
)

// ErrSatisfiable is returned when asking to diagnose a model that has valid products.
var ErrSatisfiable = errors.New("model has valid products")

// A Diagnosis is a minimal set of rules that cannot be satisfied together:
// removing any of them would make the model valid.
type Diagnosis struct {
	Rules []cnf.Rule `json:"rules"`
}

// Diagnose returns a minimal set of conflicting rules of an unsatisfiable
// problem, i.e a minimal unsatisfiable subset of its rules.
// Rules are removed one after the other: the ones that must be kept for the
// problem to stay unsatisfiable are part of the diagnosis.
// All clauses of a rule are removed together, so the diagnosis talks about
// the model rather than about its clausal form.
func Diagnose(ctx context.Context, pb *cnf.Problem) (diag *Diagnosis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", oracle.ErrOracle, r)
		}
	}()
	for i, clause := range pb.Clauses {
		if len(clause) == 0 { // A contradiction is a conflict on its own
			return &Diagnosis{Rules: []cnf.Rule{pb.Rule(i)}}, nil
		}
	}
	nbVars := pb.NbVars()
	nbRules := len(pb.Rules)
	relax := func(rule int) int { return nbVars + rule + 1 }
	clauses := make([][]int, 0, nbVars+nbRules+len(pb.Clauses))
	for v := 1; v <= nbVars+nbRules; v++ {
		clauses = append(clauses, []int{v, -v})
	}
	for i, clause := range pb.Clauses {
		relaxed := make([]int, len(clause)+1)
		copy(relaxed, clause)
		relaxed[len(clause)] = relax(pb.Origins[i])
		clauses = append(clauses, relaxed)
	}
	s := solver.New(solver.ParseSlice(clauses))
	assumptions := make([]solver.Lit, nbRules)
	for r := range assumptions {
		assumptions[r] = oracle.Lit(-relax(r)) // At first, all rules are active
	}
	s.Assume(assumptions)
	if s.Solve() == solver.Sat {
		return nil, ErrSatisfiable
	}
	for r := range assumptions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		assumptions[r] = assumptions[r].Negation()
		s.Assume(assumptions)
		if s.Solve() == solver.Sat {
			// The rule is needed for the conflict: reactivate it
			assumptions[r] = assumptions[r].Negation()
		}
	}
	diag = &Diagnosis{}
	for r, lit := range assumptions {
		if !lit.IsPositive() {
			diag.Rules = append(diag.Rules, pb.Rules[r])
		}
	}
	return diag, nil
}

func (d *Diagnosis) String() string {
	res := fmt.Sprintf("%d conflicting rule(s):", len(d.Rules))
	for _, r := range d.Rules {
		res += "\n  - " + r.String()
	}
	return res
}
