package explain

import (
	"context"
	"fmt"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/oracle"
)

// A Report tells whether a selection of features is a valid product.
type Report struct {
	// Selection is the checked selection, with canonical feature names.
	Selection []string `json:"selection"`
	// Violations are the rules the selection breaks, if only the selected
	// features are considered as present.
	Violations []cnf.Rule `json:"violations"`
	// Completable is true if adding features to the selection can make it valid.
	Completable bool `json:"completable"`
}

// Valid returns true iff the selection is a valid product.
func (r *Report) Valid() bool { return len(r.Violations) == 0 }

// Check checks the given selection of features against the rules of pb.
// Names are resolved like in constraints; unknown names make Check fail.
// If factory is nil, gophersat is used to decide whether the selection can be
// completed.
func Check(ctx context.Context, pb *cnf.Problem, selection []string, factory oracle.Factory) (*Report, error) {
	model := make([]bool, pb.NbVars())
	for _, name := range selection {
		id, err := pb.Vars.Resolve(name)
		if err != nil {
			return nil, err
		}
		model[id-1] = true
	}
	report := &Report{Selection: pb.Names(model), Violations: []cnf.Rule{}}
	violated := make([]bool, len(pb.Rules))
	for i, clause := range pb.Clauses {
		if o := pb.Origins[i]; !violated[o] && !satisfied(clause, model) {
			violated[o] = true
		}
	}
	for r, v := range violated {
		if v {
			report.Violations = append(report.Violations, pb.Rules[r])
		}
	}
	if report.Valid() {
		report.Completable = true
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if factory == nil {
		factory = oracle.NewGophersat
	}
	clauses := make([][]int, 0, len(pb.Clauses)+len(report.Selection))
	clauses = append(clauses, pb.Clauses...)
	for i, b := range model {
		if b {
			clauses = append(clauses, []int{i + 1})
		}
	}
	o, err := factory(pb.NbVars(), clauses)
	if err != nil {
		return nil, fmt.Errorf("could not create oracle: %w", err)
	}
	if report.Completable, err = o.Solve(); err != nil {
		return nil, err
	}
	return report, nil
}

// true iff the clause is satisfied by the model
func satisfied(clause []int, model []bool) bool {
	for _, lit := range clause {
		if (lit > 0 && model[lit-1]) || (lit < 0 && !model[-lit-1]) {
			return true
		}
	}
	return false
}
