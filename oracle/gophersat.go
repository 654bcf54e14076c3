package oracle

import (
	"github.com/crillab/gophersat/solver"
)

type gophersatOracle struct {
	s      *solver.Solver
	nbVars int
	model  []bool
	unsat  bool // An empty clause was added
}

// NewGophersat returns an oracle backed by gophersat's CDCL solver.
func NewGophersat(nbVars int, clauses [][]int) (o Oracle, err error) {
	defer catch(&err)
	cnf := make([][]int, 0, nbVars+len(clauses))
	for v := 1; v <= nbVars; v++ {
		// Declares v even if it does not appear in any clause
		cnf = append(cnf, []int{v, -v})
	}
	for _, clause := range clauses {
		if err := checkClause(nbVars, clause); err != nil {
			return nil, err
		}
		cnf = append(cnf, clause)
	}
	return &gophersatOracle{s: solver.New(solver.ParseSlice(cnf)), nbVars: nbVars}, nil
}

func (o *gophersatOracle) Solve() (sat bool, err error) {
	defer catch(&err)
	o.model = nil
	if o.unsat || o.s.Solve() != solver.Sat {
		return false, nil
	}
	model := o.s.Model()
	o.model = make([]bool, o.nbVars)
	copy(o.model, model)
	return true, nil
}

func (o *gophersatOracle) Model() ([]bool, error) {
	if o.model == nil {
		return nil, ErrNoModel
	}
	res := make([]bool, len(o.model))
	copy(res, o.model)
	return res, nil
}

func (o *gophersatOracle) AddClause(lits []int) (err error) {
	defer catch(&err)
	if err := checkClause(o.nbVars, lits); err != nil {
		return err
	}
	o.model = nil
	if len(lits) == 0 {
		o.unsat = true
		return nil
	}
	o.s.AppendClause(solver.NewClause(Lits(lits)))
	return nil
}

// Lit returns the gophersat literal associated with the DIMACS literal v.
// It uses the same encoding as solver.IntToLit, whose parameter type is not
// the same across gophersat releases.
func Lit(v int) solver.Lit {
	if v < 0 {
		return solver.Lit(2*(-v-1) + 1)
	}
	return solver.Lit(2 * (v - 1))
}

// Lits converts a DIMACS clause to gophersat literals.
func Lits(clause []int) []solver.Lit {
	lits := make([]solver.Lit, len(clause))
	for i, v := range clause {
		lits[i] = Lit(v)
	}
	return lits
}
