package oracle

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

type giniOracle struct {
	g      *gini.Gini
	nbVars int
	model  []bool
	unsat  bool // An empty clause was added
}

// NewGini returns an oracle backed by gini.
func NewGini(nbVars int, clauses [][]int) (o Oracle, err error) {
	defer catch(&err)
	res := &giniOracle{g: gini.NewV(nbVars), nbVars: nbVars}
	for _, clause := range clauses {
		if err := res.AddClause(clause); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (o *giniOracle) Solve() (sat bool, err error) {
	defer catch(&err)
	o.model = nil
	if o.unsat {
		return false, nil
	}
	switch o.g.Solve() {
	case 1:
		o.model = make([]bool, o.nbVars)
		// Variables gini never saw are left false
		last := int(o.g.MaxVar())
		for v := 1; v <= o.nbVars && v <= last; v++ {
			o.model[v-1] = o.g.Value(z.Var(v).Pos())
		}
		return true, nil
	case -1:
		return false, nil
	default:
		return false, ErrOracle
	}
}

func (o *giniOracle) Model() ([]bool, error) {
	if o.model == nil {
		return nil, ErrNoModel
	}
	res := make([]bool, len(o.model))
	copy(res, o.model)
	return res, nil
}

func (o *giniOracle) AddClause(lits []int) (err error) {
	defer catch(&err)
	if err := checkClause(o.nbVars, lits); err != nil {
		return err
	}
	o.model = nil
	if len(lits) == 0 {
		o.unsat = true
		return nil
	}
	for _, v := range lits {
		if v < 0 {
			o.g.Add(z.Var(-v).Neg())
		} else {
			o.g.Add(z.Var(v).Pos())
		}
	}
	o.g.Add(0)
	return nil
}
