package mwp

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dalzilio/rudd"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/oracle"
)

// Count returns the number of valid configurations of pb, minimal or not.
// It builds the binary decision diagram of the whole problem, which can be
// large: nodes is the initial number of nodes, or 0 for a default value.
func Count(ctx context.Context, pb *cnf.Problem, nodes int) (*big.Int, error) {
	_, span := tracer.Start(ctx, "mwp.Count")
	defer span.End()
	if nodes <= 0 {
		nodes = 10000
	}
	bdd, err := rudd.New(pb.NbVars(), rudd.Nodesize(nodes), rudd.Cachesize(nodes/2))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrOracle, err)
	}
	// Variable i of the problem is level i-1 of the diagram
	res := bdd.True()
	for _, clause := range pb.Clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := bdd.False()
		for _, lit := range clause {
			if lit > 0 {
				c = bdd.Or(c, bdd.Ithvar(lit-1))
			} else {
				c = bdd.Or(c, bdd.NIthvar(-lit-1))
			}
		}
		res = bdd.And(res, c)
		if bdd.Errored() {
			return nil, fmt.Errorf("%w: %s", oracle.ErrOracle, bdd.Error())
		}
	}
	return bdd.Satcount(res), nil
}
