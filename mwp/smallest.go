package mwp

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/crillab/gophersat/maxsat"

	"github.com/crillab/featsat/cnf"
	"github.com/crillab/featsat/oracle"
)

// ErrNoProduct is returned when a problem has no valid configuration.
var ErrNoProduct = errors.New("no valid product")

// Smallest returns a valid configuration with as few features as possible.
// Such a configuration is always minimal.
func Smallest(ctx context.Context, pb *cnf.Problem) (product []string, err error) {
	_, span := tracer.Start(ctx, "mwp.Smallest")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", oracle.ErrOracle, r)
		}
	}()
	if pb.Trivial() {
		return nil, ErrNoProduct
	}
	names := pb.Vars.Names()
	constrs := make([]maxsat.Constr, 0, len(pb.Clauses)+len(names))
	for _, clause := range pb.Clauses {
		lits := make([]maxsat.Lit, len(clause))
		for i, lit := range clause {
			if lit < 0 {
				lits[i] = maxsat.Not(pb.Vars.Name(lit))
			} else {
				lits[i] = maxsat.Var(pb.Vars.Name(lit))
			}
		}
		constrs = append(constrs, maxsat.HardClause(lits...))
	}
	// Each selected feature costs 1
	for _, name := range names {
		constrs = append(constrs, maxsat.SoftClause(maxsat.Not(name)))
	}
	model, _ := maxsat.New(constrs...).Solve()
	if model == nil {
		return nil, ErrNoProduct
	}
	for _, name := range names {
		if model[name] {
			product = append(product, name)
		}
	}
	slices.Sort(product)
	return product, nil
}
