// Package oracle wraps SAT solvers behind a small incremental interface.
//
// An Oracle is given a number of variables and a set of clauses, using the
// DIMACS convention: variables are integers in [1, nbVars] and a negative
// integer is a negated literal. Clauses can be added between two calls to
// Solve, which is all that is needed to enumerate models.
package oracle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrOracle is returned when the underlying solver fails.
	ErrOracle = errors.New("oracle failure")

	// ErrUnknownBackend is returned when asking for a backend that does not exist.
	ErrUnknownBackend = errors.New("unknown oracle backend")

	// ErrNoModel is returned by Model when the last call to Solve did not find one.
	ErrNoModel = errors.New("no model available")
)

// An Oracle decides the satisfiability of a growing set of clauses.
type Oracle interface {
	// Solve returns true if the current set of clauses is satisfiable.
	Solve() (bool, error)
	// Model returns the model found by the last successful call to Solve.
	// model[i] is the binding of variable i+1.
	Model() ([]bool, error)
	// AddClause adds a clause to the problem.
	AddClause(lits []int) error
}

// A Factory creates an oracle for the given problem.
type Factory func(nbVars int, clauses [][]int) (Oracle, error)

// Names of the available backends.
const (
	Gophersat = "gophersat"
	Gini      = "gini"
)

// Default is the name of the backend used when none is specified.
const Default = Gophersat

var factories = map[string]Factory{
	Gophersat: NewGophersat,
	Gini:      NewGini,
}

// New returns the factory of the named backend. An empty name means Default.
func New(backend string) (Factory, error) {
	if backend == "" {
		backend = Default
	}
	f, ok := factories[strings.ToLower(backend)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
	return f, nil
}

// Backends returns the names of all backends, sorted.
func Backends() []string {
	res := make([]string, 0, len(factories))
	for name := range factories {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// checkClause makes sure all literals of lits are in [-nbVars, nbVars] \ {0}.
func checkClause(nbVars int, lits []int) error {
	for _, lit := range lits {
		if lit == 0 || lit > nbVars || lit < -nbVars {
			return fmt.Errorf("%w: invalid literal %d in clause %v (%d vars)", ErrOracle, lit, lits, nbVars)
		}
	}
	return nil
}

// catch turns a solver panic into an error.
func catch(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrOracle, r)
	}
}
