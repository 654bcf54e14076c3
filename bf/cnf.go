package bf

import "fmt"

// Clauses returns the clausal form of f, as a list of clauses of DIMACS-like
// literals. id gives the positive index associated with each variable name;
// if it fails, Clauses fails with the same error.
// A nil, non-error result means f is a tautology; a result containing an
// empty clause means f is a contradiction.
func Clauses(f Formula, id func(name string) (int, error)) ([][]int, error) {
	return cnfRec(f.nnf(), id)
}

// transforms the f NNF formula into a CNF formula.
func cnfRec(f Formula, id func(name string) (int, error)) ([][]int, error) {
	switch f := f.(type) {
	case lit:
		v, err := id(string(f.v))
		if err != nil {
			return nil, err
		}
		if f.signed {
			v = -v
		}
		return [][]int{{v}}, nil
	case and:
		var res [][]int
		for _, sub := range f {
			cnf, err := cnfRec(sub, id)
			if err != nil {
				return nil, err
			}
			res = append(res, cnf...)
			if len(res) > MaxClauses {
				return nil, fmt.Errorf("%w: more than %d clauses", ErrTooLarge, MaxClauses)
			}
		}
		return res, nil
	case or:
		res := [][]int{{}}
		for _, sub := range f {
			cnf, err := cnfRec(sub, id)
			if err != nil {
				return nil, err
			}
			if len(cnf) == 0 { // One true disjunct makes the whole disjunction true
				return nil, nil
			}
			if len(res)*len(cnf) > MaxClauses {
				return nil, fmt.Errorf("%w: more than %d clauses", ErrTooLarge, MaxClauses)
			}
			res = distribute(res, cnf)
		}
		return res, nil
	case trueConst: // True clauses are ignored
		return nil, nil
	case falseConst:
		return [][]int{{}}, nil
	default:
		panic("invalid NNF formula")
	}
}

// distribute returns the clauses of (c1 ∨ c2), where c1 and c2 are CNFs.
// Tautological clauses are removed and literals are not repeated.
func distribute(c1, c2 [][]int) [][]int {
	res := make([][]int, 0, len(c1)*len(c2))
	for _, cl1 := range c1 {
		for _, cl2 := range c2 {
			if merged, ok := merge(cl1, cl2); ok {
				res = append(res, merged)
			}
		}
	}
	return res
}

// merge returns the disjunction of both clauses, and false if it is a tautology.
func merge(cl1, cl2 []int) ([]int, bool) {
	res := make([]int, len(cl1), len(cl1)+len(cl2))
	copy(res, cl1)
next:
	for _, l2 := range cl2 {
		for _, l1 := range res {
			if l1 == l2 {
				continue next
			}
			if l1 == -l2 {
				return nil, false
			}
		}
		res = append(res, l2)
	}
	return res, true
}
