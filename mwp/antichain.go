package mwp

// An antichain is a set of sets of variables such that no set is a subset of
// another one. Sets are sorted in increasing order.
type antichain [][]int

// add adds set to a, unless a set of a is a subset of it.
// Sets of a that are supersets of set are removed.
// It returns false if set was discarded.
func (a *antichain) add(set []int) bool {
	for _, s := range *a {
		if subset(s, set) {
			return false
		}
	}
	kept := (*a)[:0]
	for _, s := range *a {
		if !subset(set, s) {
			kept = append(kept, s)
		}
	}
	*a = append(kept, set)
	return true
}

// subset returns true iff s1 ⊆ s2. Both must be sorted.
func subset(s1, s2 []int) bool {
	if len(s1) > len(s2) {
		return false
	}
	j := 0
	for _, v := range s1 {
		for j < len(s2) && s2[j] < v {
			j++
		}
		if j == len(s2) || s2[j] != v {
			return false
		}
		j++
	}
	return true
}

// positives returns the sorted list of variables bound to true in model.
func positives(model []bool) []int {
	var res []int
	for i, b := range model {
		if b {
			res = append(res, i+1)
		}
	}
	return res
}

// blocking returns the clause forbidding model.
func blocking(model []bool) []int {
	res := make([]int, len(model))
	for i, b := range model {
		if b {
			res[i] = -(i + 1)
		} else {
			res[i] = i + 1
		}
	}
	return res
}
