package cnf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A RuleKind is the kind of model element a clause comes from.
type RuleKind string

const (
	RootRule       RuleKind = "root"
	MandatoryRule  RuleKind = "mandatory"
	OptionalRule   RuleKind = "optional"
	OrRule         RuleKind = "or"
	XorRule        RuleKind = "xor"
	ConstraintRule RuleKind = "constraint"
)

// A Rule is a model element, encoded as one or more clauses.
// Parent is set for all kinds but constraints, Child for mandatory and
// optional rules and Group for group rules.
type Rule struct {
	Kind       RuleKind `json:"kind"`
	Parent     string   `json:"parent,omitempty"`
	Child      string   `json:"child,omitempty"`
	Group      []string `json:"group,omitempty"`
	Constraint string   `json:"constraint,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

func (r Rule) String() string {
	switch r.Kind {
	case RootRule:
		return fmt.Sprintf("root feature %s must be selected", r.Parent)
	case MandatoryRule:
		return fmt.Sprintf("%s is mandatory under %s", r.Child, r.Parent)
	case OptionalRule:
		return fmt.Sprintf("%s is optional under %s", r.Child, r.Parent)
	case OrRule:
		return fmt.Sprintf("OR group {%s} under %s", strings.Join(r.Group, ", "), r.Parent)
	case XorRule:
		return fmt.Sprintf("XOR group {%s} under %s", strings.Join(r.Group, ", "), r.Parent)
	case ConstraintRule:
		return fmt.Sprintf("constraint %s: %s", r.Constraint, r.Expression)
	default:
		return string(r.Kind)
	}
}

// A Dropped constraint is a constraint that was not encoded.
type Dropped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// A Problem is the clausal form of a feature model.
type Problem struct {
	Root    string    // Name of the root feature
	Vars    *Vars     // Variables associated with features
	Clauses [][]int   // All clauses, to be satisfied together
	Rules   []Rule    // Rules the clauses were generated from
	Origins []int     // Origins[i] is the index in Rules of the rule Clauses[i] comes from
	Dropped []Dropped // Constraints that were left out
}

// NbVars returns the number of variables in the problem.
func (pb *Problem) NbVars() int { return pb.Vars.Len() }

// Rule returns the rule the i-th clause comes from.
func (pb *Problem) Rule(i int) Rule { return pb.Rules[pb.Origins[i]] }

// Trivial returns true if the problem contains an empty clause, i.e it is
// trivially unsatisfiable.
func (pb *Problem) Trivial() bool {
	for _, clause := range pb.Clauses {
		if len(clause) == 0 {
			return true
		}
	}
	return false
}

// Names returns the names of the positive literals of the given model, sorted.
// model[i] is the binding of var i+1.
func (pb *Problem) Names(model []bool) []string {
	var res []string
	for i, b := range model {
		if b {
			res = append(res, pb.Vars.Name(i+1))
		}
	}
	return res
}

// WriteDimacs writes the DIMACS CNF version of the problem on w.
// The names of features are associated with their DIMACS integer
// counterparts in comments, between the prolog and the set of clauses.
// For instance, if the feature "App" is associated with the index 1, there
// will be a comment line "c App=1".
func (pb *Problem) WriteDimacs(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", pb.NbVars(), len(pb.Clauses))
	for i, name := range pb.Vars.Names() {
		fmt.Fprintf(bw, "c %s=%d\n", name, i+1)
	}
	for _, clause := range pb.Clauses {
		strClause := make([]string, len(clause)+1)
		for i, lit := range clause {
			strClause[i] = strconv.Itoa(lit)
		}
		strClause[len(clause)] = "0"
		bw.WriteString(strings.Join(strClause, " "))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not write DIMACS output: %w", err)
	}
	return nil
}
