/*
Package cnf compiles a feature model into a set of propositional clauses.

Each feature is associated with a variable. Variables are allocated by sorting
feature names and numbering them from 1, so that compiling the same model
always yields the same problem. A clause is a list of DIMACS-like literals: the
literal 3 means "feature #3 is selected", and -3 means it is not.

The following rules are encoded, in the order the tree is traversed
(depth-first, document order):

  - the root feature is selected: {root};
  - a mandatory child c of p is equivalent to its parent: {¬p, c} and {¬c, p};
  - an optional child c of p requires its parent: {¬c, p};
  - an OR group c1..ck under p: {¬p, c1, ..., ck}, and {¬ci, p} for each child;
  - a XOR group: same as OR, plus {¬ci, ¬cj} for each pair i < j;
  - each cross-tree constraint: the clauses of its boolean expression.

Constraints that have no expression are translated from their English
statement. Those that cannot be translated are dropped and listed in
Problem.Dropped, along with translated expressions that do not make sense for
the model. Invalid expressions given explicitly are errors.

Compilation never calls a solver.
*/
package cnf
