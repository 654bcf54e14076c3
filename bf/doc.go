// Package bf represents propositional formulas over named variables, as used
// in cross-tree constraints of feature models, and turns them into clauses.
//
// Formulas are written with the usual logical symbols, or their ASCII
// counterparts:
//
//	~a, ¬a, !a          negation
//	a ∧ b, a & b        conjunction
//	a ∨ b, a | b        disjunction
//	a → b, a -> b       implication
//	a ↔ b, a <-> b      equivalence
//
// For instance, the constraint "Search requires Filter" is written
//
//	Search → Filter
//
// and "Search excludes Filter" is written
//
//	~(Search ∧ Filter)
//
// Variable names may contain spaces: consecutive words are read as a single
// name, so "Credit Card → Payment" has two variables, "Credit Card" and
// "Payment".
//
// Unlike a SAT solver front-end, this package does not introduce auxiliary
// variables when building clauses: the formula is put in negation normal form
// and disjunctions are distributed over conjunctions. Constraints are short,
// and keeping the variable space equal to the set of features is what allows
// models to be read back as feature selections. The implication a → b thus
// always yields the single clause {¬a, b}, and ¬(a ∧ b) the single clause
// {¬a, ¬b}.
package bf
