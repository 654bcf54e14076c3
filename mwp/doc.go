// Package mwp computes minimum working products of a feature model, i.e
// valid configurations that have no valid strict subset.
//
// Minimal configurations are enumerated by repeatedly calling a SAT oracle,
// keeping the positive part of each model found, discarding configurations
// that include an already known one and blocking each model found before
// calling the oracle again. This ends when the oracle reports the problem
// unsatisfiable.
//
// The package also provides a way to find a product with as few features as
// possible, through MAXSAT, and to count all valid configurations, through
// binary decision diagrams.
package mwp
