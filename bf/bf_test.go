package bf

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func ids(names ...string) func(string) (int, error) {
	return func(name string) (int, error) {
		for i, n := range names {
			if n == name {
				return i + 1, nil
			}
		}
		return 0, fmt.Errorf("unknown variable %q", name)
	}
}

func TestClauses(t *testing.T) {
	id := ids("a", "b", "c", "d")
	tests := []struct {
		expr string
		want [][]int
	}{
		{"a → b", [][]int{{-1, 2}}},
		{"~(a ∧ b)", [][]int{{-1, -2}}},
		{"a ∧ b", [][]int{{1}, {2}}},
		{"a ∨ b ∨ c", [][]int{{1, 2, 3}}},
		{"a ↔ b", [][]int{{-1, 2}, {1, -2}}},
		{"a ∨ (b ∧ c)", [][]int{{1, 2}, {1, 3}}},
		{"(a ∧ b) ∨ (c ∧ d)", [][]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}}},
		{"~(a → b)", [][]int{{1}, {-2}}},
		{"a → (b ∧ ~c)", [][]int{{-1, 2}, {-1, -3}}},
		{"a ∨ ~a", [][]int{}},
		{"a ∨ a", [][]int{{1}}},
		{"⊤", nil},
		{"⊥", [][]int{{}}},
		{"a ∧ ⊥", [][]int{{}}},
	}
	for _, tt := range tests {
		f, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("could not parse %q: %v", tt.expr, err)
		}
		got, err := Clauses(f, id)
		if err != nil {
			t.Errorf("could not get clauses of %q: %v", tt.expr, err)
			continue
		}
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("clauses of %q: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestClausesUnknownVar(t *testing.T) {
	f, _ := Parse("a → z")
	if _, err := Clauses(f, ids("a")); err == nil {
		t.Errorf("expected an error for unknown variable")
	}
}

func TestClausesTooLarge(t *testing.T) {
	// (x1 ∧ y1) ∨ ... ∨ (x17 ∧ y17) expands to 2^17 clauses.
	var subs []Formula
	var names []string
	for i := 0; i < 17; i++ {
		x, y := fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i)
		names = append(names, x, y)
		subs = append(subs, And(Var(x), Var(y)))
	}
	_, err := Clauses(Or(subs...), ids(names...))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestEval(t *testing.T) {
	f := Implies(And(Var("a"), Not(Var("b"))), Eq(Var("c"), Var("a")))
	model := map[string]bool{"a": true, "b": false, "c": true}
	if !f.Eval(model) {
		t.Errorf("%s should be true in %v", f, model)
	}
	model["c"] = false
	if f.Eval(model) {
		t.Errorf("%s should be false in %v", f, model)
	}
	if !Xor(Var("a"), Var("c")).Eval(model) {
		t.Errorf("xor should be true in %v", model)
	}
}

func TestRename(t *testing.T) {
	f, _ := Parse("search → ~(filter ∧ ads)")
	g := Rename(f, func(name string) string { return "F_" + name })
	const expected = "F_search → ~(F_filter ∧ F_ads)"
	if g.String() != expected {
		t.Errorf("expected %q, got %q", expected, g.String())
	}
}

func TestString(t *testing.T) {
	f := And(Or(Var("a"), Not(Var("b"))), Not(Var("c")))
	const expected = "(a ∨ ~b) ∧ ~c"
	if f.String() != expected {
		t.Errorf("string representation of formula not as expected: wanted %q, got %q", expected, f.String())
	}
}

func ExampleClauses() {
	f := Implies(Var("Search"), Var("Filter"))
	clauses, _ := Clauses(f, ids("Filter", "Search"))
	fmt.Println(f, clauses)
	// Output: Search → Filter [[-2 1]]
}
