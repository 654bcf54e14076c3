// Package export renders feature models for humans: as a propositional
// formula, as a Graphviz graph or as a tree ready to be displayed.
package export

import (
	"strings"

	"github.com/samber/lo"

	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/translate"
)

// Formula returns a propositional formula describing m.
// It is meant to be read, not solved: optional features are described by the
// tautology (parent ↔ (child ∨ ~child)). Constraints without a boolean
// expression are translated with tr, or with translate.Default if tr is nil;
// the ones that cannot be translated are left out.
func Formula(m *fm.Model, tr translate.Translator) string {
	if m == nil || m.Root == nil {
		return ""
	}
	formulas := []string{m.Root.Name}
	formulas = feature(formulas, m.Root)
	for _, c := range translate.Resolve(m.Constraints, tr) {
		if c.Expression != "" {
			formulas = append(formulas, "("+c.Expression+")")
		}
	}
	return strings.Join(formulas, " ∧ ")
}

func feature(formulas []string, f *fm.Feature) []string {
	for _, child := range f.Children {
		switch child := child.(type) {
		case *fm.Feature:
			if child.Mandatory {
				formulas = append(formulas, "("+child.Name+" → "+f.Name+")", "("+f.Name+" → "+child.Name+")")
			} else {
				formulas = append(formulas, "("+f.Name+" ↔ ("+child.Name+" ∨ ~"+child.Name+"))")
			}
			formulas = feature(formulas, child)
		case *fm.Group:
			formulas = group(formulas, f.Name, child)
			for _, gf := range child.Features {
				formulas = feature(formulas, gf)
			}
		}
	}
	return formulas
}

func group(formulas []string, parent string, g *fm.Group) []string {
	names := lo.Map(g.Features, func(f *fm.Feature, _ int) string { return f.Name })
	if g.Type == fm.Xor {
		alternatives := make([]string, len(names))
		for i, selected := range names {
			terms := []string{selected}
			for j, other := range names {
				if j != i {
					terms = append(terms, "~"+other)
				}
			}
			alternatives[i] = "(" + strings.Join(terms, " ∧ ") + ")"
		}
		formulas = append(formulas, "("+parent+" → ("+strings.Join(alternatives, " ∨ ")+"))")
	} else {
		formulas = append(formulas, "("+parent+" → ("+strings.Join(names, " ∨ ")+"))")
	}
	for _, name := range names {
		formulas = append(formulas, "("+name+" → "+parent+")")
	}
	return formulas
}
