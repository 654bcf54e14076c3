package export

import (
	"fmt"
	"strings"

	"github.com/crillab/featsat/bf"
	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/translate"
)

// Dot returns a Graphviz DOT representation of m.
// Mandatory features end with a filled circle, optional ones with an empty
// one. Groups are drawn as small triangles labelled with their type.
// Requirements between two features are drawn as dashed blue edges,
// exclusions as dashed red edges; other constraints are listed in a note.
func Dot(m *fm.Model, tr translate.Translator) string {
	var sb strings.Builder
	sb.WriteString("digraph FeatureModel {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=rounded];\n")
	sb.WriteString("\n")
	if m == nil || m.Root == nil {
		sb.WriteString("}\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("  %q [style=\"rounded,bold\"];\n", m.Root.Name))
	nbGroups := 0
	_ = m.Walk(func(f, parent *fm.Feature, g *fm.Group) error {
		for _, child := range f.Children {
			switch child := child.(type) {
			case *fm.Feature:
				arrow := "odot"
				if child.Mandatory {
					arrow = "dot"
				}
				sb.WriteString(fmt.Sprintf("  %q -> %q [arrowhead=%s];\n", f.Name, child.Name, arrow))
			case *fm.Group:
				nbGroups++
				id := fmt.Sprintf("group%d", nbGroups)
				sb.WriteString(fmt.Sprintf("  %s [shape=triangle, style=solid, label=%q, fontsize=8, width=0.3, height=0.3];\n", id, string(child.Type)))
				sb.WriteString(fmt.Sprintf("  %q -> %s [arrowhead=none];\n", f.Name, id))
				for _, gf := range child.Features {
					sb.WriteString(fmt.Sprintf("  %s -> %q;\n", id, gf.Name))
				}
			}
		}
		return nil
	})
	var others []string
	for _, c := range translate.Resolve(m.Constraints, tr) {
		if c.Expression == "" {
			continue
		}
		if a, b, ok := binary(c); ok {
			color := "blue"
			if c.Type == fm.Excludes {
				color = "red"
			}
			sb.WriteString(fmt.Sprintf("  %q -> %q [style=dashed, color=%s, constraint=false, label=%q];\n", a, b, color, c.ID))
			continue
		}
		others = append(others, c.ID+": "+c.Expression)
	}
	if len(others) > 0 {
		sb.WriteString(fmt.Sprintf("  constraints [shape=note, style=solid, label=%q];\n", strings.Join(others, "\n")))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// binary returns the two features of a requires or excludes constraint
// between two features only.
func binary(c fm.Constraint) (a, b string, ok bool) {
	if c.Type != fm.Requires && c.Type != fm.Excludes {
		return "", "", false
	}
	f, err := bf.Parse(c.Expression)
	if err != nil {
		return "", "", false
	}
	vars := bf.Vars(f)
	if len(vars) != 2 {
		return "", "", false
	}
	var canonical string
	if c.Type == fm.Requires {
		canonical = vars[0] + " → " + vars[1]
	} else {
		canonical = "~(" + vars[0] + " ∧ " + vars[1] + ")"
	}
	if f.String() != canonical {
		return "", "", false
	}
	return vars[0], vars[1], true
}
