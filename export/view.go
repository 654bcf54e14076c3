package export

import (
	"github.com/samber/lo"

	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/translate"
)

// Node types in a View.
const (
	FeatureNode = "feature"
	GroupNode   = "group"
)

// A Node is a feature or a group, as displayed in a checkbox tree.
type Node struct {
	Type      string       `json:"type"`
	Name      string       `json:"name,omitempty"`
	Mandatory bool         `json:"mandatory"`
	GroupType fm.GroupType `json:"group_type,omitempty"`
	Children  []*Node      `json:"children"`
}

// A View is a feature model prepared for interactive display.
// Dependencies maps each feature to the features it requires.
type View struct {
	Model             *Node               `json:"visualization_model"`
	XorGroups         [][]string          `json:"xor_groups"`
	MandatoryFeatures []string            `json:"mandatory_features"`
	Dependencies      map[string][]string `json:"dependencies"`
}

// NewView returns the view of m. Constraints are resolved with tr, or with
// translate.Default if tr is nil.
func NewView(m *fm.Model, tr translate.Translator) *View {
	v := &View{
		XorGroups:         [][]string{},
		MandatoryFeatures: []string{},
		Dependencies:      map[string][]string{},
	}
	if m == nil || m.Root == nil {
		return v
	}
	v.Model = v.node(m.Root)
	for _, c := range translate.Resolve(m.Constraints, tr) {
		if c.Type != fm.Requires {
			continue
		}
		if a, b, ok := binary(c); ok {
			v.Dependencies[a] = append(v.Dependencies[a], b)
		}
	}
	return v
}

func (v *View) node(f *fm.Feature) *Node {
	n := &Node{Type: FeatureNode, Name: f.Name, Mandatory: f.Mandatory, Children: []*Node{}}
	if f.Mandatory {
		v.MandatoryFeatures = append(v.MandatoryFeatures, f.Name)
	}
	for _, child := range f.Children {
		switch child := child.(type) {
		case *fm.Feature:
			n.Children = append(n.Children, v.node(child))
		case *fm.Group:
			g := &Node{Type: GroupNode, GroupType: child.Type, Children: []*Node{}}
			if child.Type == fm.Xor {
				v.XorGroups = append(v.XorGroups, lo.Map(child.Features, func(f *fm.Feature, _ int) string { return f.Name }))
			}
			for _, gf := range child.Features {
				g.Children = append(g.Children, v.node(gf))
			}
			n.Children = append(n.Children, g)
		}
	}
	return n
}
