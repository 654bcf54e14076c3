package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/featsat/fm"
	"github.com/crillab/featsat/translate"
)

func appModel(constraints ...fm.Constraint) *fm.Model {
	return &fm.Model{
		Root: &fm.Feature{
			Name:      "App",
			Mandatory: true,
			Children: []fm.Node{
				&fm.Feature{Name: "Core", Mandatory: true},
				&fm.Group{Type: fm.Or, Features: []*fm.Feature{{Name: "Search"}, {Name: "Filter"}}},
			},
		},
		Constraints: constraints,
	}
}

func xorModel() *fm.Model {
	return &fm.Model{Root: &fm.Feature{
		Name: "Root",
		Children: []fm.Node{
			&fm.Group{Type: fm.Xor, Features: []*fm.Feature{{Name: "A", Children: []fm.Node{&fm.Feature{Name: "A1"}}}, {Name: "B"}}},
			&fm.Feature{Name: "Opt"},
		},
	}}
}

func TestFormula(t *testing.T) {
	m := appModel(
		fm.Constraint{ID: "c1", English: "If Search is selected, Filter must be selected."},
		fm.Constraint{ID: "c2", English: "Nothing to see here."},
		fm.Constraint{ID: "c3", Expression: "~(Core ∧ Search)"},
	)
	expected := "App ∧ (Core → App) ∧ (App → Core) ∧ (App → (Search ∨ Filter)) ∧ (Search → App) ∧ (Filter → App)" +
		" ∧ (Search → Filter) ∧ (~(Core ∧ Search))"
	assert.Equal(t, expected, Formula(m, nil))
	// The model is left untouched
	assert.Empty(t, m.Constraints[0].Expression)
}

func TestFormulaXor(t *testing.T) {
	expected := "Root ∧ (Root → ((A ∧ ~B) ∨ (B ∧ ~A))) ∧ (A → Root) ∧ (B → Root) ∧ (A ↔ (A1 ∨ ~A1)) ∧ (Root ↔ (Opt ∨ ~Opt))"
	assert.Equal(t, expected, Formula(xorModel(), nil))
}

func TestFormulaNoTranslation(t *testing.T) {
	never := translate.Func(func(string) (string, bool) { return "", false })
	m := appModel(fm.Constraint{ID: "c1", English: "Search requires Filter"})
	assert.NotContains(t, Formula(m, never), "Search → Filter")
	assert.Contains(t, Formula(m, nil), "(Search → Filter)")
	assert.Equal(t, "", Formula(&fm.Model{}, nil))
}

func TestDot(t *testing.T) {
	m := appModel(
		fm.Constraint{ID: "c1", English: "Search requires Filter"},
		fm.Constraint{ID: "c2", Expression: "~(Core ∧ Search)"},
		fm.Constraint{ID: "c3", Expression: "Core → Search ∨ Filter"},
	)
	dot := Dot(m, nil)
	assert.True(t, strings.HasPrefix(dot, "digraph FeatureModel {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `"App" -> "Core" [arrowhead=dot];`)
	assert.Contains(t, dot, `group1 [shape=triangle, style=solid, label="or"`)
	assert.Contains(t, dot, `"App" -> group1 [arrowhead=none];`)
	assert.Contains(t, dot, `group1 -> "Search";`)
	assert.Contains(t, dot, `"Search" -> "Filter" [style=dashed, color=blue, constraint=false, label="c1"];`)
	assert.Contains(t, dot, `"Core" -> "Search" [style=dashed, color=red, constraint=false, label="c2"];`)
	assert.Contains(t, dot, `constraints [shape=note`)
	assert.Contains(t, dot, `c3: Core → Search ∨ Filter`)

	dot = Dot(xorModel(), nil)
	assert.Contains(t, dot, `"Root" -> "Opt" [arrowhead=odot];`)
	assert.Contains(t, dot, `label="xor"`)
	assert.Contains(t, dot, `"A" -> "A1" [arrowhead=odot];`)
	assert.NotContains(t, dot, "constraints")
}

func TestView(t *testing.T) {
	m := appModel(
		fm.Constraint{ID: "c1", English: "If Search is selected, Filter must be selected."},
		fm.Constraint{ID: "c2", Expression: "Search → Core"},
		fm.Constraint{ID: "c3", Expression: "~(Core ∧ Search)"},
	)
	v := NewView(m, nil)
	require.NotNil(t, v.Model)
	assert.Equal(t, FeatureNode, v.Model.Type)
	require.Len(t, v.Model.Children, 2)
	assert.Equal(t, GroupNode, v.Model.Children[1].Type)
	assert.Equal(t, fm.Or, v.Model.Children[1].GroupType)
	assert.Equal(t, []string{"App", "Core"}, v.MandatoryFeatures)
	assert.Empty(t, v.XorGroups)
	assert.Equal(t, map[string][]string{"Search": {"Filter", "Core"}}, v.Dependencies)

	v = NewView(xorModel(), nil)
	assert.Equal(t, [][]string{{"A", "B"}}, v.XorGroups)
	assert.Empty(t, v.MandatoryFeatures)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"visualization_model":{"type":"feature","name":"Root","mandatory":false,"children":[{"type":"group","mandatory":false,"group_type":"xor"`)
	assert.Contains(t, string(data), `"xor_groups":[["A","B"]]`)
	assert.Contains(t, string(data), `"dependencies":{}`)
}
