package fm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appXML = `<featureModel>
	<constraints>
		<constraint id="c1">
			<englishStatement>If Search is selected, Filter must be selected.</englishStatement>
		</constraint>
		<constraint>
			<booleanExpression>Core → App</booleanExpression>
		</constraint>
	</constraints>
	<feature name="App" mandatory="true">
		<feature name="Core" mandatory="true"/>
		<group type="or">
			<feature name="Search"/>
			<feature name="Filter"/>
		</group>
	</feature>
</featureModel>`

func TestParseXML(t *testing.T) {
	m, err := ParseXML(strings.NewReader(appXML))
	require.NoError(t, err)
	require.NotNil(t, m.Root)
	assert.Equal(t, "App", m.Root.Name)
	assert.True(t, m.Root.Mandatory)
	require.Len(t, m.Root.Children, 2)
	core, ok := m.Root.Children[0].(*Feature)
	require.True(t, ok)
	assert.Equal(t, "Core", core.Name)
	assert.True(t, core.Mandatory)
	g, ok := m.Root.Children[1].(*Group)
	require.True(t, ok)
	assert.Equal(t, Or, g.Type)
	require.Len(t, g.Features, 2)
	assert.False(t, g.Features[0].Mandatory)
	assert.Equal(t, []string{"App", "Core", "Search", "Filter"}, m.FeatureNames())

	require.Len(t, m.Constraints, 2)
	assert.Equal(t, "c1", m.Constraints[0].ID)
	assert.Equal(t, "If Search is selected, Filter must be selected.", m.Constraints[0].English)
	assert.Empty(t, m.Constraints[0].Expression)
	assert.Equal(t, Unknown, m.Constraints[0].Type)
	assert.Equal(t, "1", m.Constraints[1].ID)
	assert.Equal(t, "Core → App", m.Constraints[1].Expression)
}

func TestParseXMLBareFeature(t *testing.T) {
	m, err := ParseXML(strings.NewReader(`<feature name="Root"><group type="XOR"><feature name="A"/><feature name="B"/></group></feature>`))
	require.NoError(t, err)
	assert.Equal(t, Xor, m.Root.Children[0].(*Group).Type)
	assert.Empty(t, m.Constraints)
}

func TestParseXMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"nameless child", `<feature name="R"><feature mandatory="true"/></feature>`, ErrNamelessFeature},
		{"nameless group child", `<feature name="R"><group><feature name="A"/><feature/></group></feature>`, ErrNamelessFeature},
		{"nameless root", `<featureModel><feature/></featureModel>`, ErrNamelessFeature},
		{"duplicate", `<feature name="R"><feature name="A"/><group><feature name="A"/></group></feature>`, ErrDuplicateFeature},
		{"no root", `<featureModel><constraints/></featureModel>`, ErrNoRoot},
		{"bad group", `<feature name="R"><group type="and"><feature name="A"/></group></feature>`, ErrInvalidGroupType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseXML(strings.NewReader(tt.doc))
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader(`<feature name="R">`))
	assert.Error(t, err)
	_, err = ParseXML(strings.NewReader(`<model/>`))
	assert.Error(t, err)
}

const appYAML = `
root:
  name: App
  features:
    - name: Core
      mandatory: true
  groups:
    - type: xor
      features:
        - name: Search
        - name: Filter
constraints:
  - id: c1
    english: Search excludes Filter
  - expression: Core → App
`

func TestParseYAML(t *testing.T) {
	m, err := Parse("model.yaml", strings.NewReader(appYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"App", "Core", "Search", "Filter"}, m.FeatureNames())
	assert.Equal(t, Xor, m.Root.Children[1].(*Group).Type)
	require.Len(t, m.Constraints, 2)
	assert.Equal(t, "1", m.Constraints[1].ID)
	assert.Equal(t, Unknown, m.Constraints[0].Type)

	_, err = ParseYAML(strings.NewReader("root:\n  features:\n    - name: A\n"))
	assert.ErrorIs(t, err, ErrNamelessFeature)
}

func TestFind(t *testing.T) {
	m, err := ParseXML(strings.NewReader(appXML))
	require.NoError(t, err)
	assert.Equal(t, "Filter", m.Find("Filter").Name)
	assert.Nil(t, m.Find("Nope"))
}

func TestValidate(t *testing.T) {
	var m *Model
	assert.ErrorIs(t, m.Validate(), ErrNoRoot)
	m = &Model{Root: &Feature{Name: "R", Children: []Node{&Group{Type: Or}}}}
	assert.ErrorIs(t, m.Validate(), ErrEmptyGroup)
}
