package fm

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlModel is the YAML layout of a model:
//
//	root:
//	  name: App
//	  features:
//	    - name: Core
//	      mandatory: true
//	  groups:
//	    - type: or
//	      features:
//	        - name: Search
//	        - name: Filter
//	constraints:
//	  - id: c1
//	    english: If Search is selected, Filter must be selected.
//
// Within a feature, plain children are listed before groups.
type yamlModel struct {
	Root        *yamlFeature `yaml:"root"`
	Constraints []Constraint `yaml:"constraints"`
}

type yamlFeature struct {
	Name      string        `yaml:"name"`
	Mandatory bool          `yaml:"mandatory"`
	Features  []yamlFeature `yaml:"features"`
	Groups    []yamlGroup   `yaml:"groups"`
}

type yamlGroup struct {
	Type     string        `yaml:"type"`
	Features []yamlFeature `yaml:"features"`
}

// ParseYAML parses a feature model written in YAML from r.
func ParseYAML(r io.Reader) (*Model, error) {
	var ym yamlModel
	if err := yaml.NewDecoder(r).Decode(&ym); err != nil {
		return nil, fmt.Errorf("could not parse YAML: %w", err)
	}
	if ym.Root == nil {
		return nil, ErrNoRoot
	}
	root, err := ym.Root.feature()
	if err != nil {
		return nil, err
	}
	m := &Model{Root: root, Constraints: ym.Constraints}
	for i := range m.Constraints {
		c := &m.Constraints[i]
		if c.ID == "" {
			c.ID = fmt.Sprint(i)
		}
		if c.Type == "" {
			c.Type = Unknown
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (yf *yamlFeature) feature() (*Feature, error) {
	if yf.Name == "" {
		return nil, ErrNamelessFeature
	}
	f := &Feature{Name: yf.Name, Mandatory: yf.Mandatory}
	for i := range yf.Features {
		sub, err := yf.Features[i].feature()
		if err != nil {
			return nil, fmt.Errorf("in feature %q: %w", f.Name, err)
		}
		f.Children = append(f.Children, sub)
	}
	for _, yg := range yf.Groups {
		gt, err := ParseGroupType(yg.Type)
		if err != nil {
			return nil, fmt.Errorf("in feature %q: %w", f.Name, err)
		}
		g := &Group{Type: gt}
		for i := range yg.Features {
			sub, err := yg.Features[i].feature()
			if err != nil {
				return nil, fmt.Errorf("in %s group of %q: %w", gt, f.Name, err)
			}
			g.Features = append(g.Features, sub)
		}
		f.Children = append(f.Children, g)
	}
	return f, nil
}

// Parse reads a model from r, choosing the format from the file name:
// ".yaml" and ".yml" files are read as YAML, anything else as XML.
func Parse(filename string, r io.Reader) (*Model, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseYAML(r)
	default:
		return ParseXML(r)
	}
}
