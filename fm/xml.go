package fm

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// element is a generic XML element: the feature model format is small and
// loosely specified, so it is decoded as a tree and then interpreted.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Text     string     `xml:",chardata"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) child(tag string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == tag {
			return &e.Children[i]
		}
	}
	return nil
}

// ParseXML parses a feature model from r.
// The document is either a <featureModel> wrapper containing the root
// <feature> and an optional <constraints> list, or a bare root <feature>.
// Any feature lacking a name attribute makes the whole parse fail.
func ParseXML(r io.Reader) (*Model, error) {
	var root element
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("could not parse XML: %w", err)
	}
	m := &Model{}
	switch root.XMLName.Local {
	case "feature":
		f, err := parseFeature(&root)
		if err != nil {
			return nil, err
		}
		m.Root = f
	case "featureModel":
		for i := range root.Children {
			if root.Children[i].XMLName.Local == "feature" {
				f, err := parseFeature(&root.Children[i])
				if err != nil {
					return nil, err
				}
				m.Root = f
				break
			}
		}
		if cs := root.child("constraints"); cs != nil {
			m.Constraints = parseConstraints(cs)
		}
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root.XMLName.Local)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseFeature(e *element) (*Feature, error) {
	name, ok := e.attr("name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: <feature> element without name attribute", ErrNamelessFeature)
	}
	f := &Feature{Name: strings.TrimSpace(name)}
	if v, ok := e.attr("mandatory"); ok {
		f.Mandatory = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "feature":
			sub, err := parseFeature(child)
			if err != nil {
				return nil, fmt.Errorf("in feature %q: %w", f.Name, err)
			}
			f.Children = append(f.Children, sub)
		case "group":
			typ, _ := child.attr("type")
			gt, err := ParseGroupType(typ)
			if err != nil {
				return nil, fmt.Errorf("in feature %q: %w", f.Name, err)
			}
			g := &Group{Type: gt}
			for j := range child.Children {
				if child.Children[j].XMLName.Local != "feature" {
					continue
				}
				sub, err := parseFeature(&child.Children[j])
				if err != nil {
					return nil, fmt.Errorf("in %s group of %q: %w", gt, f.Name, err)
				}
				g.Features = append(g.Features, sub)
			}
			if len(g.Features) > 0 {
				f.Children = append(f.Children, g)
			}
		}
	}
	return f, nil
}

func parseConstraints(e *element) []Constraint {
	var res []Constraint
	for i := range e.Children {
		ce := &e.Children[i]
		if ce.XMLName.Local != "constraint" {
			continue
		}
		c := Constraint{Type: Unknown}
		if id, ok := ce.attr("id"); ok && id != "" {
			c.ID = id
		} else {
			c.ID = strconv.Itoa(len(res))
		}
		if es := ce.child("englishStatement"); es != nil {
			c.English = strings.TrimSpace(es.Text)
		}
		if be := ce.child("booleanExpression"); be != nil {
			c.Expression = strings.TrimSpace(be.Text)
		}
		res = append(res, c)
	}
	return res
}
