package fm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRoot is returned when a model has no root feature.
	ErrNoRoot = errors.New("model has no root feature")

	// ErrNamelessFeature is returned when a feature has no name.
	ErrNamelessFeature = errors.New("feature has no name")

	// ErrDuplicateFeature is returned when two features share the same name.
	ErrDuplicateFeature = errors.New("duplicate feature name")

	// ErrEmptyGroup is returned when a group holds no feature.
	ErrEmptyGroup = errors.New("group has no feature")

	// ErrInvalidGroupType is returned for groups that are neither OR nor XOR.
	ErrInvalidGroupType = errors.New("invalid group type")
)

// A GroupType is the kind of a group: OR or XOR.
type GroupType string

const (
	// Or groups require at least one of their features when the parent is selected.
	Or GroupType = "or"
	// Xor groups require exactly one of their features when the parent is selected.
	Xor GroupType = "xor"
)

// ParseGroupType returns the GroupType described by s, case-insensitively.
// An empty string means Or.
func ParseGroupType(s string) (GroupType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "or":
		return Or, nil
	case "xor", "alternative", "alt":
		return Xor, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidGroupType, s)
	}
}

// A Node is a child in the feature tree: either a *Feature or a *Group.
type Node interface {
	node()
}

// A Feature is a named node of the tree.
// Mandatory is only meaningful relative to the feature's parent.
type Feature struct {
	Name      string
	Mandatory bool
	Children  []Node
}

func (*Feature) node() {}

// A Group gathers sibling features under their parent.
type Group struct {
	Type     GroupType
	Features []*Feature
}

func (*Group) node() {}

// A ConstraintType is an advisory classification of a constraint.
type ConstraintType string

const (
	Requires ConstraintType = "requires"
	Excludes ConstraintType = "excludes"
	Unknown  ConstraintType = "unknown"
)

// A Constraint is a cross-tree rule.
// English is free text that can be translated into a boolean expression;
// Expression, when not empty, takes precedence over it.
type Constraint struct {
	ID         string         `json:"id" yaml:"id"`
	English    string         `json:"englishStatement,omitempty" yaml:"english,omitempty"`
	Expression string         `json:"booleanExpression,omitempty" yaml:"expression,omitempty"`
	Type       ConstraintType `json:"type" yaml:"type,omitempty"`
}

// A Model is a feature tree along with its cross-tree constraints.
type Model struct {
	Root        *Feature
	Constraints []Constraint
}

// Walk calls fn on each feature of the tree, depth-first, in document order.
// parent is nil for the root. group is the group f belongs to, if any.
// If fn returns an error, the walk stops and the error is returned.
func (m *Model) Walk(fn func(f, parent *Feature, group *Group) error) error {
	if m.Root == nil {
		return ErrNoRoot
	}
	return walk(m.Root, nil, nil, fn)
}

func walk(f, parent *Feature, group *Group, fn func(f, parent *Feature, group *Group) error) error {
	if err := fn(f, parent, group); err != nil {
		return err
	}
	for _, child := range f.Children {
		switch child := child.(type) {
		case *Feature:
			if err := walk(child, f, nil, fn); err != nil {
				return err
			}
		case *Group:
			for _, gf := range child.Features {
				if err := walk(gf, f, child, fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FeatureNames returns the name of every feature, in document order.
func (m *Model) FeatureNames() []string {
	var names []string
	_ = m.Walk(func(f, _ *Feature, _ *Group) error {
		names = append(names, f.Name)
		return nil
	})
	return names
}

// Find returns the feature called name, or nil.
func (m *Model) Find(name string) *Feature {
	var res *Feature
	_ = m.Walk(func(f, _ *Feature, _ *Group) error {
		if f.Name == name {
			res = f
			return errStop
		}
		return nil
	})
	return res
}

var errStop = errors.New("stop")

// Validate checks the structural invariants of the model:
// there is a root, every feature is named, names are unique
// and groups are well-formed.
func (m *Model) Validate() error {
	if m == nil || m.Root == nil {
		return ErrNoRoot
	}
	seen := make(map[string]bool)
	return m.Walk(func(f, parent *Feature, group *Group) error {
		if strings.TrimSpace(f.Name) == "" {
			if parent != nil {
				return fmt.Errorf("%w (child of %q)", ErrNamelessFeature, parent.Name)
			}
			return ErrNamelessFeature
		}
		if seen[f.Name] {
			return fmt.Errorf("%w %q", ErrDuplicateFeature, f.Name)
		}
		seen[f.Name] = true
		for _, child := range f.Children {
			switch child := child.(type) {
			case *Group:
				if len(child.Features) == 0 {
					return fmt.Errorf("%w under %q", ErrEmptyGroup, f.Name)
				}
				if child.Type != Or && child.Type != Xor {
					return fmt.Errorf("%w %q under %q", ErrInvalidGroupType, child.Type, f.Name)
				}
			case nil:
				return fmt.Errorf("nil child under %q", f.Name)
			}
		}
		return nil
	})
}
