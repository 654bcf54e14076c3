package cnf

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/featsat/fm"
)

// ErrNoFeatures is returned when a model has no feature at all.
var ErrNoFeatures = errors.New("model has no feature")

// Vars is a bijection between feature names and variable indices in [1, Len()].
type Vars struct {
	names []string       // names[i] is the name of var i+1
	ids   map[string]int // ids[name] is the var associated with name
}

// NewVars allocates a variable for each given name, in lexicographic order.
// Names must be unique and non-empty.
func NewVars(names []string) (*Vars, error) {
	if len(names) == 0 {
		return nil, ErrNoFeatures
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	vars := &Vars{names: sorted, ids: make(map[string]int, len(sorted))}
	for i, name := range sorted {
		if name == "" {
			return nil, fm.ErrNamelessFeature
		}
		if _, ok := vars.ids[name]; ok {
			return nil, fmt.Errorf("%w %q", fm.ErrDuplicateFeature, name)
		}
		vars.ids[name] = i + 1
	}
	return vars, nil
}

// Allocate returns the variables of all features of m.
func Allocate(m *fm.Model) (*Vars, error) {
	var names []string
	err := m.Walk(func(f, _ *fm.Feature, _ *fm.Group) error {
		if strings.TrimSpace(f.Name) == "" {
			return fm.ErrNamelessFeature
		}
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewVars(names)
}

// Len returns the number of variables.
func (v *Vars) Len() int { return len(v.names) }

// ID returns the variable associated with name.
func (v *Vars) ID(name string) (int, bool) {
	id, ok := v.ids[name]
	return id, ok
}

// Name returns the name of the given variable, or "" if there is no such variable.
// Negative literals are accepted.
func (v *Vars) Name(id int) string {
	if id < 0 {
		id = -id
	}
	if id == 0 || id > len(v.names) {
		return ""
	}
	return v.names[id-1]
}

// Names returns all names, sorted. The returned slice must not be modified.
func (v *Vars) Names() []string { return v.names }

// Resolve returns the variable of the feature called name.
// If there is no exact match, a case-insensitive match is looked for;
// it must be unique.
func (v *Vars) Resolve(name string) (int, error) {
	if id, ok := v.ids[name]; ok {
		return id, nil
	}
	found := 0
	for i, n := range v.names {
		if strings.EqualFold(n, name) {
			if found != 0 {
				return 0, fmt.Errorf("%w: %q is ambiguous", ErrUnknownFeature, name)
			}
			found = i + 1
		}
	}
	if found == 0 {
		return 0, fmt.Errorf("%w %q", ErrUnknownFeature, name)
	}
	return found, nil
}
