package domain

import (
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindUnderworld Kind = "uwsc"
	KindFissure    Kind = "fowsc"
	KindDoA        Kind = "doa"
	KindUrgoz      Kind = "urgoz"
	KindDeep       Kind = "deep"
)

// Template fixes the ordered role labels of a party kind. Labels may repeat.
type Template struct {
	Kind  Kind
	Name  string
	Roles []string
}

func (t Template) Size() int {
	return len(t.Roles)
}

func (t Template) Validate() error {
	if strings.TrimSpace(string(t.Kind)) == "" {
		return fmt.Errorf("kind is required")
	}
	if len(t.Roles) == 0 {
		return fmt.Errorf("template %q has no roles", t.Kind)
	}
	for i, role := range t.Roles {
		if strings.TrimSpace(role) == "" {
			return fmt.Errorf("template %q role %d is blank", t.Kind, i)
		}
	}
	return nil
}

type Catalog struct {
	byKind map[Kind]Template
}

func NewCatalog(templates ...Template) (Catalog, error) {
	byKind := make(map[Kind]Template, len(templates))
	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return Catalog{}, err
		}
		if _, ok := byKind[tmpl.Kind]; ok {
			return Catalog{}, fmt.Errorf("duplicate template %q", tmpl.Kind)
		}
		tmpl.Roles = append([]string(nil), tmpl.Roles...)
		byKind[tmpl.Kind] = tmpl
	}
	return Catalog{byKind: byKind}, nil
}

func (c Catalog) Lookup(kind Kind) (Template, error) {
	tmpl, ok := c.byKind[kind]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return tmpl, nil
}

// Templates returns every template sorted by kind.
func (c Catalog) Templates() []Template {
	templates := make([]Template, 0, len(c.byKind))
	for _, tmpl := range c.byKind {
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Kind < templates[j].Kind
	})
	return templates
}

func DefaultCatalog() Catalog {
	catalog, err := NewCatalog(
		Template{
			Kind:  KindUnderworld,
			Name:  "Underworld Speed Clear",
			Roles: []string{"T1", "T2", "T3", "T4", "Spiker", "Emo", "Pinion", "LT"},
		},
		Template{
			Kind:  KindFissure,
			Name:  "Fissure of Woe Speed Clear",
			Roles: []string{"T1", "T2", "T3", "T4", "Emo", "Spiker", "Spiker", "Spiker"},
		},
		Template{
			Kind:  KindDoA,
			Name:  "Domain of Anguish",
			Roles: []string{"Tank", "Emo", "Bonder", "Healer", "Spiker", "Spiker", "Spiker", "Spiker"},
		},
		Template{
			Kind: KindUrgoz,
			Name: "Urgoz's Warren",
			Roles: []string{
				"Tank", "Emo", "Bonder", "Healer", "Healer", "Prot",
				"Spiker", "Spiker", "Spiker", "Spiker", "Runner", "Kiter",
			},
		},
		Template{
			Kind: KindDeep,
			Name: "The Deep",
			Roles: []string{
				"Tank", "Emo", "Bonder", "Healer", "Healer", "Prot",
				"Spiker", "Spiker", "Spiker", "Spiker", "Cryway", "Kiter",
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return catalog
}
