package link

import (
	"fmt"
	"strings"
)

// Cardinality describes how many instances one side of a link admits
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Linkable is an entity type a business module exposes for link declarations.
// Module is the owning module ("company"), Entity the entity within it ("contact").
type Linkable struct {
	Module string `json:"module"`
	Entity string `json:"entity"`
}

// NewLinkable creates a linkable reference
func NewLinkable(module, entity string) Linkable {
	return Linkable{Module: module, Entity: entity}
}

// ParseLinkable parses the "module.entity" form returned by String
func ParseLinkable(s string) (Linkable, error) {
	module, entity, ok := strings.Cut(s, ".")
	if !ok || module == "" || entity == "" {
		return Linkable{}, fmt.Errorf("linkable %q must have the form module.entity", s)
	}
	return NewLinkable(module, entity), nil
}

// String returns "module.entity"
func (l Linkable) String() string {
	return l.Module + "." + l.Entity
}

// IsZero reports whether the reference is empty
func (l Linkable) IsZero() bool {
	return l.Module == "" && l.Entity == ""
}

func (l Linkable) side() Side {
	return Side{Linkable: l}
}

// Side is one end of a link. IsList marks the side as admitting many instances.
type Side struct {
	Linkable Linkable `json:"linkable"`
	IsList   bool     `json:"is_list"`
}

// Cardinality returns Many for list sides and One otherwise
func (s Side) Cardinality() Cardinality {
	if s.IsList {
		return Many
	}
	return One
}

func (s Side) side() Side {
	return s
}

// List marks a linkable as a list side
func List(l Linkable) Side {
	return Side{Linkable: l, IsList: true}
}

// Endpoint is accepted by Define: either a bare Linkable (single side)
// or an explicit Side record.
type Endpoint interface {
	side() Side
}
