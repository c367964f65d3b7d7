package ast

import "github.com/Protocol-Lattice/sdlprint/token"

// Type is a type reference: *NamedType, *ListType or *NonNullType.
// Wrappers always hold exactly one inner type; "[String!]!" is
// NonNull(List(NonNull(Named String))).
type Type interface {
	Node
	typeNode()
}

// NamedType references a type by name.
type NamedType struct {
	Name string
	Pos  token.Position
}

// ListType is "[Elem]".
type ListType struct {
	Elem Type
	Pos  token.Position
}

// NonNullType is "Elem!". Elem is never a *NonNullType.
type NonNullType struct {
	Elem Type
	Pos  token.Position
}

func (t *NamedType) Position() token.Position   { return t.Pos }
func (t *ListType) Position() token.Position    { return t.Pos }
func (t *NonNullType) Position() token.Position { return t.Pos }

func (*NamedType) typeNode()   {}
func (*ListType) typeNode()    {}
func (*NonNullType) typeNode() {}
