package ast

import "github.com/Protocol-Lattice/sdlprint/token"

// Node is the base interface for all AST nodes.
type Node interface {
	// Position returns where the node starts in the source.
	Position() token.Position
}

// Document represents a complete schema document.
// Definitions appear in source order; the printer emits them in that order.
type Document struct {
	Definitions []Definition
}

// Definition is one top-level declaration of a schema document.
//
// The set of implementations is closed: *SchemaDefinition,
// *ScalarTypeDefinition, *ObjectTypeDefinition, *InterfaceTypeDefinition,
// *UnionTypeDefinition, *EnumTypeDefinition, *InputObjectTypeDefinition,
// *DirectiveDefinition and *Extension.
type Definition interface {
	Node
	// DefinitionName returns the declared name, or "" for a schema definition.
	DefinitionName() string
	definitionNode()
}

// DescriptionStyle records how a description was written in the source.
type DescriptionStyle int

const (
	StringStyle  DescriptionStyle = iota // "single line"
	BlockStyle                           // """block string"""
	CommentStyle                         // # comment lines
)

// Description is the documentation attached to a definition, field,
// argument or enum value.
type Description struct {
	Value string
	Style DescriptionStyle
}

// Directive is an applied directive, e.g. @key(fields: "id").
type Directive struct {
	Name      string
	Arguments []*Argument
	Pos       token.Position
}

// Position returns where the directive starts.
func (d *Directive) Position() token.Position { return d.Pos }

// Argument is a name: value pair of a directive application.
type Argument struct {
	Name  string
	Value Value
	Pos   token.Position
}

// Position returns where the argument starts.
func (a *Argument) Position() token.Position { return a.Pos }

// SchemaDefinition represents "schema { query: Query }".
type SchemaDefinition struct {
	Description    *Description
	Directives     []*Directive
	OperationTypes []*OperationTypeDefinition
	Pos            token.Position
}

// OperationTypeDefinition binds an operation to its root type.
type OperationTypeDefinition struct {
	Operation string // "query", "mutation" or "subscription"
	Type      string
	Pos       token.Position
}

// ScalarTypeDefinition represents "scalar Name".
type ScalarTypeDefinition struct {
	Description *Description
	Name        string
	Directives  []*Directive
	Pos         token.Position
}

// ObjectTypeDefinition represents "type Name implements A & B { ... }".
type ObjectTypeDefinition struct {
	Description *Description
	Name        string
	Interfaces  []string
	Directives  []*Directive
	Fields      []*FieldDefinition
	Pos         token.Position
}

// InterfaceTypeDefinition represents "interface Name { ... }".
type InterfaceTypeDefinition struct {
	Description *Description
	Name        string
	Interfaces  []string
	Directives  []*Directive
	Fields      []*FieldDefinition
	Pos         token.Position
}

// UnionTypeDefinition represents "union Name = A | B".
type UnionTypeDefinition struct {
	Description *Description
	Name        string
	Directives  []*Directive
	Types       []string
	Pos         token.Position
}

// EnumTypeDefinition represents "enum Name { A B }".
type EnumTypeDefinition struct {
	Description *Description
	Name        string
	Directives  []*Directive
	Values      []*EnumValueDefinition
	Pos         token.Position
}

// InputObjectTypeDefinition represents "input Name { ... }".
type InputObjectTypeDefinition struct {
	Description *Description
	Name        string
	Directives  []*Directive
	Fields      []*InputValueDefinition
	Pos         token.Position
}

// DirectiveDefinition represents "directive @name(args) repeatable on A | B".
type DirectiveDefinition struct {
	Description *Description
	Name        string
	Arguments   []*InputValueDefinition
	Repeatable  bool
	Locations   []string
	Pos         token.Position
}

// Extension represents "extend <definition>". Definition is never a
// *DirectiveDefinition or another *Extension, and carries no description.
type Extension struct {
	Definition Definition
	Pos        token.Position
}

// FieldDefinition is a field of an object or interface type.
type FieldDefinition struct {
	Description *Description
	Name        string
	Arguments   []*InputValueDefinition
	Type        Type
	Directives  []*Directive
	Pos         token.Position
}

// Position returns where the field starts.
func (f *FieldDefinition) Position() token.Position { return f.Pos }

// InputValueDefinition is an argument definition or an input object field.
type InputValueDefinition struct {
	Description  *Description
	Name         string
	Type         Type
	DefaultValue Value // nil when absent
	Directives   []*Directive
	Pos          token.Position
}

// Position returns where the input value starts.
func (v *InputValueDefinition) Position() token.Position { return v.Pos }

// EnumValueDefinition is one value of an enum type.
type EnumValueDefinition struct {
	Description *Description
	Name        string
	Directives  []*Directive
	Pos         token.Position
}

// Position returns where the enum value starts.
func (v *EnumValueDefinition) Position() token.Position { return v.Pos }

func (d *SchemaDefinition) Position() token.Position          { return d.Pos }
func (d *ScalarTypeDefinition) Position() token.Position      { return d.Pos }
func (d *ObjectTypeDefinition) Position() token.Position      { return d.Pos }
func (d *InterfaceTypeDefinition) Position() token.Position   { return d.Pos }
func (d *UnionTypeDefinition) Position() token.Position       { return d.Pos }
func (d *EnumTypeDefinition) Position() token.Position        { return d.Pos }
func (d *InputObjectTypeDefinition) Position() token.Position { return d.Pos }
func (d *DirectiveDefinition) Position() token.Position       { return d.Pos }
func (d *Extension) Position() token.Position                 { return d.Pos }

func (d *SchemaDefinition) DefinitionName() string          { return "" }
func (d *ScalarTypeDefinition) DefinitionName() string      { return d.Name }
func (d *ObjectTypeDefinition) DefinitionName() string      { return d.Name }
func (d *InterfaceTypeDefinition) DefinitionName() string   { return d.Name }
func (d *UnionTypeDefinition) DefinitionName() string       { return d.Name }
func (d *EnumTypeDefinition) DefinitionName() string        { return d.Name }
func (d *InputObjectTypeDefinition) DefinitionName() string { return d.Name }
func (d *DirectiveDefinition) DefinitionName() string       { return d.Name }
func (d *Extension) DefinitionName() string                 { return d.Definition.DefinitionName() }

func (*SchemaDefinition) definitionNode()          {}
func (*ScalarTypeDefinition) definitionNode()      {}
func (*ObjectTypeDefinition) definitionNode()      {}
func (*InterfaceTypeDefinition) definitionNode()   {}
func (*UnionTypeDefinition) definitionNode()       {}
func (*EnumTypeDefinition) definitionNode()        {}
func (*InputObjectTypeDefinition) definitionNode() {}
func (*DirectiveDefinition) definitionNode()       {}
func (*Extension) definitionNode()                 {}
