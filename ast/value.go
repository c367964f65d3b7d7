package ast

import "github.com/Protocol-Lattice/sdlprint/token"

// Value is a constant value literal used for default values and directive
// arguments. Implementations: *IntValue, *FloatValue, *StringValue,
// *BooleanValue, *NullValue, *EnumValue, *ListValue and *ObjectValue.
type Value interface {
	Node
	valueNode()
}

// IntValue keeps the literal as written, e.g. "-42".
type IntValue struct {
	Literal string
	Pos     token.Position
}

// FloatValue keeps the literal as written, e.g. "1.5e3".
type FloatValue struct {
	Literal string
	Pos     token.Position
}

// StringValue holds the decoded string; Block marks """block strings""".
type StringValue struct {
	Value string
	Block bool
	Pos   token.Position
}

// BooleanValue is true or false.
type BooleanValue struct {
	Value bool
	Pos   token.Position
}

// NullValue is null.
type NullValue struct {
	Pos token.Position
}

// EnumValue is a bare name other than true, false and null.
type EnumValue struct {
	Name string
	Pos  token.Position
}

// ListValue is "[v1, v2]".
type ListValue struct {
	Values []Value
	Pos    token.Position
}

// ObjectValue is "{k1: v1, k2: v2}". Keys are unique and kept in source order.
type ObjectValue struct {
	Fields []*ObjectField
	Pos    token.Position
}

// ObjectField is one key of an object literal.
type ObjectField struct {
	Name  string
	Value Value
	Pos   token.Position
}

// Field returns the value stored under name.
func (o *ObjectValue) Field(name string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (v *IntValue) Position() token.Position     { return v.Pos }
func (v *FloatValue) Position() token.Position   { return v.Pos }
func (v *StringValue) Position() token.Position  { return v.Pos }
func (v *BooleanValue) Position() token.Position { return v.Pos }
func (v *NullValue) Position() token.Position    { return v.Pos }
func (v *EnumValue) Position() token.Position    { return v.Pos }
func (v *ListValue) Position() token.Position    { return v.Pos }
func (v *ObjectValue) Position() token.Position  { return v.Pos }

func (*IntValue) valueNode()     {}
func (*FloatValue) valueNode()   {}
func (*StringValue) valueNode()  {}
func (*BooleanValue) valueNode() {}
func (*NullValue) valueNode()    {}
func (*EnumValue) valueNode()    {}
func (*ListValue) valueNode()    {}
func (*ObjectValue) valueNode()  {}
