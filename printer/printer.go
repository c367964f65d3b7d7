// Package printer renders a schema document in canonical form.
//
// The output is deterministic: printing the same document twice yields the
// same bytes, and parsing printed output and printing it again is a fixed
// point. The printer performs no semantic validation.
package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Protocol-Lattice/sdlprint/ast"
)

const indentUnit = "  "

// Layout defaults used for zero Options fields.
const (
	DefaultMaxWidth    = 80
	DefaultInlineLimit = 3
)

// Options tune the layout thresholds. Zero values select the defaults.
type Options struct {
	// MaxWidth is the line width past which argument lists, directive
	// arguments and union members are broken one per line.
	MaxWidth int
	// InlineLimit is the largest number of scalar elements a list or
	// object literal may hold and still print on a single line.
	InlineLimit int
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.InlineLimit <= 0 {
		o.InlineLimit = DefaultInlineLimit
	}
	return o
}

// Printer prints documents with a fixed set of options. It holds no
// mutable state and may be shared between goroutines.
type Printer struct {
	opts Options
}

// New creates a Printer.
func New(opts Options) *Printer {
	return &Printer{opts: opts.withDefaults()}
}

// Print renders doc with the default options.
func Print(doc *ast.Document) string {
	return New(Options{}).Print(doc)
}

// Print renders doc. Definitions are separated by a blank line and the
// output ends with a newline; an empty document renders as "".
func (p *Printer) Print(doc *ast.Document) string {
	if doc == nil || len(doc.Definitions) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(doc.Definitions))
	for _, def := range doc.Definitions {
		blocks = append(blocks, strings.Join(p.definition(def), "\n"))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Fprint writes the rendering of doc to w.
func (p *Printer) Fprint(w io.Writer, doc *ast.Document) error {
	_, err := io.WriteString(w, p.Print(doc))
	return err
}

func (p *Printer) definition(def ast.Definition) []string {
	if ext, ok := def.(*ast.Extension); ok {
		lines := p.definition(ext.Definition)
		// extensions carry no description, so the header is the first line
		lines[0] = "extend " + lines[0]
		return lines
	}

	switch d := def.(type) {
	case *ast.SchemaDefinition:
		items := make([][]string, 0, len(d.OperationTypes))
		for _, op := range d.OperationTypes {
			items = append(items, []string{op.Operation + ": " + op.Type})
		}
		return described(d.Description, p.block("schema", d.Directives, items))
	case *ast.ScalarTypeDefinition:
		return described(d.Description, p.block("scalar "+d.Name, d.Directives, nil))
	case *ast.ObjectTypeDefinition:
		header := "type " + d.Name + implements(d.Interfaces)
		return described(d.Description, p.block(header, d.Directives, p.fields(d.Fields)))
	case *ast.InterfaceTypeDefinition:
		header := "interface " + d.Name + implements(d.Interfaces)
		return described(d.Description, p.block(header, d.Directives, p.fields(d.Fields)))
	case *ast.UnionTypeDefinition:
		return described(d.Description, p.union(d))
	case *ast.EnumTypeDefinition:
		items := make([][]string, 0, len(d.Values))
		for _, v := range d.Values {
			items = append(items, described(v.Description, p.directives([]string{v.Name}, v.Directives, 1)))
		}
		return described(d.Description, p.block("enum "+d.Name, d.Directives, items))
	case *ast.InputObjectTypeDefinition:
		items := make([][]string, 0, len(d.Fields))
		for _, f := range d.Fields {
			items = append(items, described(f.Description, p.inputValue(f, 1)))
		}
		return described(d.Description, p.block("input "+d.Name, d.Directives, items))
	case *ast.DirectiveDefinition:
		return described(d.Description, p.directiveDefinition(d))
	}
	panic(fmt.Sprintf("printer: unexpected definition %T", def))
}

// block lays out a definition header, its own directives one per line and
// an optional braced body.
func (p *Printer) block(header string, dirs []*ast.Directive, items [][]string) []string {
	var body []string
	for _, item := range items {
		body = append(body, indent(item)...)
	}
	if len(dirs) == 0 {
		if len(items) == 0 {
			return []string{header}
		}
		lines := append([]string{header + " {"}, body...)
		return append(lines, "}")
	}
	lines := []string{header}
	for _, d := range dirs {
		lines = append(lines, indent(p.directive(d, len(indentUnit)))...)
	}
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, "{")
	lines = append(lines, body...)
	return append(lines, "}")
}

func (p *Printer) union(d *ast.UnionTypeDefinition) []string {
	header := "union " + d.Name
	members := "= " + strings.Join(d.Types, " | ")
	broken := func(depth int) []string {
		lines := []string{"="}
		for _, t := range d.Types {
			lines = append(lines, "| "+t)
		}
		if depth > 0 {
			return indent(lines)
		}
		lines[0] = header + " ="
		return append(lines[:1], indent(lines[1:])...)
	}

	if len(d.Directives) == 0 {
		switch {
		case len(d.Types) == 0:
			return []string{header}
		case p.fits(0, header+" "+members):
			return []string{header + " " + members}
		}
		return broken(0)
	}
	lines := p.block(header, d.Directives, nil)
	switch {
	case len(d.Types) == 0:
		return lines
	case p.fits(1, members):
		return append(lines, indentUnit+members)
	}
	return append(lines, broken(1)...)
}

func (p *Printer) directiveDefinition(d *ast.DirectiveDefinition) []string {
	head := "directive @" + d.Name
	tail := ""
	if d.Repeatable {
		tail = " repeatable"
	}
	tail += " on " + strings.Join(d.Locations, " | ")
	if len(d.Arguments) == 0 {
		return []string{head + tail}
	}
	if args, ok := p.inlineArgumentDefinitions(d.Arguments); ok && p.fits(0, head+args+tail) {
		return []string{head + args + tail}
	}
	lines := []string{head + "("}
	for _, a := range d.Arguments {
		lines = append(lines, indent(described(a.Description, p.inputValue(a, 1)))...)
	}
	return append(lines, ")"+tail)
}

func (p *Printer) fields(fields []*ast.FieldDefinition) [][]string {
	items := make([][]string, 0, len(fields))
	for _, f := range fields {
		items = append(items, described(f.Description, p.field(f, 1)))
	}
	return items
}

// field renders "name(args): Type @directives" at the given depth.
func (p *Printer) field(f *ast.FieldDefinition, depth int) []string {
	sig := ": " + typeString(f.Type)
	var lines []string
	if len(f.Arguments) == 0 {
		lines = []string{f.Name + sig}
	} else if args, ok := p.inlineArgumentDefinitions(f.Arguments); ok &&
		p.fitsAt(depth*len(indentUnit)+leadWidth(f.Directives), f.Name+args+sig) {
		lines = []string{f.Name + args + sig}
	} else {
		lines = []string{f.Name + "("}
		for _, a := range f.Arguments {
			lines = append(lines, indent(described(a.Description, p.inputValue(a, depth+1)))...)
		}
		lines = append(lines, ")"+sig)
	}
	return p.directives(lines, f.Directives, depth)
}

// inlineArgumentDefinitions renders "(a: Int, b: String)" when no argument
// has a description or a multi-line rendering.
func (p *Printer) inlineArgumentDefinitions(args []*ast.InputValueDefinition) (string, bool) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a.Description != nil {
			return "", false
		}
		lines := p.inputValue(a, 0)
		if len(lines) > 1 {
			return "", false
		}
		parts = append(parts, lines[0])
	}
	return "(" + strings.Join(parts, ", ") + ")", true
}

// inputValue renders "name: Type = default @directives".
func (p *Printer) inputValue(v *ast.InputValueDefinition, depth int) []string {
	lines := []string{v.Name + ": " + typeString(v.Type)}
	if v.DefaultValue != nil {
		lines = concat(lines, " = ", p.value(v.DefaultValue))
	}
	return p.directives(lines, v.Directives, depth)
}

// directives appends each directive to the last line of lines, which sit at
// the given depth.
func (p *Printer) directives(lines []string, dirs []*ast.Directive, depth int) []string {
	for _, d := range dirs {
		col := depth*len(indentUnit) + utf8.RuneCountInString(lines[len(lines)-1]) + 1
		lines = concat(lines, " ", p.directive(d, col))
	}
	return lines
}

// leadWidth is the least text dirs add to the line they start on. A
// directive with arguments can break after its "(", so counting stops there.
func leadWidth(dirs []*ast.Directive) int {
	n := 0
	for _, d := range dirs {
		n += len(" @") + utf8.RuneCountInString(d.Name)
		if len(d.Arguments) > 0 {
			return n + 1
		}
	}
	return n
}

// directive renders "@name(a: 1, b: 2)" starting at column col, breaking the
// arguments one per line when a value spans lines or the inline form would
// end past MaxWidth.
func (p *Printer) directive(d *ast.Directive, col int) []string {
	head := "@" + d.Name
	if len(d.Arguments) == 0 {
		return []string{head}
	}
	parts := make([]string, 0, len(d.Arguments))
	inline := true
	for _, a := range d.Arguments {
		lines := p.argument(a)
		if len(lines) > 1 {
			inline = false
			break
		}
		parts = append(parts, lines[0])
	}
	if inline {
		if text := head + "(" + strings.Join(parts, ", ") + ")"; p.fitsAt(col, text) {
			return []string{text}
		}
	}
	lines := []string{head + "("}
	for _, a := range d.Arguments {
		lines = append(lines, indent(p.argument(a))...)
	}
	return append(lines, ")")
}

func (p *Printer) argument(a *ast.Argument) []string {
	return concat([]string{a.Name + ":"}, " ", p.value(a.Value))
}

// value renders a literal. Lists and objects of at most InlineLimit scalar
// elements stay on one line; anything else is broken one element per line.
func (p *Printer) value(v ast.Value) []string {
	switch v := v.(type) {
	case *ast.IntValue:
		return []string{v.Literal}
	case *ast.FloatValue:
		return []string{v.Literal}
	case *ast.StringValue:
		if v.Block {
			return blockString(v.Value)
		}
		return []string{quote(v.Value)}
	case *ast.BooleanValue:
		return []string{strconv.FormatBool(v.Value)}
	case *ast.NullValue:
		return []string{"null"}
	case *ast.EnumValue:
		return []string{v.Name}
	case *ast.ListValue:
		if p.inlineable(v.Values) {
			parts := make([]string, len(v.Values))
			for i, e := range v.Values {
				parts[i] = p.value(e)[0]
			}
			return []string{"[" + strings.Join(parts, ", ") + "]"}
		}
		lines := []string{"["}
		for _, e := range v.Values {
			lines = append(lines, indent(p.value(e))...)
		}
		return append(lines, "]")
	case *ast.ObjectValue:
		vals := make([]ast.Value, len(v.Fields))
		for i, f := range v.Fields {
			vals[i] = f.Value
		}
		if p.inlineable(vals) {
			parts := make([]string, len(v.Fields))
			for i, f := range v.Fields {
				parts[i] = f.Name + ": " + p.value(f.Value)[0]
			}
			return []string{"{" + strings.Join(parts, ", ") + "}"}
		}
		lines := []string{"{"}
		for _, f := range v.Fields {
			lines = append(lines, indent(concat([]string{f.Name + ":"}, " ", p.value(f.Value)))...)
		}
		return append(lines, "}")
	}
	panic(fmt.Sprintf("printer: unexpected value %T", v))
}

func (p *Printer) inlineable(vals []ast.Value) bool {
	if len(vals) > p.opts.InlineLimit {
		return false
	}
	for _, v := range vals {
		switch v := v.(type) {
		case *ast.ListValue, *ast.ObjectValue:
			return false
		case *ast.StringValue:
			if v.Block && len(blockString(v.Value)) > 1 {
				return false
			}
		}
	}
	return true
}

func (p *Printer) fits(depth int, text string) bool {
	return p.fitsAt(depth*len(indentUnit), text)
}

// fitsAt reports whether text starting at column col ends within MaxWidth.
func (p *Printer) fitsAt(col int, text string) bool {
	return col+utf8.RuneCountInString(text) <= p.opts.MaxWidth
}

func typeString(t ast.Type) string {
	switch t := t.(type) {
	case *ast.NamedType:
		return t.Name
	case *ast.ListType:
		return "[" + typeString(t.Elem) + "]"
	case *ast.NonNullType:
		return typeString(t.Elem) + "!"
	}
	panic(fmt.Sprintf("printer: unexpected type %T", t))
}

// TypeString renders a type reference, e.g. "[String!]!".
func TypeString(t ast.Type) string {
	return typeString(t)
}

func implements(interfaces []string) string {
	if len(interfaces) == 0 {
		return ""
	}
	return " implements " + strings.Join(interfaces, " & ")
}

// described puts the description lines above lines.
func described(desc *ast.Description, lines []string) []string {
	if desc == nil {
		return lines
	}
	var head []string
	switch desc.Style {
	case ast.BlockStyle:
		head = blockString(desc.Value)
	case ast.CommentStyle:
		for _, l := range strings.Split(desc.Value, "\n") {
			head = append(head, strings.TrimRight("#"+l, " \t"))
		}
	default:
		head = []string{quote(desc.Value)}
	}
	return append(head, lines...)
}

// indent shifts lines one level, leaving empty lines empty.
func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l != "" {
			out[i] = indentUnit + l
		}
	}
	return out
}

// concat joins the first line of b onto the last line of a.
func concat(a []string, sep string, b []string) []string {
	out := make([]string, 0, len(a)+len(b)-1)
	out = append(out, a[:len(a)-1]...)
	out = append(out, a[len(a)-1]+sep+b[0])
	return append(out, b[1:]...)
}
