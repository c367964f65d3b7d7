package parser

import (
	"fmt"
	"strings"

	"github.com/Protocol-Lattice/sdlprint/ast"
	"github.com/Protocol-Lattice/sdlprint/lexer"
	"github.com/Protocol-Lattice/sdlprint/token"
)

// Parser parses GraphQL schema source into an AST.
//
// Parsing stops at the first error; there is no recovery.
type Parser struct {
	l        *lexer.Lexer     // The lexer to read tokens from
	curToken token.Token      // Current token
	err      error            // Error from priming the first token
	pending  *ast.Description // # comments directly above curToken
	prevEnd  int              // Line on which the previous non-comment token ended
}

// Parse parses a complete schema document.
// It returns a *lexer.LexError or a *ParseError on failure.
func Parse(src string) (*ast.Document, error) {
	return New(lexer.New(src)).ParseDocument()
}

// New creates a new Parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.err = p.nextToken()
	return p
}

// nextToken advances the parser to the next significant token. Comments are
// folded into the pending description when they sit on consecutive lines of
// their own and end on the line right above the new token.
func (p *Parser) nextToken() error {
	var run []token.Token
	for {
		tok, err := p.l.NextToken()
		if err != nil {
			return err
		}
		if tok.Type != token.COMMENT {
			p.curToken = p.takeComments(run, tok)
			p.prevEnd = endLine(tok)
			return nil
		}
		switch {
		case tok.Pos.Line == p.prevEnd && p.prevEnd > 0:
			// trailing comment on the line of the previous token
			run = nil
		case len(run) > 0 && run[len(run)-1].Pos.Line != tok.Pos.Line-1:
			run = []token.Token{tok}
		default:
			run = append(run, tok)
		}
	}
}

func (p *Parser) takeComments(run []token.Token, next token.Token) token.Token {
	p.pending = nil
	if len(run) == 0 || run[len(run)-1].Pos.Line != next.Pos.Line-1 {
		return next
	}
	lines := make([]string, len(run))
	for i, c := range run {
		lines[i] = strings.TrimRight(c.Value, " \t")
	}
	p.pending = &ast.Description{Value: strings.Join(lines, "\n"), Style: ast.CommentStyle}
	return next
}

func endLine(tok token.Token) int {
	lit := strings.ReplaceAll(tok.Literal, "\r\n", "\n")
	return tok.Pos.Line + strings.Count(lit, "\n") + strings.Count(lit, "\r")
}

// ParseDocument parses definitions until the end of input.
func (p *Parser) ParseDocument() (*ast.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	doc := &ast.Document{}
	for p.curToken.Type != token.EOF {
		def, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		doc.Definitions = append(doc.Definitions, def)
	}
	return doc, nil
}

const definitionKeywords = `"schema", "scalar", "type", "interface", "union", "enum", "input", "directive" or "extend"`

// parseDefinition parses a single top-level definition.
func (p *Parser) parseDefinition() (ast.Definition, error) {
	desc, err := p.parseDescription()
	if err != nil {
		return nil, err
	}
	if p.curToken.IsName("extend") {
		if desc != nil && desc.Style != ast.CommentStyle {
			return nil, &ParseError{Pos: p.curToken.Pos, Message: "extensions cannot have a description"}
		}
		return p.parseExtension()
	}
	if p.curToken.IsName("directive") {
		return p.parseDirectiveDefinition(desc)
	}
	return p.parseTypeSystemDefinition(desc, false)
}

// parseTypeSystemDefinition dispatches on the definition keyword. With
// extend set the definition must add at least one clause.
func (p *Parser) parseTypeSystemDefinition(desc *ast.Description, extend bool) (ast.Definition, error) {
	if p.curToken.Type != token.NAME {
		return nil, p.unexpected(definitionKeywords)
	}
	switch p.curToken.Literal {
	case "schema":
		return p.parseSchemaDefinition(desc, extend)
	case "scalar":
		return p.parseScalarTypeDefinition(desc, extend)
	case "type":
		return p.parseObjectTypeDefinition(desc, extend)
	case "interface":
		return p.parseInterfaceTypeDefinition(desc, extend)
	case "union":
		return p.parseUnionTypeDefinition(desc, extend)
	case "enum":
		return p.parseEnumTypeDefinition(desc, extend)
	case "input":
		return p.parseInputObjectTypeDefinition(desc, extend)
	}
	if extend {
		return nil, p.unexpected(`"schema", "scalar", "type", "interface", "union", "enum" or "input"`)
	}
	return nil, p.unexpected(definitionKeywords)
}

// parseExtension parses "extend <definition>".
func (p *Parser) parseExtension() (ast.Definition, error) {
	pos := p.curToken.Pos
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	def, err := p.parseTypeSystemDefinition(nil, true)
	if err != nil {
		return nil, err
	}
	return &ast.Extension{Definition: def, Pos: pos}, nil
}

// parseDescription consumes a leading string, or takes the pending
// comment description of the current token.
func (p *Parser) parseDescription() (*ast.Description, error) {
	if p.curToken.Type == token.STRING {
		desc := &ast.Description{Value: p.curToken.Value, Style: ast.StringStyle}
		if p.curToken.Block {
			desc.Style = ast.BlockStyle
		}
		return desc, p.nextToken()
	}
	return p.pending, nil
}

func (p *Parser) parseSchemaDefinition(desc *ast.Description, extend bool) (*ast.SchemaDefinition, error) {
	def := &ast.SchemaDefinition{Description: desc, Pos: p.curToken.Pos}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	var err error
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if !p.curToken.Is(token.LBrace) {
		if !extend {
			return nil, p.unexpected(`"{"`)
		}
		if len(def.Directives) == 0 {
			return nil, p.unexpected(`"@" or "{"`)
		}
		return def, nil
	}
	err = p.many(token.LBrace, token.RBrace, func() error {
		op, err := p.parseOperationTypeDefinition()
		if err != nil {
			return err
		}
		def.OperationTypes = append(def.OperationTypes, op)
		return nil
	})
	return def, err
}

func (p *Parser) parseOperationTypeDefinition() (*ast.OperationTypeDefinition, error) {
	pos := p.curToken.Pos
	switch {
	case p.curToken.IsName("query"), p.curToken.IsName("mutation"), p.curToken.IsName("subscription"):
	default:
		return nil, p.unexpected(`"query", "mutation" or "subscription"`)
	}
	op := &ast.OperationTypeDefinition{Operation: p.curToken.Literal, Pos: pos}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	name, _, err := p.parseName()
	if err != nil {
		return nil, err
	}
	op.Type = name
	return op, nil
}

func (p *Parser) parseScalarTypeDefinition(desc *ast.Description, extend bool) (*ast.ScalarTypeDefinition, error) {
	def := &ast.ScalarTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if extend && len(def.Directives) == 0 {
		return nil, p.unexpected(`"@"`)
	}
	return def, nil
}

func (p *Parser) parseObjectTypeDefinition(desc *ast.Description, extend bool) (*ast.ObjectTypeDefinition, error) {
	def := &ast.ObjectTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Interfaces, err = p.parseImplementsInterfaces(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if def.Fields, err = p.parseFieldsDefinition(); err != nil {
		return nil, err
	}
	if extend && len(def.Interfaces) == 0 && len(def.Directives) == 0 && len(def.Fields) == 0 {
		return nil, p.unexpected(`"implements", "@" or "{"`)
	}
	return def, nil
}

func (p *Parser) parseInterfaceTypeDefinition(desc *ast.Description, extend bool) (*ast.InterfaceTypeDefinition, error) {
	def := &ast.InterfaceTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Interfaces, err = p.parseImplementsInterfaces(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if def.Fields, err = p.parseFieldsDefinition(); err != nil {
		return nil, err
	}
	if extend && len(def.Interfaces) == 0 && len(def.Directives) == 0 && len(def.Fields) == 0 {
		return nil, p.unexpected(`"implements", "@" or "{"`)
	}
	return def, nil
}

func (p *Parser) parseUnionTypeDefinition(desc *ast.Description, extend bool) (*ast.UnionTypeDefinition, error) {
	def := &ast.UnionTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	ok, err := p.skip(token.Equals)
	if err != nil {
		return nil, err
	}
	if ok {
		if def.Types, err = p.parseDelimitedNames(token.Pipe); err != nil {
			return nil, err
		}
	}
	if extend && len(def.Directives) == 0 && len(def.Types) == 0 {
		return nil, p.unexpected(`"@" or "="`)
	}
	return def, nil
}

func (p *Parser) parseEnumTypeDefinition(desc *ast.Description, extend bool) (*ast.EnumTypeDefinition, error) {
	def := &ast.EnumTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if p.curToken.Is(token.LBrace) {
		err = p.many(token.LBrace, token.RBrace, func() error {
			v, err := p.parseEnumValueDefinition()
			if err != nil {
				return err
			}
			def.Values = append(def.Values, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if extend && len(def.Directives) == 0 && len(def.Values) == 0 {
		return nil, p.unexpected(`"@" or "{"`)
	}
	return def, nil
}

func (p *Parser) parseEnumValueDefinition() (*ast.EnumValueDefinition, error) {
	desc, err := p.parseDescription()
	if err != nil {
		return nil, err
	}
	v := &ast.EnumValueDefinition{Description: desc, Pos: p.curToken.Pos}
	switch p.curToken.Literal {
	case "true", "false", "null":
		if p.curToken.Type == token.NAME {
			return nil, &ParseError{
				Pos:     p.curToken.Pos,
				Message: fmt.Sprintf("%s is reserved and cannot be used for an enum value", p.curToken.Literal),
			}
		}
	}
	if v.Name, _, err = p.parseName(); err != nil {
		return nil, err
	}
	if v.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser) parseInputObjectTypeDefinition(desc *ast.Description, extend bool) (*ast.InputObjectTypeDefinition, error) {
	def := &ast.InputObjectTypeDefinition{Description: desc, Pos: p.curToken.Pos}
	var err error
	if def.Name, err = p.parseKeywordName(); err != nil {
		return nil, err
	}
	if def.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	if p.curToken.Is(token.LBrace) {
		if def.Fields, err = p.parseInputValueDefinitions(token.LBrace, token.RBrace); err != nil {
			return nil, err
		}
	}
	if extend && len(def.Directives) == 0 && len(def.Fields) == 0 {
		return nil, p.unexpected(`"@" or "{"`)
	}
	return def, nil
}

func (p *Parser) parseDirectiveDefinition(desc *ast.Description) (*ast.DirectiveDefinition, error) {
	def := &ast.DirectiveDefinition{Description: desc, Pos: p.curToken.Pos}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.At); err != nil {
		return nil, err
	}
	var err error
	if def.Name, _, err = p.parseName(); err != nil {
		return nil, err
	}
	if p.curToken.Is(token.LParen) {
		if def.Arguments, err = p.parseInputValueDefinitions(token.LParen, token.RParen); err != nil {
			return nil, err
		}
	}
	if p.curToken.IsName("repeatable") {
		def.Repeatable = true
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}
	if !p.curToken.IsName("on") {
		return nil, p.unexpected(`"on"`)
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	// locations are checked before consumption so errors point at them
	if _, err := p.skip(token.Pipe); err != nil {
		return nil, err
	}
	for {
		if p.curToken.Type == token.NAME && !directiveLocations[p.curToken.Literal] {
			return nil, &ParseError{Pos: p.curToken.Pos, Expected: "a directive location", Found: p.curToken.Describe()}
		}
		loc, _, err := p.parseName()
		if err != nil {
			return nil, err
		}
		def.Locations = append(def.Locations, loc)
		ok, err := p.skip(token.Pipe)
		if err != nil {
			return nil, err
		}
		if !ok {
			return def, nil
		}
	}
}

var directiveLocations = map[string]bool{
	"QUERY":                  true,
	"MUTATION":               true,
	"SUBSCRIPTION":           true,
	"FIELD":                  true,
	"FRAGMENT_DEFINITION":    true,
	"FRAGMENT_SPREAD":        true,
	"INLINE_FRAGMENT":        true,
	"VARIABLE_DEFINITION":    true,
	"SCHEMA":                 true,
	"SCALAR":                 true,
	"OBJECT":                 true,
	"FIELD_DEFINITION":       true,
	"ARGUMENT_DEFINITION":    true,
	"INTERFACE":              true,
	"UNION":                  true,
	"ENUM":                   true,
	"ENUM_VALUE":             true,
	"INPUT_OBJECT":           true,
	"INPUT_FIELD_DEFINITION": true,
}

// parseImplementsInterfaces parses "implements &? A & B".
func (p *Parser) parseImplementsInterfaces() ([]string, error) {
	if !p.curToken.IsName("implements") {
		return nil, nil
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p.parseDelimitedNames(token.Amp)
}

// parseDelimitedNames parses "sep? Name (sep Name)*".
func (p *Parser) parseDelimitedNames(sep string) ([]string, error) {
	if _, err := p.skip(sep); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, _, err := p.parseName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		ok, err := p.skip(sep)
		if err != nil {
			return nil, err
		}
		if !ok {
			return names, nil
		}
	}
}

// parseFieldsDefinition parses an optional "{ field+ }".
func (p *Parser) parseFieldsDefinition() ([]*ast.FieldDefinition, error) {
	if !p.curToken.Is(token.LBrace) {
		return nil, nil
	}
	var fields []*ast.FieldDefinition
	err := p.many(token.LBrace, token.RBrace, func() error {
		f, err := p.parseFieldDefinition()
		if err != nil {
			return err
		}
		fields = append(fields, f)
		return nil
	})
	return fields, err
}

// parseFieldDefinition parses "name(args): Type @directives".
func (p *Parser) parseFieldDefinition() (*ast.FieldDefinition, error) {
	desc, err := p.parseDescription()
	if err != nil {
		return nil, err
	}
	f := &ast.FieldDefinition{Description: desc, Pos: p.curToken.Pos}
	if f.Name, _, err = p.parseName(); err != nil {
		return nil, err
	}
	if p.curToken.Is(token.LParen) {
		if f.Arguments, err = p.parseInputValueDefinitions(token.LParen, token.RParen); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if f.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if f.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *Parser) parseInputValueDefinitions(open, close string) ([]*ast.InputValueDefinition, error) {
	var values []*ast.InputValueDefinition
	err := p.many(open, close, func() error {
		v, err := p.parseInputValueDefinition()
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

// parseInputValueDefinition parses "name: Type = default @directives".
func (p *Parser) parseInputValueDefinition() (*ast.InputValueDefinition, error) {
	desc, err := p.parseDescription()
	if err != nil {
		return nil, err
	}
	v := &ast.InputValueDefinition{Description: desc, Pos: p.curToken.Pos}
	if v.Name, _, err = p.parseName(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if v.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	ok, err := p.skip(token.Equals)
	if err != nil {
		return nil, err
	}
	if ok {
		if v.DefaultValue, err = p.parseValue(); err != nil {
			return nil, err
		}
	}
	if v.Directives, err = p.parseDirectives(); err != nil {
		return nil, err
	}
	return v, nil
}

// parseType parses a GraphQL type (e.g., String, [Int!], User!). A "!"
// wraps the type immediately before it.
func (p *Parser) parseType() (ast.Type, error) {
	pos := p.curToken.Pos
	var t ast.Type
	switch {
	case p.curToken.Is(token.LBracket):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		t = &ast.ListType{Elem: elem, Pos: pos}
	case p.curToken.Type == token.NAME:
		t = &ast.NamedType{Name: p.curToken.Literal, Pos: pos}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected(`Name or "["`)
	}
	ok, err := p.skip(token.Bang)
	if err != nil {
		return nil, err
	}
	if ok {
		t = &ast.NonNullType{Elem: t, Pos: pos}
	}
	return t, nil
}

// parseDirectives parses zero or more "@name(args)".
func (p *Parser) parseDirectives() ([]*ast.Directive, error) {
	var dirs []*ast.Directive
	for p.curToken.Is(token.At) {
		d := &ast.Directive{Pos: p.curToken.Pos}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		var err error
		if d.Name, _, err = p.parseName(); err != nil {
			return nil, err
		}
		if p.curToken.Is(token.LParen) {
			err = p.many(token.LParen, token.RParen, func() error {
				arg, err := p.parseArgument()
				if err != nil {
					return err
				}
				d.Arguments = append(d.Arguments, arg)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func (p *Parser) parseArgument() (*ast.Argument, error) {
	name, pos, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Argument{Name: name, Value: v, Pos: pos}, nil
}

// parseValue parses a constant value. Object and list literals recurse.
func (p *Parser) parseValue() (ast.Value, error) {
	tok := p.curToken
	switch tok.Type {
	case token.PUNCTUATOR:
		switch tok.Literal {
		case token.LBracket:
			return p.parseList()
		case token.LBrace:
			return p.parseObject()
		case token.Dollar:
			return nil, &ParseError{Pos: tok.Pos, Message: "variables are not allowed in constant values"}
		}
	case token.INT:
		return &ast.IntValue{Literal: tok.Literal, Pos: tok.Pos}, p.nextToken()
	case token.FLOAT:
		return &ast.FloatValue{Literal: tok.Literal, Pos: tok.Pos}, p.nextToken()
	case token.STRING:
		return &ast.StringValue{Value: tok.Value, Block: tok.Block, Pos: tok.Pos}, p.nextToken()
	case token.NAME:
		var v ast.Value
		switch tok.Literal {
		case "true", "false":
			v = &ast.BooleanValue{Value: tok.Literal == "true", Pos: tok.Pos}
		case "null":
			v = &ast.NullValue{Pos: tok.Pos}
		default:
			v = &ast.EnumValue{Name: tok.Literal, Pos: tok.Pos}
		}
		return v, p.nextToken()
	}
	return nil, p.unexpected("a value")
}

// parseList parses a list literal; "[]" is allowed.
func (p *Parser) parseList() (*ast.ListValue, error) {
	list := &ast.ListValue{Values: []ast.Value{}, Pos: p.curToken.Pos}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	for {
		ok, err := p.skip(token.RBracket)
		if err != nil {
			return nil, err
		}
		if ok {
			return list, nil
		}
		if p.curToken.Type == token.EOF {
			return nil, p.unexpected(`"]"`)
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, v)
	}
}

// parseObject parses an object literal; "{}" is allowed, keys must be unique.
func (p *Parser) parseObject() (*ast.ObjectValue, error) {
	obj := &ast.ObjectValue{Fields: []*ast.ObjectField{}, Pos: p.curToken.Pos}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for {
		ok, err := p.skip(token.RBrace)
		if err != nil {
			return nil, err
		}
		if ok {
			return obj, nil
		}
		name, pos, err := p.parseName()
		if err != nil {
			if p.curToken.Type == token.EOF {
				return nil, p.unexpected(`Name or "}"`)
			}
			return nil, err
		}
		if seen[name] {
			return nil, &ParseError{Pos: pos, Message: fmt.Sprintf("duplicate object field %q", name)}
		}
		seen[name] = true
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, &ast.ObjectField{Name: name, Value: v, Pos: pos})
	}
}

// many parses "open item (item)* close"; at least one item is required.
func (p *Parser) many(open, close string, item func() error) error {
	if _, err := p.expect(open); err != nil {
		return err
	}
	for {
		if err := item(); err != nil {
			return err
		}
		ok, err := p.skip(close)
		if err != nil || ok {
			return err
		}
	}
}

// parseKeywordName skips the definition keyword and parses the name after it.
func (p *Parser) parseKeywordName() (string, error) {
	if err := p.nextToken(); err != nil {
		return "", err
	}
	name, _, err := p.parseName()
	return name, err
}

func (p *Parser) parseName() (string, token.Position, error) {
	tok := p.curToken
	if tok.Type != token.NAME {
		return "", tok.Pos, p.unexpected("Name")
	}
	return tok.Literal, tok.Pos, p.nextToken()
}

// expect consumes the punctuator punct or fails.
func (p *Parser) expect(punct string) (token.Token, error) {
	tok := p.curToken
	if !tok.Is(punct) {
		return tok, p.unexpected(fmt.Sprintf("%q", punct))
	}
	return tok, p.nextToken()
}

// skip consumes the punctuator punct if it is the current token.
func (p *Parser) skip(punct string) (bool, error) {
	if !p.curToken.Is(punct) {
		return false, nil
	}
	return true, p.nextToken()
}

func (p *Parser) unexpected(expected string) *ParseError {
	return &ParseError{Pos: p.curToken.Pos, Expected: expected, Found: p.curToken.Describe()}
}
