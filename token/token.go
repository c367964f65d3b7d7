package token

import "fmt"

// TokenType represents the kind of a token in schema source.
type TokenType string

const (
	EOF TokenType = "EOF" // End of file

	// Identifiers and literals
	NAME   TokenType = "NAME"   // Names (type names, field names, keywords)
	INT    TokenType = "INT"    // Integer literals
	FLOAT  TokenType = "FLOAT"  // Float literals
	STRING TokenType = "STRING" // String and block string literals

	COMMENT    TokenType = "COMMENT"    // # line comments
	PUNCTUATOR TokenType = "PUNCTUATOR" // ! $ & ( ) ... : = @ [ ] { | }
)

// Punctuator literals.
const (
	Bang     = "!"
	Dollar   = "$"
	Amp      = "&"
	LParen   = "("
	RParen   = ")"
	Spread   = "..."
	Colon    = ":"
	Equals   = "="
	At       = "@"
	LBracket = "["
	RBracket = "]"
	LBrace   = "{"
	Pipe     = "|"
	RBrace   = "}"
)

// Position locates a token in the source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a single token in schema source.
type Token struct {
	Type    TokenType // The type of the token
	Literal string    // The raw source text of the token
	Value   string    // Decoded content of strings and comments
	Block   bool      // Whether a STRING was written as a """block string"""
	Pos     Position  // Where the token starts
}

// Is reports whether the token is the punctuator p.
func (t Token) Is(p string) bool {
	return t.Type == PUNCTUATOR && t.Literal == p
}

// IsName reports whether the token is the name (or keyword) n.
func (t Token) IsName(n string) bool {
	return t.Type == NAME && t.Literal == n
}

// Describe renders the token for error messages.
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "<EOF>"
	case PUNCTUATOR:
		return fmt.Sprintf("%q", t.Literal)
	case NAME:
		return fmt.Sprintf("Name %q", t.Literal)
	case STRING:
		if t.Block {
			return "BlockString"
		}
		return fmt.Sprintf("String %q", t.Value)
	case INT:
		return fmt.Sprintf("Int %q", t.Literal)
	case FLOAT:
		return fmt.Sprintf("Float %q", t.Literal)
	}
	return string(t.Type)
}
