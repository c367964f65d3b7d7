// Package sdlprint parses GraphQL schema definition documents and prints
// them in a canonical, deterministic form.
// It includes lexing, parsing, printing, and the print command used by the CLI.
package sdlprint

import (
	"io"

	"github.com/Protocol-Lattice/sdlprint/ast"
	"github.com/Protocol-Lattice/sdlprint/lexer"
	"github.com/Protocol-Lattice/sdlprint/parser"
	"github.com/Protocol-Lattice/sdlprint/printer"
	"github.com/Protocol-Lattice/sdlprint/token"
)

// ===========================
// Re-exported Types
// ===========================

// Token types
type (
	TokenType = token.TokenType
	Token     = token.Token
	Position  = token.Position
)

// AST types
type (
	Document   = ast.Document
	Definition = ast.Definition
	Type       = ast.Type
	Value      = ast.Value
)

// Error types
type (
	LexError   = lexer.LexError
	ParseError = parser.ParseError
)

// Printer types
type (
	Printer = printer.Printer
	Options = printer.Options
)

// ===========================
// Convenience Functions
// ===========================

// Parse parses schema source into a Document.
func Parse(src string) (*Document, error) {
	return parser.Parse(src)
}

// Print renders a Document with the given options.
func Print(doc *Document, opts Options) string {
	return printer.New(opts).Print(doc)
}

// Format parses src and returns its canonical rendering.
func Format(src string, opts Options) (string, error) {
	doc, err := parser.Parse(src)
	if err != nil {
		return "", err
	}
	return printer.New(opts).Print(doc), nil
}

// ===========================
// Print Command
// ===========================

// PrintSchema runs one print invocation over src. On success the canonical
// text goes to stdout. On failure a single error line goes to stderr,
// nothing is written to stdout, and the error is returned.
func PrintSchema(src string, stdout, stderr io.Writer, opts Options) error {
	out, err := Format(src, opts)
	if err != nil {
		Report(stderr, err)
		return err
	}
	_, err = io.WriteString(stdout, out)
	return err
}
