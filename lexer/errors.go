package lexer

import (
	"fmt"

	"github.com/Protocol-Lattice/sdlprint/token"
)

// LexError reports a byte sequence that cannot begin or complete a token:
// an unterminated string, an invalid escape, a malformed number or a
// character outside the grammar.
type LexError struct {
	Pos     token.Position
	Char    string // offending character, empty at end of input
	Message string
}

func newLexError(pos token.Position, char, format string, args ...interface{}) *LexError {
	return &LexError{Pos: pos, Char: char, Message: fmt.Sprintf(format, args...)}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Position returns where the error occurred.
func (e *LexError) Position() token.Position { return e.Pos }
