package parser

import (
	"fmt"

	"github.com/Protocol-Lattice/sdlprint/token"
)

// ParseError reports a structural grammar violation: an unexpected token,
// a missing clause or an unbalanced delimiter.
type ParseError struct {
	Pos      token.Position
	Expected string // what the grammar required, empty when Message is set
	Found    string // the token that was there instead
	Message  string // free-form description for non mismatch errors
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("line %d, column %d: expected %s, found %s", e.Pos.Line, e.Pos.Column, e.Expected, e.Found)
}

// Position returns where the error occurred.
func (e *ParseError) Position() token.Position { return e.Pos }
