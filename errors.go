package sdlprint

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Protocol-Lattice/sdlprint/lexer"
	"github.com/Protocol-Lattice/sdlprint/parser"
	"github.com/Protocol-Lattice/sdlprint/token"
)

// ErrIO marks failures to acquire the schema text.
var ErrIO = errors.New("input error")

// ReadSource reads a whole schema from r. Failures wrap ErrIO with name
// as context.
func ReadSource(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrIO, name, err)
	}
	return string(data), nil
}

// Error kinds reported on the error channel.
const (
	KindLex     = "LexError"
	KindParse   = "ParseError"
	KindIO      = "IOError"
	KindUnknown = "Error"
)

// ErrorKind classifies err for reporting.
func ErrorKind(err error) string {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &lexErr):
		return KindLex
	case errors.As(err, &parseErr):
		return KindParse
	case errors.Is(err, ErrIO):
		return KindIO
	}
	return KindUnknown
}

// ErrorPosition returns the source position carried by err, if any.
func ErrorPosition(err error) (token.Position, bool) {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return lexErr.Pos, true
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Pos, true
	}
	return token.Position{}, false
}

// ErrorMessage returns the description of err without the position
// prefix that LexError and ParseError add.
func ErrorMessage(err error) string {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return lexErr.Message
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		if parseErr.Message != "" {
			return parseErr.Message
		}
		return fmt.Sprintf("expected %s, found %s", parseErr.Expected, parseErr.Found)
	}
	if errors.Is(err, ErrIO) {
		return strings.TrimPrefix(err.Error(), ErrIO.Error()+": ")
	}
	return err.Error()
}

// FormatError renders err as "<Kind> at <line>:<column>: <message>", or
// "<Kind>: <message>" when err has no source position.
func FormatError(err error) string {
	if pos, ok := ErrorPosition(err); ok {
		return fmt.Sprintf("%s at %d:%d: %s", ErrorKind(err), pos.Line, pos.Column, ErrorMessage(err))
	}
	return fmt.Sprintf("%s: %s", ErrorKind(err), ErrorMessage(err))
}

// Report writes the formatted error line to w.
func Report(w io.Writer, err error) {
	fmt.Fprintln(w, FormatError(err))
}
