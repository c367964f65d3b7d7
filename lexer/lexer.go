package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Protocol-Lattice/sdlprint/token"
)

const bom = "\uFEFF"

// Lexer tokenizes GraphQL schema source.
type Lexer struct {
	input        string // The input string
	position     int    // Current position in input (points to current char)
	readPosition int    // Next reading position (after current char)
	ch           byte   // Current char under examination
	line         int    // Line of the current char, 1-based
	lineStart    int    // Offset of the first byte of the current line
}

// New creates a new Lexer for the given input string.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar advances the lexer to the next character, keeping line
// bookkeeping for \n, \r\n and lone \r terminators.
func (l *Lexer) readChar() {
	if l.readPosition > 0 {
		if l.atEOF() {
			return
		}
		if l.ch == '\n' || (l.ch == '\r' && l.peekChar() != '\n') {
			l.line++
			l.lineStart = l.readPosition
		}
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) rest() string {
	if l.atEOF() {
		return ""
	}
	return l.input[l.position:]
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

// pos returns the position of the current char.
func (l *Lexer) pos() token.Position {
	off := l.position
	if off > len(l.input) {
		off = len(l.input)
	}
	return token.Position{
		Offset: off,
		Line:   l.line,
		Column: utf8.RuneCountInString(l.input[l.lineStart:off]) + 1,
	}
}

// NextToken returns the next token from the input. Once the input is
// exhausted it keeps returning an EOF token.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipIgnored()
	start := l.pos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: start}, nil
	}

	switch ch := l.ch; {
	case ch == '#':
		return l.readComment(start), nil
	case ch == '"':
		if strings.HasPrefix(l.rest(), `"""`) {
			return l.readBlockString(start)
		}
		return l.readString(start)
	case ch == '.':
		if !strings.HasPrefix(l.rest(), token.Spread) {
			return token.Token{}, l.errorf(start, "Cannot parse the unexpected character %q.", ".")
		}
		l.advance(3)
		return token.Token{Type: token.PUNCTUATOR, Literal: token.Spread, Pos: start}, nil
	case strings.IndexByte("!$&():=@[]{|}", ch) >= 0:
		l.readChar()
		return token.Token{Type: token.PUNCTUATOR, Literal: string(ch), Pos: start}, nil
	case ch == '-' || isDigit(ch):
		return l.readNumber(start)
	case isNameStart(ch):
		name := l.readName()
		return token.Token{Type: token.NAME, Literal: name, Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.rest())
	return token.Token{}, l.errorf(start, "Cannot parse the unexpected character %s.", quoteRune(r))
}

// skipIgnored advances the lexer past whitespace, line terminators,
// commas and byte order marks.
func (l *Lexer) skipIgnored() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\n', '\r', ',':
			l.readChar()
		default:
			if !strings.HasPrefix(l.rest(), bom) {
				return
			}
			leading := l.position == 0
			l.advance(len(bom))
			if leading {
				// columns on the first line count from after the mark
				l.lineStart = l.position
			}
		}
	}
}

// readComment reads a # comment up to the end of the line.
func (l *Lexer) readComment(start token.Position) token.Token {
	begin := l.position
	for !l.atEOF() && l.ch != '\n' && l.ch != '\r' {
		l.readChar()
	}
	lit := l.input[begin:l.position]
	return token.Token{Type: token.COMMENT, Literal: lit, Value: lit[1:], Pos: start}
}

// readName reads a name from the input.
func (l *Lexer) readName() string {
	begin := l.position
	for !l.atEOF() && (isNameStart(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[begin:l.position]
}

// readNumber reads an IntValue or FloatValue.
func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	begin := l.position
	typ := token.INT

	if l.ch == '-' {
		l.readChar()
	}
	if l.ch == '0' && !l.atEOF() {
		l.readChar()
		if isDigit(l.ch) && !l.atEOF() {
			return token.Token{}, l.errorf(l.pos(), "Invalid number, unexpected digit after 0: %s.", quoteRune(rune(l.ch)))
		}
	} else if err := l.readDigits(); err != nil {
		return token.Token{}, err
	}
	if l.ch == '.' && !l.atEOF() {
		typ = token.FLOAT
		l.readChar()
		if err := l.readDigits(); err != nil {
			return token.Token{}, err
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && !l.atEOF() {
		typ = token.FLOAT
		l.readChar()
		if (l.ch == '+' || l.ch == '-') && !l.atEOF() {
			l.readChar()
		}
		if err := l.readDigits(); err != nil {
			return token.Token{}, err
		}
	}
	if !l.atEOF() && (l.ch == '.' || isNameStart(l.ch)) {
		return token.Token{}, l.errorf(l.pos(), "Invalid number, expected digit but got: %s.", quoteRune(rune(l.ch)))
	}
	return token.Token{Type: typ, Literal: l.input[begin:l.position], Pos: start}, nil
}

func (l *Lexer) readDigits() error {
	if l.atEOF() || !isDigit(l.ch) {
		if l.atEOF() {
			return l.errorf(l.pos(), "Invalid number, expected digit but got: <EOF>.")
		}
		r, _ := utf8.DecodeRuneInString(l.rest())
		return l.errorf(l.pos(), "Invalid number, expected digit but got: %s.", quoteRune(r))
	}
	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}
	return nil
}

// readString reads a single-line string literal, decoding escapes.
func (l *Lexer) readString(start token.Position) (token.Token, error) {
	begin := l.position
	l.readChar() // skip opening quote
	var sb strings.Builder
	for {
		if l.atEOF() || l.ch == '\n' || l.ch == '\r' {
			return token.Token{}, l.errorf(start, "Unterminated string.")
		}
		switch c := l.ch; {
		case c == '"':
			l.readChar()
			return token.Token{
				Type:    token.STRING,
				Literal: l.input[begin:l.position],
				Value:   sb.String(),
				Pos:     start,
			}, nil
		case c == '\\':
			if err := l.readEscape(&sb); err != nil {
				return token.Token{}, err
			}
		case c < 0x20 && c != '\t':
			return token.Token{}, l.errorf(l.pos(), "Invalid character within String: %s.", quoteRune(rune(c)))
		default:
			sb.WriteByte(c)
			l.readChar()
		}
	}
}

func (l *Lexer) readEscape(sb *strings.Builder) error {
	at := l.pos()
	l.readChar() // skip backslash
	if l.atEOF() {
		return l.errorf(at, "Invalid character escape sequence: \\.")
	}
	switch l.ch {
	case '"', '\\', '/':
		sb.WriteByte(l.ch)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, ok := l.readHex4()
		if !ok {
			return l.errorf(at, "Invalid Unicode escape sequence.")
		}
		if utf16High(r) && strings.HasPrefix(l.rest(), `\u`) {
			save := *l
			l.readChar()
			if lo, ok := l.readHex4(); ok && utf16Low(lo) {
				r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
			} else {
				*l = save
			}
		}
		sb.WriteRune(r)
		return nil
	default:
		r, _ := utf8.DecodeRuneInString(l.rest())
		return l.errorf(at, "Invalid character escape sequence: \\%s.", string(r))
	}
	l.readChar()
	return nil
}

// readHex4 reads "uXXXX" with the lexer positioned on the 'u' and leaves it
// on the char after the last hex digit.
func (l *Lexer) readHex4() (rune, bool) {
	if l.readPosition+4 > len(l.input) {
		return 0, false
	}
	v, err := strconv.ParseUint(l.input[l.readPosition:l.readPosition+4], 16, 32)
	if err != nil {
		return 0, false
	}
	l.advance(5)
	return rune(v), true
}

// readBlockString reads a """block string""" and applies the block string
// de-indentation to its value.
func (l *Lexer) readBlockString(start token.Position) (token.Token, error) {
	begin := l.position
	l.advance(3)
	var raw strings.Builder
	for {
		rest := l.rest()
		switch {
		case l.atEOF():
			return token.Token{}, l.errorf(start, "Unterminated string.")
		case strings.HasPrefix(rest, `"""`):
			l.advance(3)
			return token.Token{
				Type:    token.STRING,
				Literal: l.input[begin:l.position],
				Value:   BlockStringValue(raw.String()),
				Block:   true,
				Pos:     start,
			}, nil
		case strings.HasPrefix(rest, `\"""`):
			raw.WriteString(`"""`)
			l.advance(4)
		default:
			raw.WriteByte(l.ch)
			l.readChar()
		}
	}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...interface{}) *LexError {
	return newLexError(pos, l.charAt(pos.Offset), format, args...)
}

func (l *Lexer) charAt(offset int) string {
	if offset >= len(l.input) {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(l.input[offset:])
	return string(r)
}

// isNameStart checks if a byte may begin a name.
func isNameStart(ch byte) bool {
	return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

// isDigit checks if a byte is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func utf16High(r rune) bool { return r >= 0xD800 && r <= 0xDBFF }
func utf16Low(r rune) bool  { return r >= 0xDC00 && r <= 0xDFFF }

func quoteRune(r rune) string {
	if r < 0x20 || r == 0x7F || r == utf8.RuneError {
		return strconv.QuoteRuneToASCII(r)
	}
	return strconv.Quote(string(r))
}
