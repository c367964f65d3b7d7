package lexer

import "testing"

func TestBlockStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single line", "hello", "hello"},
		{"common indent", "\n    a\n    b\n  c\n", "  a\n  b\nc"},
		{"first line kept", "  first\n    second\n    third", "  first\nsecond\nthird"},
		{"blank edges", "\n\n  body\n  \n\n", "body"},
		{"blank lines ignored for indent", "\n      x\n\n      y\n", "x\n\ny"},
		{"crlf", "\r\n  a\r\n  b\r\n", "a\nb"},
		{"lone cr", "\r  a\r  b", "a\nb"},
		{"tabs", "\n\ta\n\t\tb", "a\n\tb"},
		{"empty", "", ""},
		{"only whitespace", "  \n   \n", ""},
	}
	for _, tt := range tests {
		if got := BlockStringValue(tt.raw); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

// Lines indented 4, 4 and 2 spaces, the first excluded, lose 2 columns.
func TestBlockStringValueMinimumIndent(t *testing.T) {
	raw := "first\n    four\n    four\n  two"
	want := "first\n  four\n  four\ntwo"
	if got := BlockStringValue(raw); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
