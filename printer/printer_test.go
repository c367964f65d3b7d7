package printer

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gqlast "github.com/vektah/gqlparser/v2/ast"
	gqlparser "github.com/vektah/gqlparser/v2/parser"

	"github.com/Protocol-Lattice/sdlprint/ast"
	"github.com/Protocol-Lattice/sdlprint/parser"
)

func format(t *testing.T, src string, opts Options) string {
	t.Helper()
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	return New(opts).Print(doc)
}

func TestPrintGolden(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   string
		want string
	}{
		{
			name: "object",
			in:   `type Query{user(id:ID!,active:Boolean=true):User users:[User!]!}`,
			want: "type Query {\n  user(id: ID!, active: Boolean = true): User\n  users: [User!]!\n}\n",
		},
		{
			name: "definition directives",
			in:   `type User @key(fields: "id") @shareable { id: ID! }`,
			want: "type User\n  @key(fields: \"id\")\n  @shareable\n{\n  id: ID!\n}\n",
		},
		{
			name: "implements",
			in:   `type A implements & B & C { f: Int }`,
			want: "type A implements B & C {\n  f: Int\n}\n",
		},
		{
			name: "scalar",
			in:   `scalar Date @specifiedBy(url: "x")`,
			want: "scalar Date\n  @specifiedBy(url: \"x\")\n",
		},
		{
			name: "schema",
			in:   `schema { query: Query mutation: Mutation }`,
			want: "schema {\n  query: Query\n  mutation: Mutation\n}\n",
		},
		{
			name: "union inline",
			in:   `union U = | A | B`,
			want: "union U = A | B\n",
		},
		{
			name: "union broken",
			opts: Options{MaxWidth: 20},
			in:   `union SearchResult = Photo | Person | Article`,
			want: "union SearchResult =\n  | Photo\n  | Person\n  | Article\n",
		},
		{
			name: "union with directives",
			in:   `union U @tag = A | B`,
			want: "union U\n  @tag\n  = A | B\n",
		},
		{
			name: "enum",
			in:   `enum Color { RED GREEN @deprecated(reason: "use RED") }`,
			want: "enum Color {\n  RED\n  GREEN @deprecated(reason: \"use RED\")\n}\n",
		},
		{
			name: "input defaults",
			in:   `input I { a: [Int] = [1, 2, 3], b: [Int] = [1,2,3,4] c: In = {x: 1} }`,
			want: "input I {\n  a: [Int] = [1, 2, 3]\n  b: [Int] = [\n    1\n    2\n    3\n    4\n  ]\n  c: In = {x: 1}\n}\n",
		},
		{
			name: "empty literals",
			in:   `input I { a: [Int] = [], b: In = {} }`,
			want: "input I {\n  a: [Int] = []\n  b: In = {}\n}\n",
		},
		{
			name: "directive definition",
			in:   `directive @auth(requires: Role = ADMIN) on | OBJECT | FIELD_DEFINITION`,
			want: "directive @auth(requires: Role = ADMIN) on OBJECT | FIELD_DEFINITION\n",
		},
		{
			name: "repeatable directive",
			in:   `directive @tag(name: String!) repeatable on OBJECT`,
			want: "directive @tag(name: String!) repeatable on OBJECT\n",
		},
		{
			name: "extension",
			in:   `extend type User @tag extend schema { subscription: S }`,
			want: "extend type User\n  @tag\n\nextend schema {\n  subscription: S\n}\n",
		},
		{
			name: "described arguments break",
			in:   `type Q { f("the id" id: ID, other: Int): Int }`,
			want: "type Q {\n  f(\n    \"the id\"\n    id: ID\n    other: Int\n  ): Int\n}\n",
		},
		{
			name: "long arguments break",
			opts: Options{MaxWidth: 30},
			in:   `type Q { search(term: String, first: Int, after: String): [R] }`,
			want: "type Q {\n  search(\n    term: String\n    first: Int\n    after: String\n  ): [R]\n}\n",
		},
		{
			name: "long directive breaks",
			opts: Options{MaxWidth: 30},
			in:   `type T { f: Int @cost(weight: 10, complexity: 20) }`,
			want: "type T {\n  f: Int @cost(\n    weight: 10\n    complexity: 20\n  )\n}\n",
		},
		{
			name: "field directive breaks",
			in:   `type Q { someRatherLongFieldName(argumentOne: String): String @deprecated(reason: "use the other field that replaces this one") }`,
			want: "type Q {\n  someRatherLongFieldName(argumentOne: String): String @deprecated(\n    reason: \"use the other field that replaces this one\"\n  )\n}\n",
		},
		{
			name: "enum value directive breaks",
			opts: Options{MaxWidth: 30},
			in:   `enum E { SOMEWHAT_LONG_VALUE @deprecated(reason: "x") }`,
			want: "enum E {\n  SOMEWHAT_LONG_VALUE @deprecated(\n    reason: \"x\"\n  )\n}\n",
		},
		{
			name: "trailing directives break arguments",
			opts: Options{MaxWidth: 30},
			in:   `type T { f(a: Int): Int @external @shareable }`,
			want: "type T {\n  f(\n    a: Int\n  ): Int @external @shareable\n}\n",
		},
		{
			name: "inline limit",
			opts: Options{InlineLimit: 1},
			in:   `scalar S @d(a: [1], b: [1, 2])`,
			want: "scalar S\n  @d(\n    a: [1]\n    b: [\n      1\n      2\n    ]\n  )\n",
		},
		{
			name: "descriptions",
			in: `"Single \"quoted\""
scalar A
"""
Multi
  line
"""
scalar B
# comment
#  two
scalar C`,
			want: "\"Single \\\"quoted\\\"\"\nscalar A\n\n\"\"\"\nMulti\n  line\n\"\"\"\nscalar B\n\n# comment\n#  two\nscalar C\n",
		},
		{
			name: "field descriptions",
			in: `type Q {
  "one"
  a: Int
  """two"""
  b: Int
  # three
  c: Int
}`,
			want: "type Q {\n  \"one\"\n  a: Int\n  \"\"\"two\"\"\"\n  b: Int\n  # three\n  c: Int\n}\n",
		},
		{
			name: "values",
			in:   `scalar S @d(i: -1, f: 1.5e3, s: "a\nb", n: null, b: false, e: RED)`,
			want: "scalar S\n  @d(i: -1, f: 1.5e3, s: \"a\\nb\", n: null, b: false, e: RED)\n",
		},
		{
			name: "empty document",
			in:   "# nothing\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(t, tt.in, tt.opts))
		})
	}
}

func TestPrintRespectsMaxWidth(t *testing.T) {
	for _, src := range corpus {
		for _, line := range strings.Split(format(t, src, Options{}), "\n") {
			if strings.ContainsAny(line, `"#`) {
				continue
			}
			assert.LessOrEqual(t, utf8.RuneCountInString(line), DefaultMaxWidth, line)
		}
	}
}

func TestPrintNonNullList(t *testing.T) {
	out := format(t, "type Q { tags: [String!]! }", Options{})
	assert.Equal(t, "type Q {\n  tags: [String!]!\n}\n", out)
}

func TestTypeString(t *testing.T) {
	typ := &ast.NonNullType{Elem: &ast.ListType{Elem: &ast.NonNullType{Elem: &ast.NamedType{Name: "String"}}}}
	assert.Equal(t, "[String!]!", TypeString(typ))
}

func TestPrintDefaultOptions(t *testing.T) {
	doc, err := parser.Parse("type Q { f(a: Int, b: Int): Int }")
	require.NoError(t, err)
	assert.Equal(t, New(Options{MaxWidth: DefaultMaxWidth, InlineLimit: DefaultInlineLimit}).Print(doc), Print(doc))
}

func TestFprint(t *testing.T) {
	doc, err := parser.Parse("scalar A scalar B")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Fprint(&buf, doc))
	assert.Equal(t, "scalar A\n\nscalar B\n", buf.String())
}

func TestPrintEmptyDocument(t *testing.T) {
	assert.Equal(t, "", Print(&ast.Document{}))
	assert.Equal(t, "", Print(nil))
}

var corpus = []string{
	`schema @link(url: "https://specs.apollo.dev/federation/v2.0", import: ["@key", "@shareable", "@tag"]) { query: Query }`,
	`
"""
The root of all queries.
"""
type Query @tag(name: "public") {
  "Look up a user"
  user(id: ID!, "include deleted users" withDeleted: Boolean = false): User @deprecated(reason: "use node")
  node(id: ID!): Node
  search(term: String!, filter: SearchFilter = {kinds: [USER, POST], limit: 10, order: {by: NAME, direction: ASC}}): [SearchResult!]!
}`,
	`interface Node { id: ID! }
interface Entity implements Node @key(fields: "id") @key(fields: "sku version") { id: ID! sku: String }`,
	`union SearchResult @tag(name: "a") @tag(name: "b") = User | Post | Comment | Attachment | Reaction | Notification | Organization`,
	`enum Direction { ASC DESC @deprecated }`,
	`input SearchFilter {
  kinds: [Kind!] = [USER]
  limit: Int = 25 @range(min: 1, max: 100)
  """
    Leading whitespace keeps
  on the first line
  """
  note: String = """with "quotes" and \""" inside"""
  ends: String = """ends with quote" """
}`,
	`directive @range(min: Int = 0, max: Int = 2147483647, "inclusive upper bound" inclusive: Boolean = true) repeatable on ARGUMENT_DEFINITION | INPUT_FIELD_DEFINITION`,
	`# A comment description
#
#  with a blank line
scalar JSON @specifiedBy(url: "https://www.ecma-international.org/publications-and-standards/standards/ecma-404/")`,
	`extend type Query { me: User } extend union SearchResult = Tag extend enum Direction @tag(name: "x") extend input SearchFilter { extra: [[Int!]]! = [[1], [2, 3]] }`,
	`type Matrix { cells(default: [[Float]] = [[1.0, 2.0], [3.0, 4.0]], meta: JSON = {a: [{b: {c: "d"}}], e: """x"""}): [[Float!]!]! }`,
	"scalar Unicode @d(s: \"caf\\u00e9 \\uD83D\\uDE00\", ctl: \"\\u0001\\t\")",
	"",
}

func TestPrintIsIdempotent(t *testing.T) {
	for _, opts := range []Options{{}, {MaxWidth: 20, InlineLimit: 1}, {MaxWidth: 200, InlineLimit: 10}} {
		for _, src := range corpus {
			first := format(t, src, opts)
			second := format(t, first, opts)
			assert.Equal(t, first, second, "not a fixed point for %q", src)
		}
	}
}

func TestPrintOutputIsValidGraphQL(t *testing.T) {
	for _, src := range corpus {
		out := format(t, src, Options{})
		_, err := gqlparser.ParseSchema(&gqlast.Source{Name: "printed.graphql", Input: out})
		assert.Nil(t, err, "output rejected by reference parser:\n%s", out)
	}
}

func TestPrintPreservesDefinitionsAcrossRoundTrip(t *testing.T) {
	for _, src := range corpus {
		doc, err := parser.Parse(src)
		require.NoError(t, err)
		reparsed, err := parser.Parse(Print(doc))
		require.NoError(t, err)

		require.Len(t, reparsed.Definitions, len(doc.Definitions))
		for i := range doc.Definitions {
			assert.Equal(t, doc.Definitions[i].DefinitionName(), reparsed.Definitions[i].DefinitionName())
		}
	}
}

func TestPrintBlockStringRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"two\nlines",
		"  leading",
		"  leading\nand more",
		"trailing quote\"",
		"trailing backslash\\",
		"has \"\"\" triple",
		"blank\n\nline",
		"indented\n    deeper\n  less",
	}
	for _, v := range values {
		doc := &ast.Document{Definitions: []ast.Definition{
			&ast.ScalarTypeDefinition{Name: "S", Description: &ast.Description{Value: v, Style: ast.BlockStyle}},
		}}
		reparsed, err := parser.Parse(Print(doc))
		require.NoError(t, err, v)

		desc := reparsed.Definitions[0].(*ast.ScalarTypeDefinition).Description
		require.NotNil(t, desc, v)
		assert.Equal(t, v, desc.Value)
	}
}
