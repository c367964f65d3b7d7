package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Protocol-Lattice/sdlprint"
	"github.com/Protocol-Lattice/sdlprint/credentials"
	"github.com/Protocol-Lattice/sdlprint/printer"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newApp(strings.NewReader(stdin), &out, &errOut).rootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrintStdin(t *testing.T) {
	out, errOut, err := run(t, "type Foo{bar:String}", "print")
	require.NoError(t, err)
	assert.Equal(t, "type Foo {\n  bar: String\n}\n", out)
	assert.Empty(t, errOut)
}

func TestPrintDashReadsStdin(t *testing.T) {
	out, _, err := run(t, "scalar Date", "print", "-")
	require.NoError(t, err)
	assert.Equal(t, "scalar Date\n", out)
}

func TestPrintSyntaxError(t *testing.T) {
	out, errOut, err := run(t, "type Foo { bar: }", "print")
	require.Error(t, err)

	var reported *reportedError
	assert.ErrorAs(t, err, &reported)
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(errOut, "ParseError at 1:17: "), errOut)
	assert.Equal(t, 1, strings.Count(errOut, "\n"))
}

func TestPrintFilesInArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.graphql", "type A { id: ID }")
	b := writeFile(t, dir, "b.graphql", "enum B { X Y }")

	out, _, err := run(t, "", "print", b, a)
	require.NoError(t, err)
	assert.Equal(t, "enum B {\n  X\n  Y\n}\n\ntype A {\n  id: ID\n}\n", out)

	again, err := sdlprint.Format(out, printer.Options{})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPrintSkipsEmptyDocuments(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.graphql", "scalar A")
	empty := writeFile(t, dir, "empty.graphql", "# nothing yet\n")
	b := writeFile(t, dir, "b.graphql", "scalar B")

	out, _, err := run(t, "", "print", a, empty, b)
	require.NoError(t, err)
	assert.Equal(t, "scalar A\n\nscalar B\n", out)
}

func TestPrintNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.graphql", "scalar Date")
	bad := writeFile(t, dir, "bad.graphql", "type Foo {")

	out, errOut, err := run(t, "", "print", good, bad)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "bad.graphql: ParseError at 1:11: ")
}

func TestPrintMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.graphql")

	out, errOut, err := run(t, "", "print", missing)
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(errOut, "IOError: "), errOut)
	assert.Contains(t, errOut, "missing.graphql")
}

func TestPrintStdinTwice(t *testing.T) {
	_, _, err := run(t, "scalar A", "print", "-", "-")
	assert.Error(t, err)
}

func TestPrintMaxWidthFlag(t *testing.T) {
	src := "type Q { f(first: Int, after: String): Int }"

	out, _, err := run(t, src, "print", "--max-width", "20")
	require.NoError(t, err)
	assert.Equal(t, "type Q {\n  f(\n    first: Int\n    after: String\n  ): Int\n}\n", out)
}

func TestNoSubcommandShowsHelp(t *testing.T) {
	out, _, err := run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "print")
	assert.Contains(t, out, "login")
}

func TestVerboseAndQuietAreExclusive(t *testing.T) {
	for _, args := range [][]string{
		{"--verbose", "--quiet", "print"},
		{"--debug", "--silent", "print"},
		{"-v", "--silent", "print"},
	} {
		_, _, err := run(t, "scalar A", args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestVerbosityAliases(t *testing.T) {
	out, _, err := run(t, "scalar A", "--debug", "print")
	require.NoError(t, err)
	assert.Equal(t, "scalar A\n", out)

	out, _, err = run(t, "scalar A", "--silent", "print")
	require.NoError(t, err)
	assert.Equal(t, "scalar A\n", out)
}

func TestLoginWithFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	_, _, err := run(t, "", "login", "--credentials", path, "--api-key", "secret", "--profile", "work")
	require.NoError(t, err)

	store, err := credentials.Load(path)
	require.NoError(t, err)
	key, err := store.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}

func TestLoginFromStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	_, _, err := run(t, "from-stdin\nignored\n", "login", "--credentials", path)
	require.NoError(t, err)

	store, err := credentials.Load(path)
	require.NoError(t, err)
	key, err := store.Get(credentials.DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", key)
}

func TestLoginWithoutKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	_, _, err := run(t, "", "login", "--credentials", path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestLoginRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	_, _, err := run(t, "", "login", "--credentials", path, "--api-key", "k")
	require.NoError(t, err)

	_, _, err = run(t, "", "login", "--credentials", path, "--remove")
	require.NoError(t, err)

	store, err := credentials.Load(path)
	require.NoError(t, err)
	assert.Empty(t, store.Names())
}

func TestLoginList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	_, _, err := run(t, "", "login", "--credentials", path, "--api-key", "sk-live-1234", "--profile", "work")
	require.NoError(t, err)
	_, _, err = run(t, "", "login", "--credentials", path, "--api-key", "abc")
	require.NoError(t, err)

	out, _, err := run(t, "", "login", "--credentials", path, "--list")
	require.NoError(t, err)
	assert.Equal(t, "default\t***\nwork\t********1234\n", out)
}

func TestLoginListAndRemoveConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	_, _, err := run(t, "", "login", "--credentials", path, "--list", "--remove")
	assert.Error(t, err)
}

func TestLoginReplacesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	_, _, err := run(t, "", "login", "--credentials", path, "--api-key", "old")
	require.NoError(t, err)
	_, errOut, err := run(t, "", "login", "--credentials", path, "--api-key", "new")
	require.NoError(t, err)
	assert.Contains(t, errOut, "replacing stored key")

	store, err := credentials.Load(path)
	require.NoError(t, err)
	key, err := store.Get(credentials.DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "new", key)
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPrintWatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "schema.graphql", "scalar A")

	var out, errOut syncBuffer
	cmd := newApp(strings.NewReader(""), &out, &errOut).rootCmd()
	cmd.SetArgs([]string{"print", "--watch", path})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	assert.Eventually(t, func() bool {
		return out.String() == "scalar A\n"
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("scalar B"), 0o644))
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "scalar B\n")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
