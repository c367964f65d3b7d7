package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, s.Names())
	assert.Equal(t, path, s.Path())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")

	s := New(path)
	require.NoError(t, s.Set("", "  key-1\n"))
	require.NoError(t, s.Set("work", "key-2"))
	require.NoError(t, s.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "work"}, loaded.Names())

	key, err := loaded.Get(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "key-1", key)

	key, err = loaded.Get("work")
	require.NoError(t, err)
	assert.Equal(t, "key-2", key)
}

func TestGetUnknownProfile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "c.yaml"))

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNoProfile)
	assert.Contains(t, err.Error(), "missing")
}

func TestSetRejectsEmptyKey(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "c.yaml"))
	assert.Error(t, s.Set("default", "   "))
}

func TestRemove(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "c.yaml"))
	require.NoError(t, s.Set("default", "k"))

	assert.True(t, s.Remove(""))
	assert.False(t, s.Remove("default"))
	_, err := s.Get("default")
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
