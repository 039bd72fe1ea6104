package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStorage(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")

		s, err := NewFileStorage("durable", dir)
		require.NoError(t, err)
		assert.Equal(t, "durable", s.Name())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("requires a directory", func(t *testing.T) {
		_, err := NewFileStorage("durable", "")
		require.Error(t, err)
	})

	t.Run("does not create the document until first write", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStorage("durable", dir)
		require.NoError(t, err)

		_, err = os.Stat(s.Path())
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileStorage_ReadWrite(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)

		value, ok, err := s.Read("backoffice_token")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, value)
	})

	t.Run("round trips values", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Write("backoffice_token", "tok"))
		require.NoError(t, s.Write("backoffice_user", `{"id":1}`))

		value, ok, err := s.Read("backoffice_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok", value)

		value, ok, err = s.Read("backoffice_user")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"id":1}`, value)
	})

	t.Run("values survive a new instance", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStorage("durable", dir)
		require.NoError(t, err)
		require.NoError(t, s.Write("backoffice_token", "tok"))

		reopened, err := NewFileStorage("durable", dir)
		require.NoError(t, err)
		value, ok, err := reopened.Read("backoffice_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok", value)
	})

	t.Run("document is private and written atomically", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStorage("durable", dir)
		require.NoError(t, err)
		require.NoError(t, s.Write("backoffice_token", "tok"))

		info, err := os.Stat(s.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		_, err = os.Stat(s.Path() + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("corrupt document is reported", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))

		_, _, err = s.Read("backoffice_token")
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("write replaces a corrupt document", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))

		require.NoError(t, s.Write("backoffice_token", "tok"))

		value, ok, err := s.Read("backoffice_token")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tok", value)
	})
}

func TestFileStorage_Remove(t *testing.T) {
	t.Run("removes only the given key", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)
		require.NoError(t, s.Write("a", "1"))
		require.NoError(t, s.Write("b", "2"))

		require.NoError(t, s.Remove("a"))

		_, ok, err := s.Read("a")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = s.Read("b")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing key is not an error", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)

		require.NoError(t, s.Remove("missing"))
	})

	t.Run("corrupt document is dropped", func(t *testing.T) {
		s, err := NewFileStorage("durable", t.TempDir())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0600))

		require.NoError(t, s.Remove("backoffice_token"))

		_, err = os.Stat(s.Path())
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFileStorage_Clear(t *testing.T) {
	s, err := NewFileStorage("durable", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Write("a", "1"))

	require.NoError(t, s.Clear())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	require.NoError(t, s.Clear())

	_, ok, err := s.Read("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage("ephemeral")
	assert.Equal(t, "ephemeral", m.Name())

	require.NoError(t, m.Write("a", "1"))
	value, ok, err := m.Read("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, m.Remove("a"))
	require.NoError(t, m.Remove("a"))
	assert.Equal(t, 0, m.Len())

	require.NoError(t, m.Write("a", "1"))
	require.NoError(t, m.Write("b", "2"))
	require.NoError(t, m.Clear())
	assert.Equal(t, 0, m.Len())
}

func TestDefaultEphemeralDir(t *testing.T) {
	t.Run("uses XDG_RUNTIME_DIR", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		assert.Equal(t, filepath.Join("/run/user/1000", "backoffice"), DefaultEphemeralDir())
	})

	t.Run("falls back to temp dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		assert.Contains(t, DefaultEphemeralDir(), filepath.Join(os.TempDir(), "backoffice-"))
	})
}
