package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptPicker_Open(t *testing.T) {
	_, ok, err := PromptPicker{Path: "  "}.Open()
	require.NoError(t, err)
	assert.False(t, ok)

	path, ok, err := PromptPicker{Path: "in.csv"}.Open()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "in.csv", path)
}

func TestPromptPicker_Save(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "members.csv")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	fresh := filepath.Join(dir, "new.csv")
	path, ok, err := PromptPicker{Path: fresh}.Save("ignored.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fresh, path)

	_, ok, err = PromptPicker{Path: existing}.Save("")
	require.NoError(t, err)
	assert.False(t, ok, "no prompt available means no overwrite")

	_, ok, err = PromptPicker{Path: existing, Force: true}.Save("")
	require.NoError(t, err)
	assert.True(t, ok)

	var out bytes.Buffer
	_, ok, err = PromptPicker{Path: existing, In: strings.NewReader("n\n"), Out: &out}.Save("")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "overwrite?")

	_, ok, err = PromptPicker{Path: existing, In: strings.NewReader("Yes"), Out: &out}.Save("")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteText(path, "first"))
	require.NoError(t, WriteText(path, "second"))

	got, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestReadText_Missing(t *testing.T) {
	_, err := ReadText(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
