package iox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMoveDirContents(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	require.NoError(t, WriteStreamToFile(filepath.Join(src, "a.txt"), strings.NewReader("a")))
	require.NoError(t, WriteStreamToFile(filepath.Join(src, "sub", "b.txt"), strings.NewReader("b")))
	require.True(t, IsFile(filepath.Join(src, "a.txt")))
	require.True(t, IsDir(filepath.Join(src, "sub")))

	require.NoError(t, MoveDirContents(src, dst))
	raw, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "b", string(raw))
	require.False(t, IsFile(filepath.Join(src, "a.txt")))

	// Moving onto existing entries fails
	require.NoError(t, WriteStreamToFile(filepath.Join(src, "a.txt"), strings.NewReader("again")))
	require.Error(t, MoveDirContents(src, dst))
}
