package restyutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resty")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("old"), 0600))

	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	out.Write("0001.txt", "GET /")

	_, err = os.Stat(filepath.Join(dir, "stale.txt"))
	require.True(t, os.IsNotExist(err))

	contents, err := os.ReadFile(filepath.Join(dir, "0001.txt"))
	require.NoError(t, err)
	require.Equal(t, "GET /", string(contents))
}
