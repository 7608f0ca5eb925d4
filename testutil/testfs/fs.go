package testfs

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func NewTempDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "bootsecttest_")
	require.NoError(t, err)
	return dir, func() {
		require.NoError(t, os.RemoveAll(dir))
	}
}

func NewTempFile(t *testing.T) (*os.File, func()) {
	f, err := ioutil.TempFile("", "bootsecttest_*.img")
	require.NoError(t, err)
	return f, func() {
		require.NoError(t, f.Close())
		require.NoError(t, os.Remove(f.Name()))
	}
}

// NewDiskImage creates a temp file of size bytes filled with fill.
func NewDiskImage(t *testing.T, size int, fill byte) (string, func()) {
	f, done := NewTempFile(t)
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = fill
	}
	_, err := f.Write(buf)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	return f.Name(), done
}
