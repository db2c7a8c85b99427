package blockstore_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileStore__CreatesZeroedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")

	store, err := blockstore.OpenFileStore(path, 128, 16)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 128*16, info.Size())

	data := bytes.Repeat([]byte("abcd"), 32)
	require.NoError(t, store.WriteBlock(15, data))
	require.NoError(t, store.Close())

	// Reopen and infer the block count from the file size.
	store, err = blockstore.OpenFileStore(path, 128, 0)
	require.NoError(t, err)
	defer store.Close()
	assert.EqualValues(t, 16, store.TotalBlocks())

	buffer := make([]byte, 128)
	require.NoError(t, store.ReadBlock(15, buffer))
	assert.Equal(t, data, buffer)
}

func TestOpenFileStore__CantInferFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.img")
	_, err := blockstore.OpenFileStore(path, 512, 0)
	assert.ErrorIs(t, err, inodefs.ErrInvalidArgument)
}

func TestOpenFileStore__ZeroBlockSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	_, err := blockstore.OpenFileStore(path, 0, 10)
	assert.ErrorIs(t, err, inodefs.ErrInvalidArgument)
}
