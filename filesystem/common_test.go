package filesystem

import (
	"testing"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFileSystem creates a freshly formatted file system on a zeroed
// in-memory device.
func newTestFileSystem(
	t *testing.T, bytesPerBlock, totalBlocks uint, maxDescriptors uint32,
) *FileSystem {
	store := blockstore.NewMemoryStore(bytesPerBlock, totalBlocks)
	fs, err := New(store, Options{})
	require.NoError(t, err, "failed to create driver")
	require.NoError(t, fs.Format(maxDescriptors), "format failed")
	return fs
}

// newDefaultTestFileSystem gives a 128-block device with 64-byte blocks and room
// for 16 inodes.
func newDefaultTestFileSystem(t *testing.T) *FileSystem {
	return newTestFileSystem(t, 64, 128, 16)
}

func freeBlocks(t *testing.T, fs *FileSystem) uint {
	free, err := fs.countFreeBlocks()
	require.NoError(t, err, "failed to count free blocks")
	return free
}

func entryNames(t *testing.T, fs *FileSystem, path string) []string {
	entries, err := fs.ListDirectory(path)
	require.NoErrorf(t, err, "failed to list %q", path)

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return names
}

func entryTarget(t *testing.T, fs *FileSystem, path, name string) inodefs.Inumber {
	entries, err := fs.ListDirectory(path)
	require.NoErrorf(t, err, "failed to list %q", path)

	index := findEntry(entries, name)
	require.GreaterOrEqualf(t, index, 0, "%q not found in %q", name, path)
	return entries[index].Inumber
}

func stat(t *testing.T, fs *FileSystem, path string) inodefs.Inode {
	inode, err := fs.Lstat(path)
	require.NoErrorf(t, err, "failed to stat %q", path)
	return inode
}

// createFileWithData creates a file and fills it with `data`.
func createFileWithData(t *testing.T, fs *FileSystem, path string, data []byte) {
	require.NoError(t, fs.CreateFile(path))
	require.NoError(t, fs.Truncate(path, int64(len(data))))

	fd, err := fs.Open(path)
	require.NoError(t, err)
	require.NoError(t, fs.Write(fd, 0, data))
	require.NoError(t, fs.Close(fd))
}

func readWholeFile(t *testing.T, fs *FileSystem, path string) []byte {
	fd, err := fs.Open(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, fs.Close(fd)) }()

	inode, err := fs.Stat(path)
	require.NoError(t, err)

	data, err := fs.Read(fd, 0, int(inode.Size))
	require.NoError(t, err)
	return data
}
