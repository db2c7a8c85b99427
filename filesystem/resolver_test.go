package filesystem

import (
	"fmt"
	"testing"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	testCases := []struct {
		path   string
		parent string
		leaf   string
	}{
		{"a", "", "a"},
		{"/a", "/", "a"},
		{"/a/b", "/a", "b"},
		{"a/b/c", "a/b", "c"},
		{"/a/b/", "/a", "b"},
		{"//a", "/", "a"},
		{"/a//b", "/a", "b"},
		{"../x", "..", "x"},
	}

	for _, tc := range testCases {
		parent, leaf := splitPath(tc.path)
		assert.Equalf(t, tc.parent, parent, "wrong parent for %q", tc.path)
		assert.Equalf(t, tc.leaf, leaf, "wrong leaf for %q", tc.path)
	}
}

func TestIsRootPath(t *testing.T) {
	assert.True(t, isRootPath("/"))
	assert.True(t, isRootPath("///"))
	assert.False(t, isRootPath(""))
	assert.False(t, isRootPath("/a"))
}

func TestLookup__AbsoluteAndRelative(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/a/b"))
	require.NoError(t, fs.CreateFile("/a/b/f"))

	absolute := stat(t, fs, "/a/b/f")
	assert.Equal(t, absolute, stat(t, fs, "a/b/f"))
	assert.Equal(t, absolute, stat(t, fs, "/a/./b/../b/f"))

	require.NoError(t, fs.Chdir("/a"))
	assert.Equal(t, absolute, stat(t, fs, "b/f"))
	assert.Equal(t, absolute, stat(t, fs, "../a/b/f"))
	assert.Equal(t, stat(t, fs, "/a"), stat(t, fs, ""), "empty path is the current directory")
	assert.Equal(t, stat(t, fs, "/"), stat(t, fs, ".."))
}

func TestLookup__Missing(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	_, err := fs.Stat("/nope")
	assert.ErrorIs(t, err, inodefs.ErrPathNotFound)

	_, err = fs.Stat("/nope/deeper")
	assert.ErrorIs(t, err, inodefs.ErrPathNotFound)
}

func TestLookup__FileAsIntermediate(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.CreateFile("/f"))

	_, err := fs.Stat("/f/x")
	assert.ErrorIs(t, err, inodefs.ErrNotADirectory)

	err = fs.CreateFile("/f/x")
	assert.ErrorIs(t, err, inodefs.ErrNotADirectory)
}

func TestLookup__SymlinkInMiddleOfPath(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.Mkdir("/a"))
	require.NoError(t, fs.Mkdir("/a/b"))
	require.NoError(t, fs.Symlink("/a", "/link"))

	assert.Equal(t, stat(t, fs, "/a/b"), stat(t, fs, "/link/b"))
	assert.Equal(t, []string{".", "..", "b"}, entryNames(t, fs, "/link"))

	// Lstat only skips the last component.
	assert.True(t, stat(t, fs, "/link").IsSymlink())
	assert.True(t, stat(t, fs, "/link/b").IsDir())
}

func TestLookup__RelativeSymlinkUsesContainingDirectory(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.Mkdir("/dir"))
	require.NoError(t, fs.CreateFile("/dir/target"))
	require.NoError(t, fs.Symlink("target", "/dir/rel"))
	require.NoError(t, fs.Symlink("../dir/target", "/dir/up"))

	target := stat(t, fs, "/dir/target")

	followed, err := fs.Stat("/dir/rel")
	require.NoError(t, err)
	assert.Equal(t, target, followed)

	followed, err = fs.Stat("/dir/up")
	require.NoError(t, err)
	assert.Equal(t, target, followed)
}

func TestLookup__DanglingSymlink(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.Symlink("/nowhere", "/dangling"))

	_, err := fs.Stat("/dangling")
	assert.ErrorIs(t, err, inodefs.ErrPathNotFound)

	link, err := fs.Lstat("/dangling")
	require.NoError(t, err)
	assert.True(t, link.IsSymlink())
}

// makeSymlinkChain creates /target and links /l0 -> /target, /l1 -> /l0, ...
func makeSymlinkChain(t *testing.T, fs *FileSystem, length int) {
	require.NoError(t, fs.CreateFile("/target"))
	previous := "/target"
	for i := 0; i < length; i++ {
		name := fmt.Sprintf("/l%d", i)
		require.NoError(t, fs.Symlink(previous, name))
		previous = name
	}
}

func TestLookup__SymlinkDepthBound(t *testing.T) {
	fs := newTestFileSystem(t, 64, 256, 24)
	makeSymlinkChain(t, fs, DefaultMaxSymlinkDepth+1)
	target := stat(t, fs, "/target")

	// /l6 takes 7 hops, the most allowed with a bound of 8.
	followed, err := fs.Stat(fmt.Sprintf("/l%d", DefaultMaxSymlinkDepth-2))
	require.NoError(t, err)
	assert.Equal(t, target, followed)

	_, err = fs.Stat(fmt.Sprintf("/l%d", DefaultMaxSymlinkDepth-1))
	assert.ErrorIs(t, err, inodefs.ErrMaxSymlinkDepthExceeded)

	_, err = fs.Open(fmt.Sprintf("/l%d", DefaultMaxSymlinkDepth))
	assert.ErrorIs(t, err, inodefs.ErrMaxSymlinkDepthExceeded)
}

func TestLookup__SymlinkCycle(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.Symlink("/b", "/a"))
	require.NoError(t, fs.Symlink("/a", "/b"))

	_, err := fs.Open("/a")
	assert.ErrorIs(t, err, inodefs.ErrMaxSymlinkDepthExceeded)

	_, err = fs.Open("/a/x")
	assert.ErrorIs(t, err, inodefs.ErrMaxSymlinkDepthExceeded)
}

func TestLookup__CustomSymlinkDepth(t *testing.T) {
	store := blockstore.NewMemoryStore(64, 128)
	fs, err := New(store, Options{MaxSymlinkDepth: 2})
	require.NoError(t, err)
	require.NoError(t, fs.Format(8))
	makeSymlinkChain(t, fs, 2)

	_, err = fs.Stat("/l0")
	assert.NoError(t, err)

	_, err = fs.Stat("/l1")
	assert.ErrorIs(t, err, inodefs.ErrMaxSymlinkDepthExceeded)
}
