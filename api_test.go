package inodefs_test

import (
	"testing"

	"github.com/dargueta/inodefs"
	"github.com/stretchr/testify/assert"
)

func TestKindMode(t *testing.T) {
	assert.EqualValues(t, inodefs.S_IFREG, inodefs.KindRegular.Mode())
	assert.EqualValues(t, inodefs.S_IFDIR, inodefs.KindDirectory.Mode())
	assert.EqualValues(t, inodefs.S_IFLNK, inodefs.KindSymlink.Mode())
	assert.EqualValues(t, 0, inodefs.KindUnused.Mode())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "directory", inodefs.KindDirectory.String())
	assert.Equal(t, "Kind(9)", inodefs.Kind(9).String())
}

func TestInodePredicates(t *testing.T) {
	inode := inodefs.Inode{Kind: inodefs.KindSymlink}
	assert.True(t, inode.IsSymlink())
	assert.True(t, inode.IsAllocated())
	assert.False(t, inode.IsDir())
	assert.False(t, inode.IsFile())
	assert.False(t, inodefs.Inode{}.IsAllocated())
}
