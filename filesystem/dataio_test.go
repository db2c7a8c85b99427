package filesystem

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/dargueta/inodefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite__RoundTripAcrossBlocks(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.CreateFile("/f"))

	// 1000 bytes needs 16 blocks, so this covers the indirect region too.
	const fileSize = 1000
	require.NoError(t, fs.Truncate("/f", fileSize))
	fd, err := fs.Open("/f")
	require.NoError(t, err)

	shadow := make([]byte, fileSize)
	rng := rand.New(rand.NewSource(1234))

	for i := 0; i < 200; i++ {
		offset := rng.Intn(fileSize)
		length := rng.Intn(fileSize - offset + 1)
		data := make([]byte, length)
		rng.Read(data)

		require.NoError(t, fs.Write(fd, int64(offset), data))
		copy(shadow[offset:], data)

		readBack, err := fs.Read(fd, int64(offset), length)
		require.NoError(t, err)
		require.Equalf(t, data, readBack, "iteration %d: offset %d, length %d", i, offset, length)
	}

	everything, err := fs.Read(fd, 0, fileSize)
	require.NoError(t, err)
	assert.Equal(t, shadow, everything)
}

func TestReadWrite__PartialBlockPreservesNeighbors(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	createFileWithData(t, fs, "/f", bytes.Repeat([]byte{'x'}, 192))

	fd, err := fs.Open("/f")
	require.NoError(t, err)
	require.NoError(t, fs.Write(fd, 60, []byte("abcdefgh")))

	data, err := fs.Read(fd, 0, 192)
	require.NoError(t, err)

	expected := bytes.Repeat([]byte{'x'}, 192)
	copy(expected[60:], "abcdefgh")
	assert.Equal(t, expected, data)
}

func TestReadWrite__OutOfBounds(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.CreateFile("/f"))
	require.NoError(t, fs.Truncate("/f", 30))

	fd, err := fs.Open("/f")
	require.NoError(t, err)

	_, err = fs.Read(fd, 20, 11)
	assert.ErrorIs(t, err, inodefs.ErrOutOfBounds)

	err = fs.Write(fd, 30, []byte{1})
	assert.ErrorIs(t, err, inodefs.ErrOutOfBounds, "write must not grow the file")
	assert.EqualValues(t, 30, stat(t, fs, "/f").Size)

	_, err = fs.Read(fd, -1, 1)
	assert.ErrorIs(t, err, inodefs.ErrInvalidArgument)
	_, err = fs.Read(fd, 0, -1)
	assert.ErrorIs(t, err, inodefs.ErrInvalidArgument)
	err = fs.Write(fd, -5, []byte{1})
	assert.ErrorIs(t, err, inodefs.ErrInvalidArgument)
}

func TestReadWrite__ZeroLength(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	require.NoError(t, fs.CreateFile("/f"))

	fd, err := fs.Open("/f")
	require.NoError(t, err)

	data, err := fs.Read(fd, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, fs.Write(fd, 0, nil))
}

func TestReadData__ShortMappingIsCorruption(t *testing.T) {
	fs := newDefaultTestFileSystem(t)
	inode := inodefs.Inode{ID: 5, Kind: inodefs.KindRegular, Size: 100}

	_, err := fs.readData(inode, 0, 100)
	assert.ErrorIs(t, err, inodefs.ErrFileSystemCorrupted)
}
