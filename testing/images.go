// Package testing contains helpers for building block stores in tests.
package testing

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/dargueta/inodefs/blockstore"
	"github.com/dargueta/inodefs/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateRandomImage returns `bytesPerBlock * totalBlocks` random bytes. It's
// guaranteed to either return a valid slice or fail the test and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}

// NewStoreOverImage creates a block store backed directly by `image`. Writes to
// the store modify the slice, so tests can inspect the raw bytes afterwards.
func NewStoreOverImage(
	image []byte, bytesPerBlock, totalBlocks uint, t *testing.T,
) *blockstore.StreamStore {
	require.EqualValues(
		t,
		bytesPerBlock*totalBlocks,
		len(image),
		"image is the wrong size for %d blocks of %d B",
		totalBlocks,
		bytesPerBlock,
	)
	return blockstore.WrapStream(
		bytesextra.NewReadWriteSeeker(image), bytesPerBlock, totalBlocks,
	)
}

// NewRandomStore creates an in-memory store filled with garbage, for checking
// that nothing depends on the device starting out zeroed.
func NewRandomStore(bytesPerBlock, totalBlocks uint, t *testing.T) *blockstore.StreamStore {
	image := CreateRandomImage(bytesPerBlock, totalBlocks, t)
	return NewStoreOverImage(image, bytesPerBlock, totalBlocks, t)
}

// LoadCompressedImage decompresses an image created with
// [compression.CompressImage] and returns a store over the raw data. Writes to
// the store don't affect `compressedImageBytes`.
func LoadCompressedImage(
	t *testing.T, compressedImageBytes []byte, bytesPerBlock, totalBlocks uint,
) *blockstore.StreamStore {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImage(bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)
	return NewStoreOverImage(imageBytes, bytesPerBlock, totalBlocks, t)
}
