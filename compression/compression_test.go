package compression_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/inodefs/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressImage__EmptyImageShrinks(t *testing.T) {
	image := make([]byte, 64*1024)
	compressedBuffer := make([]byte, 4096)
	writer := bytewriter.New(compressedBuffer)

	n, err := compression.CompressImage(image, writer)
	require.NoError(t, err, "compression failed")
	assert.Less(t, n, int64(len(compressedBuffer)), "compressed output is too large")

	decompressed, err := compression.DecompressImage(bytes.NewReader(compressedBuffer[:n]))
	require.NoError(t, err, "decompression failed")
	assert.Equal(t, image, decompressed)
}

func TestCompressImage__MixedContent(t *testing.T) {
	image := bytes.Repeat([]byte("hello world!\x00\x00\x00\x00"), 300)

	var compressed bytes.Buffer
	n, err := compression.CompressImage(image, &compressed)
	require.NoError(t, err)
	assert.EqualValues(t, compressed.Len(), n)

	decompressed, err := compression.DecompressImage(&compressed)
	require.NoError(t, err)
	assert.Equal(t, image, decompressed)
}

func TestDecompressImage__NotGzip(t *testing.T) {
	_, err := compression.DecompressImage(bytes.NewReader([]byte("definitely not gzip")))
	assert.Error(t, err)
}
