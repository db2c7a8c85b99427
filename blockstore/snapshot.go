package blockstore

import (
	"fmt"
	"io"

	"github.com/dargueta/inodefs"
	"github.com/dargueta/inodefs/compression"
)

// Export writes a compressed copy of every block in `store` to `output`. It
// returns the number of compressed bytes written.
func Export(store BlockStore, output io.Writer) (int64, error) {
	bytesPerBlock := store.BytesPerBlock()
	image := make([]byte, bytesPerBlock*store.TotalBlocks())

	for i := uint(0); i < store.TotalBlocks(); i++ {
		start := i * bytesPerBlock
		err := store.ReadBlock(BlockID(i), image[start:start+bytesPerBlock])
		if err != nil {
			return 0, err
		}
	}

	n, err := compression.CompressImage(image, output)
	if err != nil {
		return n, inodefs.ErrIOFailed.Wrap(err)
	}
	return n, nil
}

// Import overwrites every block in `store` with an image previously written by
// [Export]. The decompressed image must be exactly the size of the store.
func Import(input io.Reader, store BlockStore) error {
	image, err := compression.DecompressImage(input)
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(err)
	}

	bytesPerBlock := store.BytesPerBlock()
	expectedSize := bytesPerBlock * store.TotalBlocks()
	if uint(len(image)) != expectedSize {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"image is %d bytes but the store holds %d (%d blocks of %d B)",
				len(image),
				expectedSize,
				store.TotalBlocks(),
				bytesPerBlock,
			),
		)
	}

	for i := uint(0); i < store.TotalBlocks(); i++ {
		start := i * bytesPerBlock
		err = store.WriteBlock(BlockID(i), image[start:start+bytesPerBlock])
		if err != nil {
			return err
		}
	}
	return nil
}
