package blockstore

import (
	"fmt"
	"os"

	"github.com/dargueta/inodefs"
	"github.com/hashicorp/go-multierror"
)

// FileStore is a [StreamStore] persisted to a file on the host.
type FileStore struct {
	*StreamStore
	file *os.File
}

// OpenFileStore opens or creates the image at `path`. If the file is smaller
// than `bytesPerBlock * totalBlocks` it's extended with null bytes, so a new
// image always starts out zeroed.
//
// If `totalBlocks` is 0 the block count is inferred from the size of an existing
// file, rounded down to the nearest block.
func OpenFileStore(path string, bytesPerBlock, totalBlocks uint) (*FileStore, error) {
	if bytesPerBlock == 0 {
		return nil, inodefs.ErrInvalidArgument.WithMessage("block size can't be 0")
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, inodefs.ErrIOFailed.Wrap(err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, closeAfterError(file, inodefs.ErrIOFailed.Wrap(err))
	}

	if totalBlocks == 0 {
		totalBlocks = uint(info.Size() / int64(bytesPerBlock))
		if totalBlocks == 0 {
			return nil, closeAfterError(
				file,
				inodefs.ErrInvalidArgument.WithMessage(
					fmt.Sprintf(
						"can't infer block count: %q is smaller than one %d-byte block",
						path,
						bytesPerBlock,
					),
				),
			)
		}
	}

	wantSize := int64(bytesPerBlock) * int64(totalBlocks)
	if info.Size() < wantSize {
		err = file.Truncate(wantSize)
		if err != nil {
			return nil, closeAfterError(file, inodefs.ErrIOFailed.Wrap(err))
		}
	}

	return &FileStore{
		StreamStore: WrapStream(file, bytesPerBlock, totalBlocks),
		file:        file,
	}, nil
}

// Close syncs the image to disk and closes it. The store must not be used
// afterwards.
func (store *FileStore) Close() error {
	var result error
	if err := store.file.Sync(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := store.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if result != nil {
		return inodefs.ErrIOFailed.Wrap(result)
	}
	return nil
}

func closeAfterError(file *os.File, cause error) error {
	closeErr := file.Close()
	if closeErr != nil {
		return multierror.Append(cause, closeErr)
	}
	return cause
}
