// Package blockstore provides fixed-size block storage for the file system.
// Storage is only ever accessed in whole blocks, addressed by index.
//
// All block indices begin at 0.
package blockstore

import (
	"fmt"
	"io"

	"github.com/dargueta/inodefs"
	"github.com/xaionaro-go/bytesextra"
)

type BlockID uint

// BlockStore is the only storage primitive the file system relies on. The
// following guarantees apply to implementations:
//
//   - `index` is checked against [0, TotalBlocks()) and rejected with
//     [inodefs.ErrInvalidArgument] if it's out of range.
//   - `buffer` and `data` must be exactly BytesPerBlock() bytes.
type BlockStore interface {
	BytesPerBlock() uint
	TotalBlocks() uint
	ReadBlock(index BlockID, buffer []byte) error
	WriteBlock(index BlockID, data []byte) error
}

// StreamStore is a [BlockStore] on top of any seekable stream. Block N starts at
// byte N * BytesPerBlock of the stream.
type StreamStore struct {
	stream        io.ReadWriteSeeker
	bytesPerBlock uint
	totalBlocks   uint
}

// WrapStream creates a [StreamStore] over `stream`. The stream must already be at
// least `bytesPerBlock * totalBlocks` bytes long.
func WrapStream(stream io.ReadWriteSeeker, bytesPerBlock, totalBlocks uint) *StreamStore {
	return &StreamStore{
		stream:        stream,
		bytesPerBlock: bytesPerBlock,
		totalBlocks:   totalBlocks,
	}
}

// NewMemoryStore creates a store held entirely in memory. All blocks start out
// zeroed.
func NewMemoryStore(bytesPerBlock, totalBlocks uint) *StreamStore {
	backing := make([]byte, bytesPerBlock*totalBlocks)
	return WrapStream(bytesextra.NewReadWriteSeeker(backing), bytesPerBlock, totalBlocks)
}

// BytesPerBlock returns the size of a single block, in bytes.
func (store *StreamStore) BytesPerBlock() uint {
	return store.bytesPerBlock
}

// TotalBlocks returns the number of blocks in the store.
func (store *StreamStore) TotalBlocks() uint {
	return store.totalBlocks
}

// Size gives the size of the store, in bytes (not blocks!).
func (store *StreamStore) Size() int64 {
	return int64(store.bytesPerBlock) * int64(store.totalBlocks)
}

func (store *StreamStore) ReadBlock(index BlockID, buffer []byte) error {
	err := checkBlockIO(store, index, len(buffer))
	if err != nil {
		return err
	}

	err = store.seekToBlock(index)
	if err != nil {
		return err
	}

	_, err = io.ReadFull(store.stream, buffer)
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(
			fmt.Errorf("failed to read block %d: %w", index, err),
		)
	}
	return nil
}

func (store *StreamStore) WriteBlock(index BlockID, data []byte) error {
	err := checkBlockIO(store, index, len(data))
	if err != nil {
		return err
	}

	err = store.seekToBlock(index)
	if err != nil {
		return err
	}

	_, err = store.stream.Write(data)
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(
			fmt.Errorf("failed to write block %d: %w", index, err),
		)
	}
	return nil
}

// seekToBlock sets the stream pointer to the offset of a block.
func (store *StreamStore) seekToBlock(index BlockID) error {
	blockOffset := int64(index) * int64(store.bytesPerBlock)
	_, err := store.stream.Seek(blockOffset, io.SeekStart)
	if err != nil {
		return inodefs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// checkBlockIO verifies that a buffer of `bufferSize` bytes can be transferred
// to or from block `index` of `store`.
func checkBlockIO(store BlockStore, index BlockID, bufferSize int) error {
	if uint(index) >= store.TotalBlocks() {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"invalid block number: %d not in range [0, %d)",
				index,
				store.TotalBlocks(),
			),
		)
	}
	if uint(bufferSize) != store.BytesPerBlock() {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"buffer must be exactly one block (%d B), got %d",
				store.BytesPerBlock(),
				bufferSize,
			),
		)
	}
	return nil
}
