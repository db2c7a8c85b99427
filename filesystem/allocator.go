package filesystem

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/inodefs"
)

// allocateBlock finds the lowest-numbered free block, marks it as in use, and
// returns its address. The block's contents are left as-is.
func (fs *FileSystem) allocateBlock() (inodefs.BlockAddress, error) {
	allocationMap, err := fs.readAllocationBitmap()
	if err != nil {
		return inodefs.NoBlock, err
	}

	for byteIndex, value := range allocationMap {
		if value == 0xff {
			continue
		}

		for bit := 0; bit < 8; bit++ {
			blockIndex := byteIndex*8 + bit
			if uint(blockIndex) >= fs.layout.totalBlocks {
				break
			}
			if bitmap.Get(allocationMap, blockIndex) {
				continue
			}

			address := inodefs.BlockAddress(blockIndex)
			err = fs.setBlockInUse(address, true)
			if err != nil {
				return inodefs.NoBlock, err
			}
			fs.log.WithField("block", address).Debug("allocated block")
			return address, nil
		}
	}
	return inodefs.NoBlock, inodefs.ErrNoFreeBlocks
}

// freeBlock returns a data block to the allocator. Metadata blocks can never be
// freed.
func (fs *FileSystem) freeBlock(address inodefs.BlockAddress) error {
	if uint(address) < fs.layout.metadataBlocks() || uint(address) >= fs.layout.totalBlocks {
		return inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"tried to free block %d, which isn't in the data region [%d, %d)",
				address,
				fs.layout.metadataBlocks(),
				fs.layout.totalBlocks,
			),
		)
	}
	return fs.setBlockInUse(address, false)
}

// isBlockInUse reports the allocation state of a block.
func (fs *FileSystem) isBlockInUse(address inodefs.BlockAddress) (bool, error) {
	raw, err := fs.readMetadata(uint(address)/8, 1)
	if err != nil {
		return false, err
	}
	return bitmap.Get(raw, int(address%8)), nil
}

// setBlockInUse flips a single bit in the on-disk bitmap.
func (fs *FileSystem) setBlockInUse(address inodefs.BlockAddress, inUse bool) error {
	byteOffset := uint(address) / 8
	raw, err := fs.readMetadata(byteOffset, 1)
	if err != nil {
		return err
	}
	bitmap.Set(raw, int(address%8), inUse)
	return fs.writeMetadata(byteOffset, raw)
}

// countFreeBlocks returns the number of unallocated blocks on the device.
func (fs *FileSystem) countFreeBlocks() (uint, error) {
	allocationMap, err := fs.readAllocationBitmap()
	if err != nil {
		return 0, err
	}

	free := uint(0)
	for i := 0; i < int(fs.layout.totalBlocks); i++ {
		if !bitmap.Get(allocationMap, i) {
			free++
		}
	}
	return free, nil
}

func (fs *FileSystem) readAllocationBitmap() (bitmap.Bitmap, error) {
	raw, err := fs.readMetadata(0, fs.layout.bitmapSize)
	if err != nil {
		return nil, err
	}
	return bitmap.Bitmap(raw), nil
}
