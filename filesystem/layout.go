package filesystem

import (
	"fmt"

	"github.com/dargueta/inodefs"
)

// InodeSize is the size of a single inode record on disk: kind, ID, link count,
// size, the direct block pointers and the indirect block pointer, all u32.
const InodeSize = 4 * (4 + inodefs.DirectBlocks + 1)

// DentrySize is the size of a single directory entry on disk: a u32 inumber
// followed by the NUL-padded name.
const DentrySize = 4 + inodefs.MaxNameLength

// blockPointerSize is the size of one block address inside an indirect block.
const blockPointerSize = 4

// layout gives the position of every metadata structure for a particular device
// geometry and inode count.
type layout struct {
	bytesPerBlock  uint
	totalBlocks    uint
	maxDescriptors uint
	bitmapSize     uint
}

func newLayout(bytesPerBlock, totalBlocks, maxDescriptors uint) layout {
	return layout{
		bytesPerBlock:  bytesPerBlock,
		totalBlocks:    totalBlocks,
		maxDescriptors: maxDescriptors,
		bitmapSize:     (totalBlocks + 7) / 8,
	}
}

// descriptorCountOffset is where the u32 inode count lives. It only depends on
// the number of blocks, so it can be found before the rest of the layout is
// known.
func (l layout) descriptorCountOffset() uint {
	return l.bitmapSize
}

func (l layout) inodeTableOffset() uint {
	return l.descriptorCountOffset() + 4
}

func (l layout) inodeOffset(id inodefs.Inumber) uint {
	return l.inodeTableOffset() + uint(id)*InodeSize
}

// metadataSize is the size of the metadata region in bytes, not rounded up.
func (l layout) metadataSize() uint {
	return l.inodeTableOffset() + l.maxDescriptors*InodeSize
}

// metadataBlocks is the number of blocks reserved for metadata. These are
// always the first blocks on the device.
func (l layout) metadataBlocks() uint {
	return (l.metadataSize() + l.bytesPerBlock - 1) / l.bytesPerBlock
}

// pointersPerIndirectBlock gives the number of block addresses that fit in an
// indirect block.
func (l layout) pointersPerIndirectBlock() uint {
	return l.bytesPerBlock / blockPointerSize
}

// maxBlocksPerFile is the most blocks a single inode can map.
func (l layout) maxBlocksPerFile() uint {
	return inodefs.DirectBlocks + l.pointersPerIndirectBlock()
}

// blocksForSize gives the number of blocks needed to hold `size` bytes.
func (l layout) blocksForSize(size uint64) uint64 {
	bytesPerBlock := uint64(l.bytesPerBlock)
	return (size + bytesPerBlock - 1) / bytesPerBlock
}

// validate checks that a device can hold this layout with room left over for
// at least one data block.
func (l layout) validate() error {
	if l.maxDescriptors < 1 {
		return inodefs.ErrInvalidArgument.WithMessage(
			"need space for at least one inode (the root directory)",
		)
	}
	if l.metadataBlocks() >= l.totalBlocks {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"metadata for %d inodes needs %d blocks, leaving no data blocks on a"+
					" %d-block device",
				l.maxDescriptors,
				l.metadataBlocks(),
				l.totalBlocks,
			),
		)
	}
	return nil
}

// validateGeometry checks that a block size can be used at all.
func validateGeometry(bytesPerBlock, totalBlocks uint) error {
	if bytesPerBlock < DentrySize || bytesPerBlock%blockPointerSize != 0 {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block size must be a multiple of %d and at least %d, got %d",
				blockPointerSize,
				DentrySize,
				bytesPerBlock,
			),
		)
	}
	if totalBlocks < 2 {
		return inodefs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("device must have at least 2 blocks, got %d", totalBlocks),
		)
	}
	return nil
}
