package filesystem

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/inodefs"
)

// resolveBlocks translates logical blocks [start, end) of a file into physical
// addresses. It stops at the first unmapped block, so the result may be shorter
// than requested; callers must check its length.
func (fs *FileSystem) resolveBlocks(
	inode inodefs.Inode, start, end uint,
) ([]inodefs.BlockAddress, error) {
	if end > fs.layout.maxBlocksPerFile() {
		end = fs.layout.maxBlocksPerFile()
	}
	if start >= end {
		return nil, nil
	}

	addresses := make([]inodefs.BlockAddress, 0, end-start)
	var indirect []byte

	for logical := start; logical < end; logical++ {
		var address inodefs.BlockAddress

		if logical < inodefs.DirectBlocks {
			address = inode.Direct[logical]
		} else {
			if inode.Indirect == inodefs.NoBlock {
				break
			}
			if indirect == nil {
				indirect = make([]byte, fs.layout.bytesPerBlock)
				err := fs.readBlock(inode.Indirect, indirect)
				if err != nil {
					return nil, err
				}
			}
			address = getPointer(indirect, logical-inodefs.DirectBlocks)
		}

		if address == inodefs.NoBlock {
			break
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

// growByOneBlock maps `address` as logical block `mapped` of the inode, where
// `mapped` is the number of blocks the inode currently has. The indirect block
// is allocated the first time it's needed.
//
// The updated inode is returned but not written back.
func (fs *FileSystem) growByOneBlock(
	inode inodefs.Inode, mapped uint, address inodefs.BlockAddress,
) (inodefs.Inode, error) {
	if mapped < inodefs.DirectBlocks {
		inode.Direct[mapped] = address
		return inode, nil
	}

	slot := mapped - inodefs.DirectBlocks
	if slot >= fs.layout.pointersPerIndirectBlock() {
		return inode, inodefs.ErrOutOfCapacity.WithMessage(
			fmt.Sprintf(
				"inode %d can't map more than %d blocks",
				inode.ID,
				fs.layout.maxBlocksPerFile(),
			),
		)
	}

	indirect := make([]byte, fs.layout.bytesPerBlock)
	if inode.Indirect == inodefs.NoBlock {
		indirectAddress, err := fs.allocateBlock()
		if err != nil {
			return inode, err
		}
		inode.Indirect = indirectAddress
	} else {
		err := fs.readBlock(inode.Indirect, indirect)
		if err != nil {
			return inode, err
		}
	}

	setPointer(indirect, slot, address)
	return inode, fs.writeBlock(inode.Indirect, indirect)
}

// shrinkByOneBlock unmaps and frees the last of the inode's `mapped` blocks. The
// indirect block is freed once nothing in it is in use.
//
// The updated inode is returned but not written back.
func (fs *FileSystem) shrinkByOneBlock(
	inode inodefs.Inode, mapped uint,
) (inodefs.Inode, error) {
	if mapped == 0 {
		return inode, nil
	}

	last := mapped - 1
	if last < inodefs.DirectBlocks {
		address := inode.Direct[last]
		inode.Direct[last] = inodefs.NoBlock
		return inode, fs.freeMappedBlock(inode, address)
	}

	if inode.Indirect == inodefs.NoBlock {
		return inode, inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode %d maps %d blocks but has no indirect block", inode.ID, mapped),
		)
	}

	indirect := make([]byte, fs.layout.bytesPerBlock)
	err := fs.readBlock(inode.Indirect, indirect)
	if err != nil {
		return inode, err
	}

	slot := last - inodefs.DirectBlocks
	address := getPointer(indirect, slot)
	setPointer(indirect, slot, inodefs.NoBlock)

	if slot == 0 {
		indirectAddress := inode.Indirect
		inode.Indirect = inodefs.NoBlock
		err = fs.freeBlock(indirectAddress)
	} else {
		err = fs.writeBlock(inode.Indirect, indirect)
	}
	if err != nil {
		return inode, err
	}
	return inode, fs.freeMappedBlock(inode, address)
}

func (fs *FileSystem) freeMappedBlock(inode inodefs.Inode, address inodefs.BlockAddress) error {
	if address == inodefs.NoBlock {
		return inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode %d has a hole in its block map", inode.ID),
		)
	}
	return fs.freeBlock(address)
}

// resizeInode changes the size of a file, allocating or freeing blocks as
// needed, and writes the inode back. Newly exposed bytes always read as zero.
//
// Growing checks capacity and free space before touching anything, so a failed
// grow leaves the file unchanged.
func (fs *FileSystem) resizeInode(inode inodefs.Inode, newSize uint32) (inodefs.Inode, error) {
	currentBlocks := uint(fs.layout.blocksForSize(uint64(inode.Size)))
	wantBlocks := uint(fs.layout.blocksForSize(uint64(newSize)))
	var err error

	if wantBlocks > fs.layout.maxBlocksPerFile() {
		return inode, inodefs.ErrOutOfCapacity.WithMessage(
			fmt.Sprintf(
				"%d bytes needs %d blocks, but an inode can map at most %d",
				newSize,
				wantBlocks,
				fs.layout.maxBlocksPerFile(),
			),
		)
	}

	if newSize > inode.Size {
		err = fs.checkSpaceForGrowth(inode, currentBlocks, wantBlocks)
		if err != nil {
			return inode, err
		}

		// Bytes past the end of the file in its last block may be left over from
		// before a shrink.
		err = fs.zeroTail(inode, currentBlocks)
		if err != nil {
			return inode, err
		}

		zeroes := make([]byte, fs.layout.bytesPerBlock)
		for mapped := currentBlocks; mapped < wantBlocks; mapped++ {
			address, err := fs.allocateBlock()
			if err != nil {
				return inode, err
			}
			err = fs.writeBlock(address, zeroes)
			if err != nil {
				return inode, err
			}
			inode, err = fs.growByOneBlock(inode, mapped, address)
			if err != nil {
				return inode, err
			}
		}
	} else {
		for mapped := currentBlocks; mapped > wantBlocks; mapped-- {
			inode, err = fs.shrinkByOneBlock(inode, mapped)
			if err != nil {
				return inode, err
			}
		}
	}

	inode.Size = newSize
	return inode, fs.putInode(inode)
}

// checkSpaceForGrowth makes sure there are enough free blocks to grow a file
// from `currentBlocks` to `wantBlocks`, including its indirect block.
func (fs *FileSystem) checkSpaceForGrowth(
	inode inodefs.Inode, currentBlocks, wantBlocks uint,
) error {
	needed := wantBlocks - currentBlocks
	if wantBlocks > inodefs.DirectBlocks && inode.Indirect == inodefs.NoBlock {
		needed++
	}
	if needed == 0 {
		return nil
	}

	free, err := fs.countFreeBlocks()
	if err != nil {
		return err
	}
	if free < needed {
		return inodefs.ErrNoFreeBlocks.WithMessage(
			fmt.Sprintf("need %d blocks, only %d free", needed, free),
		)
	}
	return nil
}

// zeroTail clears the unused part of the file's last block.
func (fs *FileSystem) zeroTail(inode inodefs.Inode, mapped uint) error {
	used := uint(inode.Size) % fs.layout.bytesPerBlock
	if mapped == 0 || used == 0 {
		return nil
	}

	addresses, err := fs.resolveBlocks(inode, mapped-1, mapped)
	if err != nil {
		return err
	}
	if len(addresses) != 1 {
		return inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode %d: block %d isn't mapped", inode.ID, mapped-1),
		)
	}

	block := make([]byte, fs.layout.bytesPerBlock)
	err = fs.readBlock(addresses[0], block)
	if err != nil {
		return err
	}
	for i := used; i < uint(len(block)); i++ {
		block[i] = 0
	}
	return fs.writeBlock(addresses[0], block)
}

func getPointer(indirect []byte, slot uint) inodefs.BlockAddress {
	offset := slot * blockPointerSize
	return inodefs.BlockAddress(binary.LittleEndian.Uint32(indirect[offset:]))
}

func setPointer(indirect []byte, slot uint, address inodefs.BlockAddress) {
	offset := slot * blockPointerSize
	binary.LittleEndian.PutUint32(indirect[offset:], uint32(address))
}
