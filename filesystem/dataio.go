package filesystem

import (
	"fmt"

	"github.com/dargueta/inodefs"
)

// checkRange fails if [offset, offset+length) isn't entirely within the file.
func checkRange(inode inodefs.Inode, offset, length uint64) error {
	if offset+length > uint64(inode.Size) {
		return inodefs.ErrOutOfBounds.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes at offset %d of inode %d, size is %d",
				length,
				offset,
				inode.ID,
				inode.Size,
			),
		)
	}
	return nil
}

// mapRange returns the physical addresses of every block touched by the byte
// range [offset, offset+length), along with the offset into the first block.
func (fs *FileSystem) mapRange(
	inode inodefs.Inode, offset, length uint64,
) ([]inodefs.BlockAddress, uint, error) {
	bytesPerBlock := uint64(fs.layout.bytesPerBlock)
	first := offset / bytesPerBlock
	last := (offset + length - 1) / bytesPerBlock

	addresses, err := fs.resolveBlocks(inode, uint(first), uint(last+1))
	if err != nil {
		return nil, 0, err
	}
	if uint64(len(addresses)) != last-first+1 {
		return nil, 0, inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"inode %d is %d bytes but only %d of blocks [%d, %d] are mapped",
				inode.ID,
				inode.Size,
				len(addresses),
				first,
				last,
			),
		)
	}
	return addresses, uint(offset % bytesPerBlock), nil
}

// readData reads `length` bytes from a file starting at `offset`. The whole range
// must lie within the file.
func (fs *FileSystem) readData(inode inodefs.Inode, offset, length uint64) ([]byte, error) {
	err := checkRange(inode, offset, length)
	if err != nil {
		return nil, err
	}

	output := make([]byte, 0, length)
	if length == 0 {
		return output, nil
	}

	addresses, start, err := fs.mapRange(inode, offset, length)
	if err != nil {
		return nil, err
	}

	block := make([]byte, fs.layout.bytesPerBlock)
	for _, address := range addresses {
		err = fs.readBlock(address, block)
		if err != nil {
			return nil, err
		}

		chunk := block[start:]
		remaining := length - uint64(len(output))
		if uint64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		output = append(output, chunk...)
		start = 0
	}
	return output, nil
}

// writeData overwrites part of a file in place. It never changes the size of
// the file; the whole range must already lie within it.
func (fs *FileSystem) writeData(inode inodefs.Inode, offset uint64, data []byte) error {
	length := uint64(len(data))
	err := checkRange(inode, offset, length)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	addresses, start, err := fs.mapRange(inode, offset, length)
	if err != nil {
		return err
	}

	block := make([]byte, fs.layout.bytesPerBlock)
	for _, address := range addresses {
		// Partial blocks need the bytes we're not overwriting.
		if start != 0 || uint(len(data)) < fs.layout.bytesPerBlock {
			err = fs.readBlock(address, block)
			if err != nil {
				return err
			}
		}

		n := copy(block[start:], data)
		err = fs.writeBlock(address, block)
		if err != nil {
			return err
		}
		data = data[n:]
		start = 0
	}
	return nil
}
