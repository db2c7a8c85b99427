package filesystem

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dargueta/inodefs"
	"github.com/noxer/bytewriter"
)

// rawInode is the on-disk form of [inodefs.Inode].
type rawInode struct {
	Kind      uint32
	ID        uint32
	LinkCount uint32
	Size      uint32
	Direct    [inodefs.DirectBlocks]uint32
	Indirect  uint32
}

// rawDirent is the on-disk form of [inodefs.DirectoryEntry].
type rawDirent struct {
	Inumber uint32
	Name    [inodefs.MaxNameLength]byte
}

func encodeInode(inode inodefs.Inode) []byte {
	raw := rawInode{
		Kind:      uint32(inode.Kind),
		ID:        uint32(inode.ID),
		LinkCount: inode.LinkCount,
		Size:      inode.Size,
		Indirect:  uint32(inode.Indirect),
	}
	for i, address := range inode.Direct {
		raw.Direct[i] = uint32(address)
	}

	return encodeRecord(&raw, InodeSize)
}

// encodeRecord serializes a fixed-size raw record into a buffer of exactly
// `size` bytes. The record types are declared to match their on-disk sizes, so
// a failure here is a programming error and panics.
func encodeRecord(raw interface{}, size int) []byte {
	if actual := binary.Size(raw); actual != size {
		panic(fmt.Sprintf("%T is %d bytes, expected %d", raw, actual, size))
	}

	buffer := make([]byte, size)
	err := binary.Write(bytewriter.New(buffer), binary.LittleEndian, raw)
	if err != nil {
		panic(fmt.Sprintf("failed to encode %T: %s", raw, err.Error()))
	}
	return buffer
}

func decodeInode(data []byte) (inodefs.Inode, error) {
	var raw rawInode
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw)
	if err != nil {
		return inodefs.Inode{}, inodefs.ErrFileSystemCorrupted.Wrap(err)
	}
	if raw.Kind > uint32(inodefs.KindSymlink) {
		return inodefs.Inode{}, inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("inode %d has invalid kind %d", raw.ID, raw.Kind),
		)
	}

	inode := inodefs.Inode{
		Kind:      inodefs.Kind(raw.Kind),
		ID:        inodefs.Inumber(raw.ID),
		LinkCount: raw.LinkCount,
		Size:      raw.Size,
		Indirect:  inodefs.BlockAddress(raw.Indirect),
	}
	for i, address := range raw.Direct {
		inode.Direct[i] = inodefs.BlockAddress(address)
	}
	return inode, nil
}

func encodeDirent(entry inodefs.DirectoryEntry) []byte {
	raw := rawDirent{Inumber: uint32(entry.Inumber)}
	copy(raw.Name[:], entry.Name)

	return encodeRecord(&raw, DentrySize)
}

func decodeDirents(data []byte) ([]inodefs.DirectoryEntry, error) {
	if len(data)%DentrySize != 0 {
		return nil, inodefs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"directory size %d isn't a multiple of %d", len(data), DentrySize,
			),
		)
	}

	reader := bytes.NewReader(data)
	entries := make([]inodefs.DirectoryEntry, len(data)/DentrySize)
	for i := range entries {
		var raw rawDirent
		err := binary.Read(reader, binary.LittleEndian, &raw)
		if err != nil {
			return nil, inodefs.ErrFileSystemCorrupted.Wrap(err)
		}

		name := string(raw.Name[:])
		if end := strings.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}
		entries[i] = inodefs.DirectoryEntry{
			Inumber: inodefs.Inumber(raw.Inumber),
			Name:    name,
		}
	}
	return entries, nil
}

// readMetadata reads `length` bytes from the metadata region starting at
// `offset`. The range may cross block boundaries.
func (fs *FileSystem) readMetadata(offset, length uint) ([]byte, error) {
	bytesPerBlock := fs.layout.bytesPerBlock
	result := make([]byte, length)
	block := make([]byte, bytesPerBlock)

	for done := uint(0); done < length; {
		position := offset + done
		err := fs.readBlock(inodefs.BlockAddress(position/bytesPerBlock), block)
		if err != nil {
			return nil, err
		}
		done += uint(copy(result[done:], block[position%bytesPerBlock:]))
	}
	return result, nil
}

// writeMetadata overwrites part of the metadata region, preserving everything
// else in the blocks it touches.
func (fs *FileSystem) writeMetadata(offset uint, data []byte) error {
	bytesPerBlock := fs.layout.bytesPerBlock
	block := make([]byte, bytesPerBlock)

	for done := uint(0); done < uint(len(data)); {
		position := offset + done
		address := inodefs.BlockAddress(position / bytesPerBlock)
		within := position % bytesPerBlock

		// Only bother reading the block if we're not replacing all of it.
		if within != 0 || uint(len(data))-done < bytesPerBlock {
			err := fs.readBlock(address, block)
			if err != nil {
				return err
			}
		}

		n := uint(copy(block[within:], data[done:]))
		err := fs.writeBlock(address, block)
		if err != nil {
			return err
		}
		done += n
	}
	return nil
}
