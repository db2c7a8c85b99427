package inodefs

import (
	"fmt"
)

// DirectBlocks is the number of direct block pointers stored in each inode.
// Blocks past this are addressed through the single indirect block.
const DirectBlocks = 10

// MaxNameLength is the longest name, in bytes, a directory entry can hold.
const MaxNameLength = 28

// RootInumber is the inode of the root directory. It's created by formatting
// and is never reclaimed.
const RootInumber = Inumber(0)

// Kind is the type of object an inode describes.
type Kind uint32

const (
	KindUnused Kind = iota
	KindRegular
	KindDirectory
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindUnused:
		return "unused"
	case KindRegular:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// Mode returns the S_IF* file type bits for the kind, or 0 for unused inodes.
func (k Kind) Mode() uint32 {
	switch k {
	case KindRegular:
		return S_IFREG
	case KindDirectory:
		return S_IFDIR
	case KindSymlink:
		return S_IFLNK
	default:
		return 0
	}
}

// Inumber is the index of an inode in the inode table.
type Inumber uint32

// BlockAddress is the physical index of a block on the block store. Address 0
// always belongs to the metadata region, so it doubles as the "unallocated"
// marker in block pointers.
type BlockAddress uint32

// NoBlock marks an unused block pointer.
const NoBlock = BlockAddress(0)

// Inode is an in-memory copy of an on-disk inode. Modifying it has no effect
// on the disk until it's explicitly written back.
type Inode struct {
	Kind      Kind
	ID        Inumber
	LinkCount uint32
	Size      uint32
	Direct    [DirectBlocks]BlockAddress
	Indirect  BlockAddress
}

func (inode Inode) IsDir() bool {
	return inode.Kind == KindDirectory
}

func (inode Inode) IsFile() bool {
	return inode.Kind == KindRegular
}

func (inode Inode) IsSymlink() bool {
	return inode.Kind == KindSymlink
}

func (inode Inode) IsAllocated() bool {
	return inode.Kind != KindUnused
}

// DirectoryEntry maps a name to an inode within a directory.
type DirectoryEntry struct {
	Inumber Inumber
	Name    string
}

// FileDescriptor is a handle to an open file. Descriptors are never reused
// during the lifetime of a driver.
type FileDescriptor int32

// FSStat gives information about the file system as a whole.
type FSStat struct {
	BlockSize        uint
	TotalBlocks      uint
	BlocksFree       uint
	MetadataBlocks   uint
	TotalDescriptors uint
	DescriptorsFree  uint
	MaxNameLength    uint
}

// Driver is the public surface of the file system. All paths may be absolute or
// relative to the current directory.
type Driver interface {
	// Format lays out an empty file system able to hold `maxDescriptors` inodes,
	// including the root directory.
	Format(maxDescriptors uint32) error

	GetDescriptor(id Inumber) (Inode, error)
	ListDirectory(path string) ([]DirectoryEntry, error)
	ListDirectoryByID(id Inumber) ([]DirectoryEntry, error)

	CreateFile(path string) error
	Open(path string) (FileDescriptor, error)
	Close(fd FileDescriptor) error
	// Read returns exactly `length` bytes starting at `offset`. The range must
	// lie entirely within the file.
	Read(fd FileDescriptor, offset int64, length int) ([]byte, error)
	// Write overwrites bytes in place. It never grows a file; use Truncate
	// first.
	Write(fd FileDescriptor, offset int64, data []byte) error

	Link(existingPath, newPath string) error
	Unlink(path string) error
	Truncate(path string, newSize int64) error
	Mkdir(path string) error
	Rmdir(path string) error
	Symlink(target, linkPath string) error
	Chdir(path string) error

	Stat(path string) (Inode, error)
	Lstat(path string) (Inode, error)
	Readlink(path string) (string, error)
	FSStat() (FSStat, error)
}
