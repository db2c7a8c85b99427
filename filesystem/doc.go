// Package filesystem implements a small Unix-style inode file system on top of
// any [blockstore.BlockStore].
//
// # On-disk layout
//
// The start of the device holds the metadata region, packed without regard to
// block boundaries:
//
//	offset 0                 allocation bitmap, one bit per block (LSB first)
//	ceil(blocks / 8)         u32 maximum number of inodes
//	+4                       inode table, InodeSize bytes per inode
//
// The metadata region is rounded up to a whole number of blocks and everything
// after it is used for file data. Block 0 is always metadata, so a block pointer
// of 0 means "unallocated".
//
// Each inode has [inodefs.DirectBlocks] direct block pointers and one single
// indirect block holding BytesPerBlock / 4 more. Directories are ordinary files
// made up of DentrySize-byte entries, and symlinks store their target path as
// their content.
//
// All integers are little-endian.
package filesystem
